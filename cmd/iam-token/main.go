// Command iam-token mints an HS256 bearer token for the IAM admin API.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/iam/pkg/jwtx"
)

func main() {
	var (
		secret   string
		issuer   string
		audience string
		subject  string
		scopes   string
		ttl      time.Duration
	)

	flag.StringVar(&secret, "secret", os.Getenv("IAM_JWT_SECRET"), "HMAC secret shared with the server (default $IAM_JWT_SECRET)")
	flag.StringVar(&issuer, "issuer", envOr("IAM_JWT_ISSUER", "iam"), "token issuer")
	flag.StringVar(&audience, "audience", os.Getenv("IAM_JWT_AUDIENCE"), "token audience (optional)")
	flag.StringVar(&subject, "subject", "admin", "token subject")
	flag.StringVar(&scopes, "scopes", "iam:read,iam:write", "comma separated scopes")
	flag.DurationVar(&ttl, "ttl", jwtx.DefaultAdminTokenTTL, "token lifetime")
	flag.Parse()

	signer, err := jwtx.NewHS256([]byte(secret), jwtx.VerifyOptions{Issuer: issuer})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var aud []string
	if audience != "" {
		aud = []string{audience}
	}

	token, err := signer.Sign(jwtx.NewClaims(subject, issuer, aud, splitScopes(scopes), ttl, time.Now()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func splitScopes(s string) []string {
	var out []string
	for _, scope := range strings.Split(s, ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			out = append(out, scope)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
