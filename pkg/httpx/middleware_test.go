package httpx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/iam/pkg/httpx"
	"github.com/aussiebroadwan/iam/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	claims jwtx.Claims
	err    error
}

func (s stubVerifier) Verify(string) (jwtx.Claims, error) { return s.claims, s.err }

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("first"), mark("second"))

	serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	now := time.Now()
	valid := jwtx.NewClaims("ops", "iam", nil, []string{"iam:read"}, time.Hour, now)

	var gotSubject string
	h := httpx.AuthnMiddleware(stubVerifier{claims: valid})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = httpx.SubjectFromContext(r.Context())
		claims, ok := httpx.ClaimsFromContext(r.Context())
		require.True(t, ok)
		require.True(t, claims.HasScope("iam:read"))
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		require.Equal(t, http.StatusUnauthorized, serve(h, req).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		require.Equal(t, http.StatusNoContent, serve(h, req).Code)
		require.Equal(t, "ops", gotSubject)
	})

	t.Run("verifier rejects", func(t *testing.T) {
		bad := httpx.AuthnMiddleware(stubVerifier{err: errors.New("nope")})(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		require.Equal(t, http.StatusUnauthorized, serve(bad, req).Code)
	})

	t.Run("expired claims", func(t *testing.T) {
		expired := jwtx.NewClaims("ops", "iam", nil, nil, time.Minute, now.Add(-time.Hour))
		h := httpx.AuthnMiddleware(stubVerifier{claims: expired})(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")

		rec := serve(h, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "token expired")
	})
}

func TestRequireScopes(t *testing.T) {
	claims := jwtx.NewClaims("ops", "iam", nil, []string{"iam:read"}, time.Hour, time.Now())
	authed := func(mw httpx.Middleware) http.Handler {
		return httpx.Chain(okHandler, httpx.AuthnMiddleware(stubVerifier{claims: claims}), mw)
	}
	request := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		return req
	}

	require.Equal(t, http.StatusOK, serve(authed(httpx.RequireAnyScope("iam:write", "iam:read")), request()).Code)
	require.Equal(t, http.StatusOK, serve(authed(httpx.RequireAllScopes("iam:read")), request()).Code)

	rec := serve(authed(httpx.RequireAnyScope("iam:write")), request())
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), `scope="iam:write"`)

	require.Equal(t, http.StatusForbidden, serve(authed(httpx.RequireAllScopes("iam:read", "iam:write")), request()).Code)
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	decode := func(raw string) (body, error) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		err := httpx.DecodeJSON(httptest.NewRecorder(), req, &b)
		return b, err
	}

	b, err := decode(`{"name":"acme"}`)
	require.NoError(t, err)
	require.Equal(t, "acme", b.Name)

	_, err = decode(``)
	require.ErrorContains(t, err, "empty")

	_, err = decode(`{"name":"acme","extra":1}`)
	require.ErrorContains(t, err, "unknown field")

	_, err = decode(`{"name":"a"}{"name":"b"}`)
	require.ErrorContains(t, err, "single JSON object")
}
