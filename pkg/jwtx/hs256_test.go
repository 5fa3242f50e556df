package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/iam/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte(strings.Repeat("s", jwtx.MinSecretLength))

func newHS256(t *testing.T, opts jwtx.VerifyOptions) *jwtx.HS256 {
	t.Helper()
	h, err := jwtx.NewHS256(testSecret, opts)
	require.NoError(t, err)
	return h
}

func TestNewHS256_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := jwtx.NewHS256([]byte("short"), jwtx.VerifyOptions{})
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}

func TestHS256_RoundTrip(t *testing.T) {
	t.Parallel()

	h := newHS256(t, jwtx.VerifyOptions{Issuer: "iam", Audience: "iam-admin"})
	claims := jwtx.NewClaims("ops", "", []string{"iam-admin"}, []string{"iam:read"}, time.Hour, time.Now())

	token, err := h.Sign(claims)
	require.NoError(t, err)

	got, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "ops", got.Subject)
	require.Equal(t, "iam", got.Issuer)
	require.True(t, got.HasScope("iam:read"))
	require.False(t, got.HasScope("iam:write"))
}

func TestHS256_VerifyFailures(t *testing.T) {
	t.Parallel()

	h := newHS256(t, jwtx.VerifyOptions{Issuer: "iam", Audience: "iam-admin"})
	now := time.Now()

	t.Run("malformed", func(t *testing.T) {
		_, err := h.Verify("not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("expired", func(t *testing.T) {
		c := jwtx.NewClaims("ops", "iam", []string{"iam-admin"}, nil, time.Minute, now.Add(-time.Hour))
		token, err := h.Sign(c)
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := jwtx.NewClaims("ops", "someone-else", []string{"iam-admin"}, nil, time.Hour, now)
		token, err := h.Sign(c)
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("wrong audience", func(t *testing.T) {
		c := jwtx.NewClaims("ops", "iam", []string{"billing"}, nil, time.Hour, now)
		token, err := h.Sign(c)
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := jwtx.NewHS256([]byte(strings.Repeat("x", 40)), jwtx.VerifyOptions{Issuer: "iam"})
		require.NoError(t, err)

		token, err := other.Sign(jwtx.NewClaims("ops", "iam", []string{"iam-admin"}, nil, time.Hour, now))
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("missing expiry", func(t *testing.T) {
		c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "iam", Audience: jwt.ClaimStrings{"iam-admin"}}}
		token, err := h.Sign(c)
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})
}

func TestClaims_ValidateExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	c := jwtx.NewClaims("ops", "iam", nil, nil, time.Minute, now)

	require.NoError(t, c.ValidateExpiry(now))
	require.ErrorIs(t, c.ValidateExpiry(now.Add(2*time.Minute)), jwtx.ErrExpired)
	require.ErrorIs(t, c.ValidateExpiry(now.Add(-time.Minute)), jwtx.ErrNotYetValid)
}
