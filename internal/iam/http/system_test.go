package http_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/iam/pkg/iamsdk"
)

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	h := setupServer(t)
	c := iamsdk.NewClient(h.URL, "")

	live, err := c.Livez(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := c.Readyz(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	h := setupServer(t)

	// One instrumented request so the latency histogram has a series.
	_, err := h.client(t, allScopes...).ListTenants(t.Context())
	require.NoError(t, err)

	resp, err := http.Get(h.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "iam_api_latency_seconds")
	require.Contains(t, string(body), `path="/v1/tenants"`)
}

func TestAuthorization(t *testing.T) {
	t.Parallel()
	h := setupServer(t)

	t.Run("missing token", func(t *testing.T) {
		_, err := iamsdk.NewClient(h.URL, "").ListTenants(t.Context())
		requireAPIError(t, err, http.StatusUnauthorized, iamsdk.ErrorCodeInvalidToken)
	})

	t.Run("foreign signature", func(t *testing.T) {
		_, err := iamsdk.NewClient(h.URL, "not.a.jwt").ListTenants(t.Context())
		requireAPIError(t, err, http.StatusUnauthorized, iamsdk.ErrorCodeInvalidToken)
	})

	t.Run("read scope cannot write", func(t *testing.T) {
		c := h.client(t, iamsdk.ScopeRead)
		_, err := c.ListTenants(t.Context())
		require.NoError(t, err)

		_, err = c.CreateTenant(t.Context(), iamsdk.CreateTenantRequest{Name: "acme", Enabled: true})
		requireAPIError(t, err, http.StatusForbidden, iamsdk.ErrorCodeInsufficientScope)
	})

	t.Run("authenticate needs its own scope", func(t *testing.T) {
		c := h.client(t, iamsdk.ScopeRead, iamsdk.ScopeWrite)
		_, err := c.Authenticate(t.Context(), "acme", "zoe", strongPassword)
		requireAPIError(t, err, http.StatusForbidden, iamsdk.ErrorCodeInsufficientScope)
	})
}
