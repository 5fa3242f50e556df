package iamsdk

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathEscapesSegments(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/v1/tenants/acme/invitations/Open%20Enrollment", path("tenants", "acme", "invitations", "Open Enrollment"))
	require.Equal(t, "/v1/tenants/a%2Fb", path("tenants", "a/b"))
}

func TestClient_ErrorResponses(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}

		switch r.URL.Path {
		case "/v1/tenants/conflict":
			if r.Header.Get("If-Match") != `"4"` {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_request"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPreconditionFailed)
			_, _ = w.Write([]byte(`{"error":"version_conflict","error_description":"stale"}`))
		case "/v1/tenants/invalid":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"validation_failed","fields":{"name":"required"}}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/", "tok")

	t.Run("version conflict", func(t *testing.T) {
		_, err := c.UpdateTenant(t.Context(), "conflict", UpdateTenantRequest{}, IfMatch(4))
		require.True(t, IsCode(err, ErrorCodeVersionConflict))
		require.Equal(t, http.StatusPreconditionFailed, StatusCode(err))
	})

	t.Run("validation fields", func(t *testing.T) {
		_, err := c.UpdateTenant(t.Context(), "invalid", UpdateTenantRequest{})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, map[string]string{"name": "required"}, apiErr.Fields)
		require.Contains(t, apiErr.Error(), "(name)")
	})

	t.Run("non-json body", func(t *testing.T) {
		_, err := c.GetTenant(t.Context(), "other")
		require.True(t, IsCode(err, ErrorCodeServerError))
		require.Equal(t, http.StatusBadGateway, StatusCode(err))
	})
}
