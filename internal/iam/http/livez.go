package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/iam/pkg/httpx"
	"github.com/aussiebroadwan/iam/pkg/iamsdk"
)

// LivezHandler always answers 200 while the process is serving.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := iamsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}
