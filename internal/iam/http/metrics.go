package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// instrument records request latency labelled with the route pattern, not
// the concrete URL.
func instrument(pattern string, next http.Handler) http.Handler {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		method, path = "", pattern
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m := method
		if m == "" {
			m = r.Method
		}
		metrics.APILatency.
			WithLabelValues(m, path, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
