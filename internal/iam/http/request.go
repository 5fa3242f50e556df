package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/iam/internal/iam/service"
	"github.com/aussiebroadwan/iam/pkg/httpx"
)

var errInvalidIfMatch = errors.New(`If-Match must be a version number such as "3"`)

// conditional returns the request context carrying the If-Match version
// when the header is present. Accepted forms are "3", 3 and W/"3".
func conditional(r *http.Request) (context.Context, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" {
		return r.Context(), nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, errInvalidIfMatch
	}
	return service.WithExpectedVersion(r.Context(), v), nil
}

// writeVersioned answers with v and an ETag naming version.
func writeVersioned(w http.ResponseWriter, code int, version int64, v any) {
	w.Header().Set("ETag", `"`+strconv.FormatInt(version, 10)+`"`)
	httpx.WriteJSON(w, code, v)
}

// decode reads the JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpx.DecodeJSON(w, r, v); err != nil {
		writeBadRequest(w, err.Error())
		return false
	}
	return true
}
