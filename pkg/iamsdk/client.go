package iamsdk

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client calls the admin API with a fixed bearer token.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// NewClient creates a client for baseURL authenticating with token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Token: token,
	}
}

// RequestOption adjusts an outgoing request.
type RequestOption func(*http.Request)

// IfMatch makes a write conditional on the entity still being at version.
func IfMatch(version int64) RequestOption {
	return func(r *http.Request) {
		r.Header.Set("If-Match", `"`+strconv.FormatInt(version, 10)+`"`)
	}
}
