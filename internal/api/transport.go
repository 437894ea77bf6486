package api

import (
	"net/http"
	"strconv"
	"time"
)

// TokenSource supplies the current bearer credential, empty when signed out.
type TokenSource interface {
	Token() string
}

// transport decorates every outgoing request: the bearer header when a token
// is held, and on reads the cache-defeating headers plus a unique query
// parameter, because the mean-rating aggregate changes often and staleness is
// user-visible.
type transport struct {
	base   http.RoundTripper
	tokens TokenSource
	now    func() time.Time
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if token := t.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if req.Method == http.MethodGet {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
		req.Header.Set("Expires", "0")
		q := req.URL.Query()
		q.Set("t", strconv.FormatInt(t.now().UnixMilli(), 10))
		req.URL.RawQuery = q.Encode()
	}
	return t.base.RoundTrip(req)
}
