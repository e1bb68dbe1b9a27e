package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract. The body is fully read.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Get returns an error only when no response was received.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
