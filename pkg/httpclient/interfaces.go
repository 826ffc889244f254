package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Request describes a single outbound call.
type Request struct {
	URL     string
	Query   map[string]string
	Headers map[string]string
	// Body is JSON-encoded when set.
	Body any
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, req Request) (Response, error)
	Post(ctx context.Context, req Request) (Response, error)
}
