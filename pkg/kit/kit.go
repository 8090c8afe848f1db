// Package kit holds what the HTTP handlers and MCP tools share: endpoints,
// endpoint middleware and the per-call context values they read.
package kit

import "context"

// Endpoint is one action (normalize, batch, classify, list lexicons) with its
// request and response types decoded by the transport.
type Endpoint func(ctx context.Context, request any) (response any, err error)

// Middleware decorates an Endpoint.
type Middleware func(Endpoint) Endpoint

// Chain applies mws so that the first one sees the call first.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

type ctxKey int

const (
	transportKey ctxKey = iota
	requestIDKey
)

// WithTransport records the transport a call arrived on ("http", "mcp_quic").
func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, transportKey, t)
}

// GetTransport defaults to "http".
func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(transportKey).(string); ok {
		return v
	}
	return "http"
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}
