package hub

import (
	"context"

	"github.com/podly-fm/podly/internal/errors"
)

type ctxKey struct{}

// NewContext installs the hub into a context. The application root calls
// this once; everything below it reaches the session through FromContext.
func NewContext(ctx context.Context, h *Hub) context.Context {
	return context.WithValue(ctx, ctxKey{}, h)
}

// FromContext retrieves the hub. Using playback outside the scope that
// installed the hub is an integration error, reported as
// ErrSubscriptionScope rather than a nil-pointer crash later.
func FromContext(ctx context.Context) (*Hub, error) {
	h, ok := ctx.Value(ctxKey{}).(*Hub)
	if !ok || h == nil {
		return nil, errors.ErrSubscriptionScope
	}
	return h, nil
}
