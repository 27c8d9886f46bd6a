package message

import (
	"context"

	"github.com/ayoisaiah/webfocus/internal/nativemsg"
)

// Typed adapts fn into a HandlerFunc that decodes the payload into T first.
func Typed[T any](fn func(ctx context.Context, req T) (any, error)) HandlerFunc {
	return func(ctx context.Context, env nativemsg.Envelope) (any, error) {
		var req T
		if err := env.Decode(&req); err != nil {
			return nil, err
		}

		return fn(ctx, req)
	}
}

// Notify adapts a handler that takes no payload and returns nothing.
func Notify(fn func(ctx context.Context)) HandlerFunc {
	return func(ctx context.Context, _ nativemsg.Envelope) (any, error) {
		fn(ctx)
		return nil, nil
	}
}
