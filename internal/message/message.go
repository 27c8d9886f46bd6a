// Package message routes envelopes arriving from the browser to the handler
// registered for their type.
package message

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ayoisaiah/webfocus/internal/apperr"
	"github.com/ayoisaiah/webfocus/internal/nativemsg"
)

var (
	errUnknownType = &apperr.Error{
		Message: "unknown message type %q",
	}

	errHandlerPanic = &apperr.Error{
		Message: "internal error handling %s",
	}
)

// HandlerFunc handles one message. The returned value becomes the response
// payload when the message carried an ID.
type HandlerFunc func(ctx context.Context, env nativemsg.Envelope) (any, error)

// Resolver claims envelopes that answer requests sent to the browser.
type Resolver interface {
	Resolve(env nativemsg.Envelope) bool
}

// Writer sends envelopes back to the browser.
type Writer interface {
	Write(env nativemsg.Envelope) error
}

// Reader yields envelopes from the browser until io.EOF.
type Reader interface {
	Read() (nativemsg.Envelope, error)
}

// Dispatcher is a registry of typed handlers.
type Dispatcher struct {
	out      Writer
	resolver Resolver
	logger   *slog.Logger
	handlers map[string]HandlerFunc
	wg       sync.WaitGroup
	mu       sync.RWMutex
}

// New returns an empty Dispatcher. resolver may be nil.
func New(out Writer, resolver Resolver, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		out:      out,
		resolver: resolver,
		logger:   logger,
		handlers: make(map[string]HandlerFunc),
	}
}

// Handle registers fn for messages of the given type, replacing any earlier
// registration.
func (d *Dispatcher) Handle(msgType string, fn HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[msgType] = fn
}

// Types returns the registered message types.
func (d *Dispatcher) Types() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	types := make([]string, 0, len(d.handlers))
	for t := range d.handlers {
		types = append(types, t)
	}

	return types
}

// Dispatch runs the handler for env and writes its response when env carries
// an ID. Responses to our own requests are handed to the resolver instead.
func (d *Dispatcher) Dispatch(ctx context.Context, env nativemsg.Envelope) error {
	if env.Type == nativemsg.TypeResponse {
		if d.resolver == nil || !d.resolver.Resolve(env) {
			d.logger.Warn("unmatched response", slog.String("id", env.ID))
		}

		return nil
	}

	payload, err := d.call(ctx, env)
	if err != nil {
		d.logger.Warn(
			"message failed",
			slog.String("type", env.Type),
			slog.Any("error", err),
		)
	}

	if env.ID == "" {
		return nil
	}

	resp, mErr := nativemsg.Response(env, payload, err)
	if mErr != nil {
		resp, _ = nativemsg.Response(env, nil, mErr)
	}

	wErr := d.out.Write(resp)
	if errors.Is(wErr, nativemsg.ErrMessageTooLarge) {
		// tell the requester instead of leaving it waiting
		fallback, _ := nativemsg.Response(env, nil, wErr)
		if err := d.out.Write(fallback); err != nil {
			return err
		}
	}

	return wErr
}

func (d *Dispatcher) call(
	ctx context.Context,
	env nativemsg.Envelope,
) (payload any, err error) {
	d.mu.RLock()
	fn, ok := d.handlers[env.Type]
	d.mu.RUnlock()

	if !ok {
		return nil, errUnknownType.Fmt(env.Type)
	}

	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = errHandlerPanic.Fmt(env.Type).Wrap(fmt.Errorf("%v", r))
		}
	}()

	return fn(ctx, env)
}

// Serve reads envelopes from r until it is exhausted or ctx is cancelled.
// Responses are resolved inline so a handler waiting on the browser never
// blocks the loop; every other message runs in its own goroutine.
func (d *Dispatcher) Serve(ctx context.Context, r Reader) error {
	defer d.wg.Wait()

	for {
		if ctx.Err() != nil {
			return nil
		}

		env, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		if env.Type == nativemsg.TypeResponse {
			_ = d.Dispatch(ctx, env)
			continue
		}

		d.wg.Add(1)

		go func() {
			defer d.wg.Done()

			if err := d.Dispatch(ctx, env); err != nil {
				d.logger.Error(
					"writing response failed",
					slog.String("type", env.Type),
					slog.Any("error", err),
				)
			}
		}()
	}
}
