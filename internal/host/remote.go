package host

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayoisaiah/webfocus/internal/apperr"
	"github.com/ayoisaiah/webfocus/internal/nativemsg"
)

// Requests the background process sends to the browser.
const (
	TypeQueryIdle       = "queryIdle"
	TypeQueryActiveTab  = "queryActiveTab"
	TypeRedirectTab     = "redirectTab"
	TypeQueryPermission = "queryNotificationPermission"
)

// DefaultTimeout bounds how long a request waits for the browser.
const DefaultTimeout = 5 * time.Second

var (
	errHostClosed = &apperr.Error{
		Message: "browser connection closed",
	}

	errHostTimeout = &apperr.Error{
		Message: "browser did not answer %s in time",
	}

	errHostFailed = &apperr.Error{
		Message: "browser rejected %s",
	}
)

// Sender writes envelopes to the browser.
type Sender interface {
	Write(env nativemsg.Envelope) error
}

// Remote implements Host by sending requests to the browser and waiting for
// the responses routed back through Resolve.
type Remote struct {
	out     Sender
	pending map[string]chan nativemsg.Envelope
	timeout time.Duration
	seq     atomic.Uint64
	mu      sync.Mutex
	closed  bool
}

// NewRemote returns a Remote that writes requests to out.
func NewRemote(out Sender, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Remote{
		out:     out,
		pending: make(map[string]chan nativemsg.Envelope),
		timeout: timeout,
	}
}

var _ Host = (*Remote)(nil)

func (r *Remote) QueryIdle(ctx context.Context, threshold int) (IdleState, error) {
	var resp struct {
		State IdleState `json:"state"`
	}

	err := r.call(ctx, TypeQueryIdle, map[string]int{"threshold": threshold}, &resp)
	if err != nil {
		return "", err
	}

	return resp.State, nil
}

func (r *Remote) ActiveTab(ctx context.Context) (*Tab, error) {
	var resp struct {
		Tab *Tab `json:"tab"`
	}

	if err := r.call(ctx, TypeQueryActiveTab, nil, &resp); err != nil {
		return nil, err
	}

	return resp.Tab, nil
}

func (r *Remote) Redirect(ctx context.Context, tabID int, url string) error {
	req := struct {
		URL   string `json:"url"`
		TabID int    `json:"tabId"`
	}{URL: url, TabID: tabID}

	return r.call(ctx, TypeRedirectTab, req, nil)
}

func (r *Remote) NotificationsGranted(ctx context.Context) (bool, error) {
	var resp struct {
		Granted bool `json:"granted"`
	}

	if err := r.call(ctx, TypeQueryPermission, nil, &resp); err != nil {
		return false, err
	}

	return resp.Granted, nil
}

// Resolve delivers a response envelope to the request waiting for it. It
// reports whether env answered a pending request.
func (r *Remote) Resolve(env nativemsg.Envelope) bool {
	r.mu.Lock()
	ch, ok := r.pending[env.ID]
	delete(r.pending, env.ID)
	r.mu.Unlock()

	if !ok {
		return false
	}

	ch <- env

	return true
}

// Close fails every pending request and rejects new ones.
func (r *Remote) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	for id, ch := range r.pending {
		close(ch)
		delete(r.pending, id)
	}
}

func (r *Remote) call(ctx context.Context, msgType string, req, resp any) error {
	id := "host-" + strconv.FormatUint(r.seq.Add(1), 10)
	ch := make(chan nativemsg.Envelope, 1)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errHostClosed
	}

	r.pending[id] = ch
	r.mu.Unlock()

	env := nativemsg.Envelope{ID: id, Type: msgType}

	if req != nil {
		b, err := json.Marshal(req)
		if err != nil {
			r.forget(id)
			return err
		}

		env.Payload = b
	}

	if err := r.out.Write(env); err != nil {
		r.forget(id)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	select {
	case reply, ok := <-ch:
		if !ok {
			return errHostClosed
		}

		if reply.Error != "" {
			return errHostFailed.Fmt(msgType).Wrap(errors.New(reply.Error))
		}

		if resp != nil {
			return reply.Decode(resp)
		}

		return nil
	case <-ctx.Done():
		r.forget(id)
		return errHostTimeout.Fmt(msgType).Wrap(ctx.Err())
	}
}

func (r *Remote) forget(id string) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}
