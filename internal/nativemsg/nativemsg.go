// Package nativemsg implements the browser native messaging framing: each
// message is a JSON document preceded by its length as a 32-bit unsigned
// integer in native byte order.
package nativemsg

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ayoisaiah/webfocus/internal/apperr"
)

const (
	// MaxIncoming is the largest message the browser may send.
	MaxIncoming = 64 << 20
	// MaxOutgoing is the largest message the browser accepts from a host.
	MaxOutgoing = 1 << 20
)

// TypeResponse marks an envelope answering an earlier request.
const TypeResponse = "response"

var (
	// ErrMessageTooLarge is returned for frames over the size limits.
	ErrMessageTooLarge = &apperr.Error{
		Message: "message of %d bytes exceeds the %d byte limit",
	}

	errTruncated = &apperr.Error{
		Message: "message truncated",
	}

	errDecode = &apperr.Error{
		Message: "decoding message failed",
	}
)

// Envelope is the JSON document carried by every frame. Requests carry an
// ID which the matching response echoes back.
type Envelope struct {
	Payload json.RawMessage `json:"payload,omitempty"`
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Error   string          `json:"error,omitempty"`
}

// Response builds the reply to req. If err is non-nil payload is dropped.
func Response(req Envelope, payload any, err error) (Envelope, error) {
	env := Envelope{ID: req.ID, Type: TypeResponse}

	if err != nil {
		env.Error = err.Error()
		return env, nil
	}

	if payload == nil {
		return env, nil
	}

	b, mErr := json.Marshal(payload)
	if mErr != nil {
		return env, mErr
	}

	env.Payload = b

	return env, nil
}

// Decode unmarshals the envelope payload into v. An absent payload leaves v
// untouched.
func (e Envelope) Decode(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(e.Payload, v); err != nil {
		return errDecode.Wrap(err)
	}

	return nil
}

// Reader reads framed messages.
type Reader struct {
	r io.Reader
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read returns the next message. It returns io.EOF once the peer closes the
// stream between messages.
func (r *Reader) Read() (Envelope, error) {
	var env Envelope

	var size uint32
	if err := binary.Read(r.r, binary.NativeEndian, &size); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return env, errTruncated.Wrap(err)
		}

		return env, err
	}

	if size > MaxIncoming {
		return env, ErrMessageTooLarge.Fmt(size, MaxIncoming)
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return env, errTruncated.Wrap(err)
	}

	if err := json.Unmarshal(buf, &env); err != nil {
		return env, errDecode.Wrap(err)
	}

	return env, nil
}

// Writer writes framed messages. It is safe for concurrent use.
type Writer struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriter returns a Writer producing frames on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write sends env as a single frame.
func (w *Writer) Write(env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding %s message: %w", env.Type, err)
	}

	if len(b) > MaxOutgoing {
		return ErrMessageTooLarge.Fmt(len(b), MaxOutgoing)
	}

	frame := make([]byte, 4, 4+len(b))
	binary.NativeEndian.PutUint32(frame, uint32(len(b)))
	frame = append(frame, b...)

	w.mu.Lock()
	defer w.mu.Unlock()

	_, err = w.w.Write(frame)

	return err
}

// Send marshals payload into an envelope of the given type and writes it.
func (w *Writer) Send(msgType string, payload any) error {
	env := Envelope{Type: msgType}

	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s payload: %w", msgType, err)
		}

		env.Payload = b
	}

	return w.Write(env)
}
