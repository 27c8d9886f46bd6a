package nativemsg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(body string) []byte {
	b := make([]byte, 4)
	binary.NativeEndian.PutUint32(b, uint32(len(body)))

	return append(b, body...)
}

func TestReadWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf)
	require.NoError(t, w.Send("getPomodoroStatus", map[string]int{"n": 1}))
	require.NoError(t, w.Write(Envelope{ID: "7", Type: TypeResponse, Error: "boom"}))

	r := NewReader(&buf)

	env, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "getPomodoroStatus", env.Type)

	var payload map[string]int
	require.NoError(t, env.Decode(&payload))
	assert.Equal(t, 1, payload["n"])

	env, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, Envelope{ID: "7", Type: TypeResponse, Error: "boom"}, env)

	_, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadRejectsOversizedMessage(t *testing.T) {
	b := make([]byte, 4)
	binary.NativeEndian.PutUint32(b, MaxIncoming+1)

	_, err := NewReader(bytes.NewReader(b)).Read()
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestReadTruncated(t *testing.T) {
	full := frame(`{"type":"stats"}`)

	_, err := NewReader(bytes.NewReader(full[:10])).Read()
	assert.ErrorIs(t, err, errTruncated)

	_, err = NewReader(bytes.NewReader(full[:2])).Read()
	assert.ErrorIs(t, err, errTruncated)
}

func TestReadMalformedJSON(t *testing.T) {
	_, err := NewReader(bytes.NewReader(frame(`{"type":`))).Read()
	assert.ErrorIs(t, err, errDecode)
}

func TestWriteRejectsOversizedMessage(t *testing.T) {
	var buf bytes.Buffer

	err := NewWriter(&buf).Send("big", strings.Repeat("x", MaxOutgoing))
	assert.ErrorIs(t, err, ErrMessageTooLarge)
	assert.Zero(t, buf.Len())
}

func TestResponse(t *testing.T) {
	req := Envelope{ID: "3", Type: "getTrackedData"}

	env, err := Response(req, map[string]string{"ok": "yes"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "3", env.ID)
	assert.JSONEq(t, `{"ok":"yes"}`, string(env.Payload))

	env, err = Response(req, "ignored", errors.New("bad request"))
	require.NoError(t, err)
	assert.Equal(t, "bad request", env.Error)
	assert.Nil(t, env.Payload)
}

func TestConcurrentWritesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf)

	var wg sync.WaitGroup

	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			assert.NoError(t, w.Send("pomodoroStatusUpdate", strings.Repeat("y", 512)))
		}()
	}

	wg.Wait()

	r := NewReader(&buf)

	for range 20 {
		env, err := r.Read()
		require.NoError(t, err)
		assert.Equal(t, "pomodoroStatusUpdate", env.Type)
	}
}
