package store

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(filepath.Join(t.TempDir(), "data", "webfocus.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

func TestClientRoundTrip(t *testing.T) {
	c := newTestClient(t)

	err := c.Set(map[string][]byte{
		"categories":  []byte(`["Work","Other"]`),
		"trackedTime": []byte(`{"a.com":10}`),
	})
	require.NoError(t, err)

	got, err := c.Get("categories", "trackedTime", "missing")
	require.NoError(t, err)

	want := map[string][]byte{
		"categories":  []byte(`["Work","Other"]`),
		"trackedTime": []byte(`{"a.com":10}`),
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected values (-want +got):\n%s", diff)
	}
}

func TestClientRemove(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.Set(map[string][]byte{"trackingSession": []byte(`{}`)}))
	require.NoError(t, c.Remove("trackingSession", "never-set"))

	got, err := c.Get("trackingSession")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSecondClientIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webfocus.db")

	c, err := NewClient(path)
	require.NoError(t, err)

	defer c.Close()

	_, err = NewClient(path)
	assert.ErrorIs(t, err, errWebfocusRunning)
}

func TestMemoryCountsWrites(t *testing.T) {
	m := NewMemory()

	require.NoError(t, m.Set(map[string][]byte{"a": []byte("1")}))
	require.NoError(t, m.Set(map[string][]byte{"b": []byte("2")}))

	assert.Equal(t, 2, m.Writes())

	got, err := m.Get("a", "b", "c")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	var _ DB = m
	var _ DB = (*Client)(nil)
}
