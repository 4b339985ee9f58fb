package tail

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/TraceStream/backend/internal/domain/logstore"
)

// syncBuffer lets the test read output while Run writes it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRenderPrintsOnlyNewLines(t *testing.T) {
	store := logstore.New()
	var out bytes.Buffer
	tail := New(store, &out, nil)

	store.Append("foo")
	require.NoError(t, tail.Render(store.Snapshot()))
	store.Append("bar")
	store.Append("baz")
	require.NoError(t, tail.Render(store.Snapshot()))

	// Rendering the same snapshot twice prints nothing new
	require.NoError(t, tail.Render(store.Snapshot()))

	assert.Equal(t, "foo\nbar\nbaz\n", out.String())
}

func TestRenderPrintsBannerOnReset(t *testing.T) {
	store := logstore.New()
	var out bytes.Buffer
	tail := New(store, &out, nil)

	store.Append("foo")
	require.NoError(t, tail.Render(store.Snapshot()))

	store.Reset()
	require.NoError(t, tail.Render(store.Snapshot()))

	store.Append("bar")
	require.NoError(t, tail.Render(store.Snapshot()))

	assert.Equal(t, "foo\n"+ResetBanner+"\nbar\n", out.String())
}

func TestRenderCoalescedResets(t *testing.T) {
	store := logstore.New()
	var out bytes.Buffer
	tail := New(store, &out, nil)

	store.Append("foo")
	require.NoError(t, tail.Render(store.Snapshot()))

	// Reset and new content arrive between two renders
	store.Reset()
	store.Append("a")
	store.Reset()
	store.Append("b")
	store.Append("c")
	require.NoError(t, tail.Render(store.Snapshot()))

	assert.Equal(t, "foo\n"+ResetBanner+"\nb\nc\n", out.String())
}

func TestRenderEmptyLines(t *testing.T) {
	store := logstore.New()
	var out bytes.Buffer
	tail := New(store, &out, nil)

	store.Append("")
	require.NoError(t, tail.Render(store.Snapshot()))
	store.Append("x")
	store.Append("")
	require.NoError(t, tail.Render(store.Snapshot()))

	assert.Equal(t, "\nx\n\n", out.String())
}

func TestRenderIgnoresResetBeforeFirstRender(t *testing.T) {
	store := logstore.New()
	store.Reset()
	store.Append("foo")

	var out bytes.Buffer
	tail := New(store, &out, nil)
	require.NoError(t, tail.Render(store.Snapshot()))

	assert.Equal(t, "foo\n", out.String())
}

func TestRunFollowsStore(t *testing.T) {
	store := logstore.New()
	store.Append("existing")

	out := &syncBuffer{}
	tail := New(store, out, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tail.Run(ctx) }()

	require.Eventually(t, func() bool {
		return out.String() == "existing\n" && store.Stats().Subscribers == 1
	}, time.Second, 5*time.Millisecond)

	store.Append("next")
	store.Reset()
	store.Append("fresh")

	require.Eventually(t, func() bool {
		return out.String() == "existing\nnext\n"+ResetBanner+"\nfresh\n" ||
			out.String() == "existing\n"+ResetBanner+"\nfresh\n"
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
	assert.Equal(t, 0, store.Stats().Subscribers)
}

func TestNonTerminalOutputHasNoColor(t *testing.T) {
	store := logstore.New()
	var out bytes.Buffer
	tail := New(store, &out, nil)

	store.Append("a")
	require.NoError(t, tail.Render(store.Snapshot()))
	store.Reset()
	require.NoError(t, tail.Render(store.Snapshot()))

	assert.NotContains(t, out.String(), "\x1b[")
}
