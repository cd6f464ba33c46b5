package hub

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/E-LOVE-APP/chat-service/internal/domain"
)

// fakeTransport is an in-memory Transport for exercising sessions without
// a network.
type fakeTransport struct {
	mu      sync.Mutex
	inbound chan []byte
	written [][]byte
	pings   int
	closed  bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{inbound: make(chan []byte, 16)}
}

func (t *fakeTransport) ReadFrame() ([]byte, error) {
	data, ok := <-t.inbound
	if !ok {
		return nil, io.EOF
	}
	return data, nil
}

func (t *fakeTransport) WriteFrame(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return io.ErrClosedPipe
	}
	t.written = append(t.written, data)
	return nil
}

func (t *fakeTransport) Ping() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pings++
	return nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.inbound)
	return nil
}

func (t *fakeTransport) writtenFrames() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.written))
	copy(out, t.written)
	return out
}

func testSessionConfig() Config {
	return Config{
		PingInterval:  time.Minute,
		WriteWait:     time.Second,
		QueueCapacity: 16,
		QueuePolicy:   PolicyDropNewest,
	}
}

func TestSessionLifecycle(t *testing.T) {
	r := NewRegistry()
	s := NewSession("s1", "conv-1", "alice", newFakeTransport(), r, testSessionConfig())

	require.Equal(t, StateConnecting, s.State())
	require.Equal(t, 0, r.Count("conv-1"))

	require.True(t, s.Activate())
	require.Equal(t, StateActive, s.State())
	require.Equal(t, 1, r.Count("conv-1"))

	// A session can only be activated out of connecting.
	require.False(t, s.Activate())

	s.Close()
	require.Equal(t, StateClosed, s.State())
	require.Equal(t, 0, r.Count("conv-1"))

	select {
	case <-s.Done():
	default:
		t.Fatal("done channel not closed after Close")
	}

	// Closing again is a no-op.
	s.Close()
	require.Equal(t, StateClosed, s.State())
}

func TestSessionCloseFromConnecting(t *testing.T) {
	r := NewRegistry()
	s := NewSession("s1", "conv-1", "alice", newFakeTransport(), r, testSessionConfig())

	s.Close()
	require.Equal(t, StateClosed, s.State())
	require.False(t, s.Activate())
	require.Equal(t, 0, r.Count("conv-1"))
}

func TestSessionDeliverRequiresActive(t *testing.T) {
	r := NewRegistry()
	s := NewSession("s1", "conv-1", "alice", newFakeTransport(), r, testSessionConfig())

	require.False(t, s.Deliver(domain.NewErrorFrame("early")))
	require.Equal(t, 0, s.Queue().Len())

	require.True(t, s.Activate())
	require.True(t, s.Deliver(domain.NewErrorFrame("now")))
	require.Equal(t, 1, s.Queue().Len())

	s.Close()
	require.False(t, s.Deliver(domain.NewErrorFrame("late")))
}

func TestSessionDeliverPreservesOrder(t *testing.T) {
	r := NewRegistry()
	s := NewSession("s1", "conv-1", "alice", newFakeTransport(), r, testSessionConfig())
	require.True(t, s.Activate())

	for _, content := range []string{"hi", "yo", "sup"} {
		msg := &domain.Message{ID: content, ConversationID: "conv-1", Content: content, Status: domain.StatusSent}
		require.True(t, s.Deliver(domain.NewMessageFrame(domain.ActionNewMessage, msg)))
	}

	var contents []string
	for _, raw := range s.Queue().Drain(10) {
		var frame domain.MessageFrame
		require.NoError(t, json.Unmarshal(raw, &frame))
		contents = append(contents, frame.Data.Content)
	}
	require.Equal(t, []string{"hi", "yo", "sup"}, contents)
}

func TestSessionOverflowDisconnect(t *testing.T) {
	cfg := testSessionConfig()
	cfg.QueueCapacity = 1
	cfg.QueuePolicy = PolicyDisconnect

	r := NewRegistry()
	s := NewSession("s1", "conv-1", "alice", newFakeTransport(), r, cfg)
	require.True(t, s.Activate())

	require.True(t, s.Deliver(domain.NewErrorFrame("first")))
	require.False(t, s.Deliver(domain.NewErrorFrame("overflow")))

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("disconnect policy did not close the session")
	}
	require.Equal(t, StateClosed, s.State())
	require.Equal(t, 0, r.Count("conv-1"))
}

func TestSessionOverflowDropNewestKeepsSession(t *testing.T) {
	cfg := testSessionConfig()
	cfg.QueueCapacity = 1
	cfg.QueuePolicy = PolicyDropNewest

	r := NewRegistry()
	s := NewSession("s1", "conv-1", "alice", newFakeTransport(), r, cfg)
	require.True(t, s.Activate())

	require.True(t, s.Deliver(domain.NewErrorFrame("first")))
	require.False(t, s.Deliver(domain.NewErrorFrame("overflow")))
	require.Equal(t, StateActive, s.State())
}

func TestSessionWritePumpDrainsQueue(t *testing.T) {
	tr := newFakeTransport()
	r := NewRegistry()
	s := NewSession("s1", "conv-1", "alice", tr, r, testSessionConfig())
	require.True(t, s.Activate())

	require.True(t, s.Deliver(domain.NewErrorFrame("one")))
	require.True(t, s.Deliver(domain.NewErrorFrame("two")))

	done := make(chan struct{})
	go func() {
		s.WritePump()
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(tr.writtenFrames()) == 2
	}, time.Second, 10*time.Millisecond)

	s.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write pump did not stop after close")
	}

	written := tr.writtenFrames()
	require.JSONEq(t, `{"error":"one"}`, string(written[0]))
	require.JSONEq(t, `{"error":"two"}`, string(written[1]))
}

func TestSessionReadPumpDispatchesFrames(t *testing.T) {
	tr := newFakeTransport()
	r := NewRegistry()
	s := NewSession("s1", "conv-1", "alice", tr, r, testSessionConfig())
	require.True(t, s.Activate())

	var mu sync.Mutex
	var got [][]byte
	handler := func(ctx context.Context, sess *Session, frame []byte) {
		mu.Lock()
		got = append(got, frame)
		mu.Unlock()
	}

	done := make(chan struct{})
	go func() {
		s.ReadPump(context.Background(), handler)
		close(done)
	}()

	tr.inbound <- []byte(`{"action":"send_message"}`)
	tr.inbound <- []byte(`{"action":"other"}`)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 10*time.Millisecond)

	// Peer disconnect ends the pump and tears the session down.
	tr.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("read pump did not stop after transport close")
	}
	require.Equal(t, StateClosed, s.State())
}
