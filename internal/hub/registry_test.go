package hub

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterUnregister(t *testing.T) {
	r := NewRegistry()
	s1 := NewSession("s1", "conv-1", "alice", newFakeTransport(), r, testSessionConfig())
	s2 := NewSession("s2", "conv-1", "bob", newFakeTransport(), r, testSessionConfig())

	require.Equal(t, 0, r.Count("conv-1"))

	r.Register("conv-1", s1)
	r.Register("conv-1", s1) // idempotent
	r.Register("conv-1", s2)
	require.Equal(t, 2, r.Count("conv-1"))

	subs := r.SubscribersOf("conv-1")
	require.Len(t, subs, 2)
	require.ElementsMatch(t, []*Session{s1, s2}, subs)

	r.Unregister("conv-1", s1)
	r.Unregister("conv-1", s1) // safe to repeat
	require.Equal(t, 1, r.Count("conv-1"))
	require.Equal(t, []*Session{s2}, r.SubscribersOf("conv-1"))

	r.Unregister("conv-1", s2)
	require.Equal(t, 0, r.Count("conv-1"))
	require.Empty(t, r.SubscribersOf("conv-1"))
}

func TestRegistryIsolatesConversations(t *testing.T) {
	r := NewRegistry()
	s1 := NewSession("s1", "conv-1", "alice", newFakeTransport(), r, testSessionConfig())
	s2 := NewSession("s2", "conv-2", "carol", newFakeTransport(), r, testSessionConfig())

	r.Register("conv-1", s1)
	r.Register("conv-2", s2)

	require.Equal(t, []*Session{s1}, r.SubscribersOf("conv-1"))
	require.Equal(t, []*Session{s2}, r.SubscribersOf("conv-2"))
	require.Empty(t, r.SubscribersOf("conv-3"))
}

func TestRegistrySnapshotIsDetached(t *testing.T) {
	r := NewRegistry()
	s1 := NewSession("s1", "conv-1", "alice", newFakeTransport(), r, testSessionConfig())

	r.Register("conv-1", s1)
	snapshot := r.SubscribersOf("conv-1")
	r.Unregister("conv-1", s1)

	// The earlier snapshot is unaffected by later mutation.
	require.Equal(t, []*Session{s1}, snapshot)
	require.Equal(t, 0, r.Count("conv-1"))
}
