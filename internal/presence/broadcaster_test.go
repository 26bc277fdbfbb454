package presence

import (
	"testing"

	"github.com/Jayeshkushwaha/SocketChat/internal/event"
	"github.com/Jayeshkushwaha/SocketChat/internal/registry"
	"github.com/Jayeshkushwaha/SocketChat/internal/relaytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcast_PushesSnapshotToEverySession(t *testing.T) {
	reg := registry.New()
	a, b := relaytest.NewConn(), relaytest.NewConn()
	_, _ = reg.Register("s1", "u1", "Alice", a)
	_, _ = reg.Register("s2", "u2", "Bob", b)

	New(reg).Broadcast()

	for _, c := range []*relaytest.Conn{a, b} {
		got := c.OfType(event.TypePresenceSnapshot)
		require.Len(t, got, 1)
		snap := got[0].Payload.(event.PresenceSnapshotPayload)
		assert.Len(t, snap.Users, 2)
	}
}

func TestAttach_BroadcastsOnRegistryChanges(t *testing.T) {
	reg := registry.New()
	New(reg).Attach()

	a := relaytest.NewConn()
	_, _ = reg.Register("s1", "u1", "Alice", a)
	assert.Equal(t, 1, a.CountOf(event.TypePresenceSnapshot))

	b := relaytest.NewConn()
	_, _ = reg.Register("s2", "u2", "Bob", b)
	assert.Equal(t, 2, a.CountOf(event.TypePresenceSnapshot))
	assert.Equal(t, 1, b.CountOf(event.TypePresenceSnapshot))

	reg.Unregister("s2")
	// после ухода Bob снапшот приходит только Alice
	got := a.OfType(event.TypePresenceSnapshot)
	require.Len(t, got, 3)
	snap := got[2].Payload.(event.PresenceSnapshotPayload)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, "u1", snap.Users[0].UserID)
}
