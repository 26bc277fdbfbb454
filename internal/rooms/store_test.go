package rooms

import (
	"testing"

	"github.com/Jayeshkushwaha/SocketChat/internal/domain"
	"github.com/Jayeshkushwaha/SocketChat/internal/event"
	"github.com/Jayeshkushwaha/SocketChat/internal/registry"
	"github.com/Jayeshkushwaha/SocketChat/internal/relaytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureConversation_Idempotent(t *testing.T) {
	s := New(registry.New())

	first := s.EnsureConversation("c1", domain.KindDirect, "")
	second := s.EnsureConversation("c1", domain.KindGroup, "other")

	assert.Same(t, first, second)
	assert.Equal(t, domain.KindDirect, second.Kind)
	assert.Equal(t, 1, s.Len())
}

func TestSubscribe_Idempotent(t *testing.T) {
	s := New(registry.New())
	s.EnsureConversation("c1", domain.KindDirect, "")

	s.Subscribe("s1", "c1")
	s.Subscribe("s1", "c1")

	assert.Len(t, s.SubscriberIDs("c1"), 1)
}

func TestUnsubscribe_RedundantIsSafe(t *testing.T) {
	s := New(registry.New())
	s.Subscribe("s1", "c1")

	s.Unsubscribe("s1", "c1")
	s.Unsubscribe("s1", "c1")
	s.Unsubscribe("ghost", "c1")

	assert.Empty(t, s.SubscriberIDs("c1"))
}

func TestSubscribersOf_SkipsDeadSessions(t *testing.T) {
	reg := registry.New()
	s := New(reg)

	_, err := reg.Register("s1", "u1", "Alice", relaytest.NewConn())
	require.NoError(t, err)

	s.Subscribe("s1", "c1")
	s.Subscribe("dead", "c1")

	subs := s.SubscribersOf("c1")
	require.Len(t, subs, 1)
	assert.Equal(t, "s1", subs[0].ID)
}

func TestDropSession_ReturnsAffected(t *testing.T) {
	s := New(registry.New())
	s.Subscribe("s1", "c1")
	s.Subscribe("s1", "c2")
	s.Subscribe("s2", "c1")

	affected := s.DropSession("s1")
	assert.ElementsMatch(t, []string{"c1", "c2"}, affected)
	assert.Len(t, s.SubscriberIDs("c1"), 1)
	assert.Empty(t, s.SubscriberIDs("c2"))
}

func TestRemove_ClearsConversationAndSubs(t *testing.T) {
	s := New(registry.New())
	s.EnsureConversation("c1", domain.KindGroup, "Team")
	s.Subscribe("s1", "c1")

	s.Remove("c1")

	_, ok := s.Get("c1")
	assert.False(t, ok)
	assert.Empty(t, s.SubscriberIDs("c1"))
	assert.Empty(t, s.DropSession("s1"))
}

func TestBroadcast_ExcludesSender(t *testing.T) {
	reg := registry.New()
	s := New(reg)

	a, b := relaytest.NewConn(), relaytest.NewConn()
	_, _ = reg.Register("sa", "ua", "A", a)
	_, _ = reg.Register("sb", "ub", "B", b)
	s.Subscribe("sa", "c1")
	s.Subscribe("sb", "c1")

	s.Broadcast("c1", "sa", event.Event{Type: event.TypeTypingState})

	assert.Equal(t, 0, a.CountOf(event.TypeTypingState))
	assert.Equal(t, 1, b.CountOf(event.TypeTypingState))
}
