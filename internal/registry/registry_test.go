package registry

import (
	"fmt"
	"testing"

	"github.com/Jayeshkushwaha/SocketChat/internal/domain"
	"github.com/Jayeshkushwaha/SocketChat/internal/relaytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Validation(t *testing.T) {
	r := New()

	_, err := r.Register("s1", "", "Alice", relaytest.NewConn())
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)

	_, err = r.Register("s1", "u1", "   ", relaytest.NewConn())
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)

	assert.Equal(t, 0, r.Len())
}

func TestRegister_TakeoverEvictsPrevious(t *testing.T) {
	r := New()
	old := relaytest.NewConn()

	_, err := r.Register("s1", "u1", "Alice", old)
	require.NoError(t, err)

	neu := relaytest.NewConn()
	_, err = r.Register("s2", "u1", "Alice", neu)
	require.NoError(t, err)

	assert.True(t, old.Closed(), "evicted connection must be closed")
	assert.Equal(t, 1, r.Len())

	s, ok := r.Resolve("u1")
	require.True(t, ok)
	assert.Equal(t, "s2", s.ID)

	_, ok = r.Get("s1")
	assert.False(t, ok)
}

func TestRegister_OnlyMostRecentSurvives(t *testing.T) {
	r := New()

	// серия регистраций одного userId — живой остаётся только последняя
	var conns []*relaytest.Conn
	for i := 0; i < 5; i++ {
		c := relaytest.NewConn()
		conns = append(conns, c)
		_, err := r.Register(fmt.Sprintf("s%d", i), "u1", "Alice", c)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, r.Len())
	s, ok := r.Resolve("u1")
	require.True(t, ok)
	assert.Equal(t, "s4", s.ID)
	for i := 0; i < 4; i++ {
		assert.True(t, conns[i].Closed(), "conn %d must be evicted", i)
	}
	assert.False(t, conns[4].Closed())
}

func TestUnregister_AbsentIsNoop(t *testing.T) {
	r := New()
	r.Unregister("nope") // не ошибка и не паника
	assert.Equal(t, 0, r.Len())
}

func TestUnregister_RemovesIndex(t *testing.T) {
	r := New()
	_, err := r.Register("s1", "u1", "Alice", relaytest.NewConn())
	require.NoError(t, err)

	r.Unregister("s1")

	_, ok := r.Resolve("u1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRename(t *testing.T) {
	r := New()
	_, err := r.Register("s1", "u1", "Alice", relaytest.NewConn())
	require.NoError(t, err)

	_, err = r.Rename("s1", "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)

	_, err = r.Rename("missing", "Bob")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	s, err := r.Rename("s1", "Alicia")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", s.DisplayName)

	got, ok := r.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "Alicia", got.DisplayName)
}

func TestResolveSessions_ZeroOrOnePerID(t *testing.T) {
	r := New()
	_, _ = r.Register("s1", "u1", "Alice", relaytest.NewConn())
	_, _ = r.Register("s2", "u2", "Bob", relaytest.NewConn())

	sessions := r.ResolveSessions([]string{"u1", "ghost", "u2"})
	require.Len(t, sessions, 2)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.Equal(t, "s2", sessions[1].ID)
}

func TestResolveSessions_ReflectsTakeover(t *testing.T) {
	r := New()
	_, _ = r.Register("s1", "u1", "Alice", relaytest.NewConn())
	_, _ = r.Register("s2", "u1", "Alice", relaytest.NewConn())

	sessions := r.ResolveSessions([]string{"u1"})
	require.Len(t, sessions, 1)
	assert.Equal(t, "s2", sessions[0].ID)
}

func TestSnapshot_SortedAndReachable(t *testing.T) {
	r := New()
	_, _ = r.Register("s2", "u2", "Bob", relaytest.NewConn())
	_, _ = r.Register("s1", "u1", "Alice", relaytest.NewConn())

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "u1", snap[0].UserID)
	assert.Equal(t, "u2", snap[1].UserID)
	for _, e := range snap {
		assert.True(t, e.Reachable)
	}
}

func TestOnChange_Notifications(t *testing.T) {
	r := New()
	var calls int
	r.OnChange(func() { calls++ })

	_, _ = r.Register("s1", "u1", "Alice", relaytest.NewConn())
	assert.Equal(t, 1, calls)

	_, _ = r.Rename("s1", "Alicia")
	assert.Equal(t, 2, calls)

	r.Unregister("s1")
	assert.Equal(t, 3, calls)

	// отсутствие сессии — без уведомления
	r.Unregister("s1")
	assert.Equal(t, 3, calls)
}
