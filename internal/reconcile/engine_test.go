package reconcile

import (
	"testing"
	"time"

	"github.com/Jayeshkushwaha/SocketChat/internal/directory"
	"github.com/Jayeshkushwaha/SocketChat/internal/domain"
	"github.com/Jayeshkushwaha/SocketChat/internal/registry"
	"github.com/Jayeshkushwaha/SocketChat/internal/relaytest"
	"github.com/Jayeshkushwaha/SocketChat/internal/rooms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*registry.Registry, *rooms.Store, *directory.Directory, *Engine) {
	t.Helper()
	reg := registry.New()
	rms := rooms.New(reg)
	dir := directory.New()
	e := New(reg, rms, dir)
	e.SetRecheckDelay(10 * time.Millisecond)
	return reg, rms, dir, e
}

func teamMembers() []domain.GroupMember {
	return []domain.GroupMember{
		{UserID: "u1", DisplayName: "Alice"},
		{UserID: "u2", DisplayName: "Bob"},
	}
}

func TestReconcile_SubscribesLiveMembers(t *testing.T) {
	reg, rms, dir, e := newFixture(t)

	_, _ = reg.Register("s1", "u1", "Alice", relaytest.NewConn())
	_, _ = reg.Register("s2", "u2", "Bob", relaytest.NewConn())
	_, _, err := dir.CreateOrUpdate("g1", "Team", "u1", teamMembers())
	require.NoError(t, err)

	e.Reconcile("g1")

	assert.ElementsMatch(t, []string{"s1", "s2"}, rms.SubscriberIDs("g1"))
}

func TestReconcile_OfflineMemberSkipped(t *testing.T) {
	reg, rms, dir, e := newFixture(t)

	_, _ = reg.Register("s1", "u1", "Alice", relaytest.NewConn())
	_, _, _ = dir.CreateOrUpdate("g1", "Team", "u1", teamMembers())

	e.Reconcile("g1")

	assert.ElementsMatch(t, []string{"s1"}, rms.SubscriberIDs("g1"))
}

func TestReconcile_NonGroupIsNoop(t *testing.T) {
	reg, rms, _, e := newFixture(t)

	_, _ = reg.Register("s1", "u1", "Alice", relaytest.NewConn())
	rms.EnsureConversation("u1:u2", domain.KindDirect, "")

	e.Reconcile("u1:u2")
	e.Reconcile("unknown")

	assert.Empty(t, rms.SubscriberIDs("u1:u2"))
}

func TestReconcile_DeferredPassPicksUpLateSession(t *testing.T) {
	reg, rms, dir, e := newFixture(t)

	_, _ = reg.Register("s1", "u1", "Alice", relaytest.NewConn())
	_, _, _ = dir.CreateOrUpdate("g1", "Team", "u1", teamMembers())

	e.Reconcile("g1")
	require.ElementsMatch(t, []string{"s1"}, rms.SubscriberIDs("g1"))

	// сессия участника появилась после первого прохода — её подбирает
	// отложенная перепроверка
	_, _ = reg.Register("s2", "u2", "Bob", relaytest.NewConn())

	assert.Eventually(t, func() bool {
		return len(rms.SubscriberIDs("g1")) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestReconcile_RecheckAfterDeleteIsNoop(t *testing.T) {
	reg, rms, dir, e := newFixture(t)

	_, _ = reg.Register("s1", "u1", "Alice", relaytest.NewConn())
	_, _, _ = dir.CreateOrUpdate("g1", "Team", "u1", teamMembers())

	e.Reconcile("g1")
	_, err := dir.Delete("g1", "u1")
	require.NoError(t, err)
	rms.Remove("g1")

	time.Sleep(50 * time.Millisecond) // таймер отрабатывает без паники
	assert.Empty(t, rms.SubscriberIDs("g1"))
}

func TestCancel_StopsPendingRecheck(t *testing.T) {
	reg, rms, dir, e := newFixture(t)

	_, _ = reg.Register("s1", "u1", "Alice", relaytest.NewConn())
	_, _, _ = dir.CreateOrUpdate("g1", "Team", "u1", teamMembers())

	e.Reconcile("g1")
	e.Cancel("g1")

	// опоздавшая сессия без нового Reconcile уже не подхватится
	_, _ = reg.Register("s2", "u2", "Bob", relaytest.NewConn())
	time.Sleep(50 * time.Millisecond)

	assert.ElementsMatch(t, []string{"s1"}, rms.SubscriberIDs("g1"))
}
