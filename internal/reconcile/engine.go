package reconcile

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Jayeshkushwaha/SocketChat/internal/directory"
	"github.com/Jayeshkushwaha/SocketChat/internal/domain"
	"github.com/Jayeshkushwaha/SocketChat/internal/registry"
	"github.com/Jayeshkushwaha/SocketChat/internal/rooms"
)

const defaultRecheckDelay = 500 * time.Millisecond

// Engine сводит подписки комнат к заявленному составу групп: состав
// (Directory) и подписки (Store) обновляются независимыми путями и могут
// расходиться — например, join участника обогнал событие создания группы.
type Engine struct {
	reg   *registry.Registry
	rooms *rooms.Store
	dir   *directory.Directory
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer // conversationId -> отложенная перепроверка
}

func New(reg *registry.Registry, rms *rooms.Store, dir *directory.Directory) *Engine {
	return &Engine{
		reg:     reg,
		rooms:   rms,
		dir:     dir,
		delay:   defaultRecheckDelay,
		pending: make(map[string]*time.Timer),
	}
}

// SetRecheckDelay меняет задержку отложенной перепроверки (для тестов)
func (e *Engine) SetRecheckDelay(d time.Duration) {
	if d > 0 {
		e.delay = d
	}
}

// Reconcile подписывает каждую живую сессию участника группы на её диалог и
// планирует одну отложенную перепроверку. Для не-групп — no-op.
func (e *Engine) Reconcile(conversationID string) {
	rec, ok := e.dir.Get(conversationID)
	if !ok {
		return
	}
	e.pass(rec)
	e.schedule(conversationID)
}

// pass — один проход: resolve живых сессий участников и идемпотентная
// подписка. Возвращает число подписанных после прохода.
func (e *Engine) pass(rec *domain.GroupRecord) int {
	for uid := range rec.Members {
		if s, ok := e.reg.Resolve(uid); ok {
			e.rooms.Subscribe(s.ID, rec.ConversationID)
		}
	}
	return len(e.rooms.SubscriberIDs(rec.ConversationID))
}

// schedule ставит один отменяемый таймер на диалог; повторный Reconcile
// передвигает его вместо накопления таймеров.
func (e *Engine) schedule(conversationID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t, ok := e.pending[conversationID]; ok {
		t.Stop()
	}
	e.pending[conversationID] = time.AfterFunc(e.delay, func() {
		e.recheck(conversationID)
	})
}

// recheck — единственная отложенная доработка: компенсирует подписки,
// ещё не вступившие в силу на момент первого прохода. Не более одного
// дополнительного прохода; остаточный разрыв только логируется.
func (e *Engine) recheck(conversationID string) {
	e.mu.Lock()
	delete(e.pending, conversationID)
	e.mu.Unlock()

	rec, ok := e.dir.Get(conversationID)
	if !ok {
		return // группа удалена в промежутке
	}
	if len(e.rooms.SubscriberIDs(conversationID)) >= len(rec.Members) {
		return
	}
	subscribed := e.pass(rec)
	if subscribed < len(rec.Members) {
		slog.Debug("reconcile gap remains after recheck",
			"conversation", conversationID,
			"subscribed", subscribed,
			"members", len(rec.Members))
	}
}

// Cancel снимает отложенную перепроверку — вызывается при удалении группы,
// чтобы не держать таймер на удалённом состоянии.
func (e *Engine) Cancel(conversationID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.pending[conversationID]; ok {
		t.Stop()
		delete(e.pending, conversationID)
	}
}
