package rooms

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Jayeshkushwaha/SocketChat/internal/domain"
	"github.com/Jayeshkushwaha/SocketChat/internal/event"
	"github.com/Jayeshkushwaha/SocketChat/internal/registry"
)

// Store владеет записями Conversation и отношением подписки
// "сессия -> диалог". Реестр сессий — read-only вход при резолве живых
// подписчиков.
type Store struct {
	mu        sync.RWMutex
	convs     map[string]*domain.Conversation
	subs      map[string]map[string]struct{} // conversationId -> set(sessionId)
	bySession map[string]map[string]struct{} // sessionId -> set(conversationId)

	reg *registry.Registry
}

func New(reg *registry.Registry) *Store {
	return &Store{
		convs:     make(map[string]*domain.Conversation),
		subs:      make(map[string]map[string]struct{}),
		bySession: make(map[string]map[string]struct{}),
		reg:       reg,
	}
}

// EnsureConversation лениво создаёт запись диалога; повторные вызовы — no-op
func (s *Store) EnsureConversation(id string, kind domain.ConversationKind, name string) *domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.convs[id]; ok {
		return c
	}
	c := &domain.Conversation{ID: id, Kind: kind, Name: name, CreatedAt: time.Now()}
	s.convs[id] = c
	return c
}

func (s *Store) Get(id string) (*domain.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.convs[id]
	return c, ok
}

// Subscribe — идемпотентная подписка сессии на диалог
func (s *Store) Subscribe(sessionID, conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.subs[conversationID]
	if !ok {
		set = make(map[string]struct{})
		s.subs[conversationID] = set
	}
	set[sessionID] = struct{}{}

	back, ok := s.bySession[sessionID]
	if !ok {
		back = make(map[string]struct{})
		s.bySession[sessionID] = back
	}
	back[conversationID] = struct{}{}
}

func (s *Store) Unsubscribe(sessionID, conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drop(sessionID, conversationID)
}

// drop вызывается под блокировкой
func (s *Store) drop(sessionID, conversationID string) {
	if set, ok := s.subs[conversationID]; ok {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(s.subs, conversationID)
		}
	}
	if back, ok := s.bySession[sessionID]; ok {
		delete(back, conversationID)
		if len(back) == 0 {
			delete(s.bySession, sessionID)
		}
	}
}

// DropSession снимает все подписки сессии и возвращает затронутые диалоги
func (s *Store) DropSession(sessionID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	back := s.bySession[sessionID]
	affected := make([]string, 0, len(back))
	for convID := range back {
		affected = append(affected, convID)
		if set, ok := s.subs[convID]; ok {
			delete(set, sessionID)
			if len(set) == 0 {
				delete(s.subs, convID)
			}
		}
	}
	delete(s.bySession, sessionID)
	return affected
}

// Remove удаляет диалог вместе с подписками (удаление группы)
func (s *Store) Remove(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sessionID := range s.subs[conversationID] {
		if back, ok := s.bySession[sessionID]; ok {
			delete(back, conversationID)
			if len(back) == 0 {
				delete(s.bySession, sessionID)
			}
		}
	}
	delete(s.subs, conversationID)
	delete(s.convs, conversationID)
}

func (s *Store) SubscriberIDs(conversationID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.subs[conversationID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// SubscribersOf возвращает живые сессии, подписанные на диалог; мёртвые
// sessionId молча пропускаются.
func (s *Store) SubscribersOf(conversationID string) []*domain.Session {
	ids := s.SubscriberIDs(conversationID)
	out := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		if sess, ok := s.reg.Get(id); ok {
			out = append(out, sess)
		}
	}
	return out
}

// Broadcast рассылает событие всем живым подписчикам диалога, кроме
// exceptSessionID; доставка best-effort.
func (s *Store) Broadcast(conversationID, exceptSessionID string, evt event.Event) {
	for _, sess := range s.SubscribersOf(conversationID) {
		if sess.ID == exceptSessionID {
			continue
		}
		if err := sess.Conn.Send(evt); err != nil {
			slog.Debug("room broadcast send failed",
				"conversation", conversationID, "session", sess.ID, "err", err)
		}
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convs)
}
