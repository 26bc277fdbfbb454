package registry

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Jayeshkushwaha/SocketChat/internal/domain"
	"github.com/Jayeshkushwaha/SocketChat/internal/event"
)

// Registry — реестр живых сессий. Инвариант: не более одной сессии на
// userId; повторная регистрация того же userId вытесняет старую сессию
// (takeover).
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session // sessionId -> session
	byUser   map[string]string          // вторичный индекс userId -> sessionId
	onChange func()
}

func New() *Registry {
	return &Registry{
		sessions: make(map[string]*domain.Session),
		byUser:   make(map[string]string),
	}
}

// OnChange ставит хук, вызываемый после каждого изменения множества живых
// сессий или отображаемого имени. Вызывается вне блокировки.
func (r *Registry) OnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Register создаёт сессию для пользователя. Если userId уже привязан к
// другой живой сессии, та принудительно закрывается и удаляется.
func (r *Registry) Register(sessionID, userID, displayName string, conn domain.Conn) (*domain.Session, error) {
	if userID == "" || strings.TrimSpace(displayName) == "" {
		return nil, domain.ErrInvalidIdentity
	}

	s := &domain.Session{
		ID:          sessionID,
		UserID:      userID,
		DisplayName: strings.TrimSpace(displayName),
		JoinedAt:    time.Now(),
		Conn:        conn,
	}

	r.mu.Lock()
	var evicted *domain.Session
	if oldID, ok := r.byUser[userID]; ok && oldID != sessionID {
		evicted = r.sessions[oldID]
		delete(r.sessions, oldID)
	}
	r.sessions[sessionID] = s
	r.byUser[userID] = sessionID
	notify := r.onChange
	r.mu.Unlock()

	// закрываем вытесненное соединение вне блокировки; Close идемпотентен,
	// даже если соединение уже закрылось само
	if evicted != nil && evicted.Conn != nil {
		_ = evicted.Conn.Close()
	}
	if notify != nil {
		notify()
	}
	return s, nil
}

// Rename меняет отображаемое имя сессии на месте
func (r *Registry) Rename(sessionID, newDisplayName string) (*domain.Session, error) {
	name := strings.TrimSpace(newDisplayName)
	if name == "" {
		return nil, domain.ErrInvalidIdentity
	}

	r.mu.Lock()
	old, ok := r.sessions[sessionID]
	if !ok {
		r.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	// сессия иммутабельна после публикации — заменяем копией
	cp := *old
	cp.DisplayName = name
	r.sessions[sessionID] = &cp
	notify := r.onChange
	r.mu.Unlock()

	if notify != nil {
		notify()
	}
	return &cp, nil
}

// Unregister удаляет сессию; отсутствие сессии не ошибка
func (r *Registry) Unregister(sessionID string) {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
		if r.byUser[s.UserID] == sessionID {
			delete(r.byUser, s.UserID)
		}
	}
	notify := r.onChange
	r.mu.Unlock()

	if ok && notify != nil && strings.TrimSpace(s.DisplayName) != "" {
		notify()
	}
}

func (r *Registry) Get(sessionID string) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// Resolve возвращает живую сессию логического пользователя
func (r *Registry) Resolve(userID string) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUser[userID]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[id]
	return s, ok
}

// ResolveSessions возвращает живые сессии для набора userId — ноль или одна
// на каждый id, всегда самая свежая регистрация.
func (r *Registry) ResolveSessions(userIDs []string) []*domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Session, 0, len(userIDs))
	for _, uid := range userIDs {
		if id, ok := r.byUser[uid]; ok {
			if s, ok := r.sessions[id]; ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func (r *Registry) All() []*domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Snapshot — дедуплицированный список достижимых пользователей с непустыми
// именами; питает presence_snapshot и выдачу групп при подключении.
func (r *Registry) Snapshot() []event.PresenceEntry {
	r.mu.RLock()
	entries := make([]event.PresenceEntry, 0, len(r.byUser))
	for uid, sid := range r.byUser {
		s, ok := r.sessions[sid]
		if !ok || strings.TrimSpace(s.DisplayName) == "" {
			continue
		}
		entries = append(entries, event.PresenceEntry{
			UserID:      uid,
			DisplayName: s.DisplayName,
			Reachable:   true,
		})
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
