package directory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Jayeshkushwaha/SocketChat/internal/domain"
	"github.com/samber/lo"
)

// Directory владеет GroupRecord'ами — источником истины по составу групп в
// пределах жизни процесса.
type Directory struct {
	mu     sync.RWMutex
	groups map[string]*domain.GroupRecord
}

func New() *Directory {
	return &Directory{groups: make(map[string]*domain.GroupRecord)}
}

// CreateOrUpdate создаёт запись группы либо полностью заменяет имя и состав
// существующей (replace, не merge); CreatorUserID при обновлении не меняется
// независимо от вызывающего. Возвращает created=true при создании — от этого
// зависит fan-out уведомлений.
func (d *Directory) CreateOrUpdate(conversationID, name, creatorUserID string, members []domain.GroupMember) (*domain.GroupRecord, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, domain.ErrInvalidGroup
	}

	// участники с пустым именем отбрасываются на границе и не сохраняются
	valid := lo.Filter(members, func(m domain.GroupMember, _ int) bool {
		return m.UserID != "" && strings.TrimSpace(m.DisplayName) != ""
	})
	if len(valid) == 0 {
		return nil, false, domain.ErrInvalidGroup
	}

	set := make(map[string]domain.GroupMember, len(valid))
	for _, m := range valid {
		m.DisplayName = strings.TrimSpace(m.DisplayName)
		set[m.UserID] = m
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if g, ok := d.groups[conversationID]; ok {
		g.Name = name
		g.Members = set
		return g.Clone(), false, nil
	}

	g := &domain.GroupRecord{
		ConversationID: conversationID,
		Name:           name,
		CreatorUserID:  creatorUserID,
		Members:        set,
		CreatedAt:      time.Now(),
	}
	d.groups[conversationID] = g
	return g.Clone(), true, nil
}

// Delete удаляет группу; разрешено только создателю. Возвращает удалённую
// запись — её состав нужен для рассылки уведомлений.
func (d *Directory) Delete(conversationID, requesterUserID string) (*domain.GroupRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.groups[conversationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if g.CreatorUserID != requesterUserID {
		return nil, domain.ErrUnauthorized
	}
	delete(d.groups, conversationID)
	return g, nil
}

func (d *Directory) Get(conversationID string) (*domain.GroupRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.groups[conversationID]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// ListFor возвращает все группы, в составе которых есть userID — выдаётся
// переподключившемуся пользователю.
func (d *Directory) ListFor(userID string) []*domain.GroupRecord {
	d.mu.RLock()
	out := make([]*domain.GroupRecord, 0)
	for _, g := range d.groups {
		if g.HasMember(userID) {
			out = append(out, g.Clone())
		}
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ConversationID < out[j].ConversationID })
	return out
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.groups)
}
