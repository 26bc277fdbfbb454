package service

import (
	"fmt"
	"log/slog"

	"github.com/Jayeshkushwaha/SocketChat/internal/directory"
	"github.com/Jayeshkushwaha/SocketChat/internal/domain"
	"github.com/Jayeshkushwaha/SocketChat/internal/event"
	"github.com/Jayeshkushwaha/SocketChat/internal/reconcile"
	"github.com/Jayeshkushwaha/SocketChat/internal/registry"
	"github.com/Jayeshkushwaha/SocketChat/internal/rooms"
	"github.com/Jayeshkushwaha/SocketChat/internal/router"
)

// RelayService — оркестрация граничных событий поверх шести компонентов
// ядра. Ошибки валидации возвращаются вызывающему транспорту и уходят только
// сессии-инициатору; общее состояние они не трогают.
type RelayService struct {
	reg    *registry.Registry
	rooms  *rooms.Store
	dir    *directory.Directory
	rec    *reconcile.Engine
	router *router.Router
}

func NewRelayService(reg *registry.Registry, rms *rooms.Store, dir *directory.Directory, rec *reconcile.Engine, rt *router.Router) *RelayService {
	return &RelayService{reg: reg, rooms: rms, dir: dir, rec: rec, router: rt}
}

// Join регистрирует логического пользователя на транспортной сессии.
// Presence рассылается реестром через хук; сюда же сессия получает свой
// список групп — для переподключившегося пользователя это восстановление.
func (s *RelayService) Join(sessionID string, conn domain.Conn, p event.JoinPayload) error {
	sess, err := s.reg.Register(sessionID, p.UserID, p.DisplayName, conn)
	if err != nil {
		return err
	}

	groups := s.dir.ListFor(sess.UserID)
	items := make([]event.GroupItem, 0, len(groups))
	for _, g := range groups {
		items = append(items, router.GroupItem(g))
	}
	if err := conn.Send(event.Event{
		Type:    event.TypeAvailableGroups,
		Payload: event.AvailableGroupsPayload{Groups: items},
	}); err != nil {
		slog.Debug("available groups push failed", "session", sessionID, "err", err)
	}
	return nil
}

// JoinConversation лениво создаёт диалог и подписывает сессию. Групповой
// payload (состав + имя) дополнительно обновляет Directory; на любом
// групповом диалоге затем запускается reconcile — join события и создание
// группы приходят без гарантий порядка.
func (s *RelayService) JoinConversation(sessionID string, p event.JoinConversationPayload) error {
	if p.ConversationID == "" {
		return fmt.Errorf("conversation id required: %w", domain.ErrNotFound)
	}

	kind := domain.KindDirect
	if p.IsGroup {
		kind = domain.KindGroup
	}
	s.rooms.EnsureConversation(p.ConversationID, kind, p.GroupName)
	s.rooms.Subscribe(sessionID, p.ConversationID)

	s.rooms.Broadcast(p.ConversationID, sessionID, event.Event{
		Type: event.TypeMemberJoined,
		Payload: event.MemberEventPayload{
			ConversationID: p.ConversationID,
			UserID:         p.UserID,
			DisplayName:    p.DisplayName,
		},
	})

	if p.IsGroup && len(p.Members) > 0 {
		members := make([]domain.GroupMember, 0, len(p.Members))
		for _, m := range p.Members {
			members = append(members, domain.GroupMember{UserID: m.UserID, DisplayName: m.DisplayName})
		}
		rec, created, err := s.dir.CreateOrUpdate(p.ConversationID, p.GroupName, p.UserID, members)
		if err != nil {
			return err
		}
		s.router.NotifyGroup(rec, created, sessionID)
	}

	if _, isGroup := s.dir.Get(p.ConversationID); isGroup {
		s.rec.Reconcile(p.ConversationID)
	}
	return nil
}

func (s *RelayService) Message(sessionID string, p event.MessagePayload) {
	s.router.Route(sessionID, p)
}

func (s *RelayService) Typing(sessionID string, p event.TypingPayload) {
	s.router.RouteTyping(sessionID, p)
}

// Rename меняет отображаемое имя сессии; presence уходит через хук реестра,
// плюс всем рассылается системное сообщение о переименовании.
func (s *RelayService) Rename(sessionID string, p event.RenamePayload) error {
	before, ok := s.reg.Get(sessionID)
	sess, err := s.reg.Rename(sessionID, p.NewName)
	if err != nil {
		return err
	}

	oldName := p.OldName
	if ok && before.DisplayName != "" {
		oldName = before.DisplayName
	}
	s.router.Route(sessionID, event.MessagePayload{
		UserID:      sess.UserID,
		DisplayName: sess.DisplayName,
		Text:        fmt.Sprintf("%s is now known as %s", oldName, sess.DisplayName),
		Kind:        string(domain.MessageSystem),
	})
	return nil
}

// GroupInfo возвращает снапшот группы и заодно (пере)подписывает
// запросившую сессию — getGroupInfo используется клиентом как восстановление
// после реконнекта.
func (s *RelayService) GroupInfo(sessionID, conversationID string) (*domain.GroupRecord, error) {
	rec, ok := s.dir.Get(conversationID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.rooms.EnsureConversation(conversationID, domain.KindGroup, rec.Name)
	s.rooms.Subscribe(sessionID, conversationID)
	s.rec.Reconcile(conversationID)
	return rec, nil
}

// DeleteGroup удаляет группу (только создатель) вместе с диалогом,
// подписками и отложенной перепроверкой, затем уведомляет бывших участников.
func (s *RelayService) DeleteGroup(sessionID string, p event.DeleteGroupPayload) error {
	removed, err := s.dir.Delete(p.ConversationID, p.UserID)
	if err != nil {
		return err
	}

	s.rec.Cancel(p.ConversationID)
	s.rooms.Remove(p.ConversationID)

	notice := event.Event{
		Type: event.TypeGroupDeleted,
		Payload: event.GroupDeletedPayload{
			ConversationID: removed.ConversationID,
			Name:           removed.Name,
		},
	}
	for uid := range removed.Members {
		if uid == p.UserID {
			continue
		}
		sess, ok := s.reg.Resolve(uid)
		if !ok {
			continue
		}
		if err := sess.Conn.Send(notice); err != nil {
			slog.Debug("group deleted notice failed", "conversation", p.ConversationID, "user", uid, "err", err)
		}
	}
	return nil
}

// Disconnect снимает подписки сессии, убирает её из реестра и рассылает
// member_left в затронутые диалоги.
func (s *RelayService) Disconnect(sessionID string) {
	sess, known := s.reg.Get(sessionID)
	affected := s.rooms.DropSession(sessionID)
	s.reg.Unregister(sessionID)

	if !known {
		return
	}
	for _, convID := range affected {
		s.rooms.Broadcast(convID, sessionID, event.Event{
			Type: event.TypeMemberLeft,
			Payload: event.MemberEventPayload{
				ConversationID: convID,
				UserID:         sess.UserID,
				DisplayName:    sess.DisplayName,
			},
		})
	}
}

// Stats — показания для liveness-пробы; состояние не мутирует
func (s *RelayService) Stats() (sessions, conversations, groups int) {
	return s.reg.Len(), s.rooms.Len(), s.dir.Len()
}
