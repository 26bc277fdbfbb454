package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Jayeshkushwaha/SocketChat/internal/directory"
	"github.com/Jayeshkushwaha/SocketChat/internal/domain"
	"github.com/Jayeshkushwaha/SocketChat/internal/event"
	"github.com/Jayeshkushwaha/SocketChat/internal/reconcile"
	"github.com/Jayeshkushwaha/SocketChat/internal/registry"
	"github.com/Jayeshkushwaha/SocketChat/internal/rooms"
	"github.com/Jayeshkushwaha/SocketChat/internal/storage"
	"github.com/google/uuid"
)

// Router доставляет сообщения и typing-события нужному множеству живых
// сессий. Маршрутизация stateless; для групп доставка идёт адресным
// unicast'ом каждому участнику вместо room-broadcast — рассинхронизация
// состав/подписка иначе может уронить получателя.
type Router struct {
	reg     *registry.Registry
	rooms   *rooms.Store
	dir     *directory.Directory
	rec     *reconcile.Engine
	history *storage.MessageLog // может быть nil
}

func New(reg *registry.Registry, rms *rooms.Store, dir *directory.Directory, rec *reconcile.Engine, history *storage.MessageLog) *Router {
	return &Router{reg: reg, rooms: rms, dir: dir, rec: rec, history: history}
}

// Route разруливает сообщение по fallback-цепочке: без conversationId —
// всем живым сессиям кроме отправителя; группа — reconcile + поимённый
// unicast; иначе — broadcast по комнате.
func (r *Router) Route(senderSessionID string, in event.MessagePayload) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:             uuid.NewString(),
		ConversationID: in.ConversationID,
		UserID:         in.UserID,
		DisplayName:    r.senderName(senderSessionID, in.DisplayName),
		Text:           in.Text,
		Kind:           domain.NormalizeKind(in.Kind),
		CreatedAt:      time.Now(),
	}
	evt := event.Event{Type: event.TypeMessage, Payload: toWire(msg)}

	switch {
	case in.ConversationID == "":
		// глобальный fallback-канал
		for _, s := range r.reg.All() {
			if s.ID == senderSessionID {
				continue
			}
			if err := s.Conn.Send(evt); err != nil {
				slog.Debug("global send failed", "session", s.ID, "err", err)
			}
		}

	case r.isGroup(in.ConversationID):
		// самовосстановление на отправке
		r.rec.Reconcile(in.ConversationID)
		r.unicastGroup(senderSessionID, in.ConversationID, evt)

	default:
		r.rooms.Broadcast(in.ConversationID, senderSessionID, evt)
	}

	if r.history != nil {
		if err := r.history.Append(msg); err != nil {
			slog.Warn("message log append failed", "conversation", in.ConversationID, "err", err)
		}
	}
	return msg
}

// RouteTyping — всегда broadcast по комнате/участникам, никогда unicast:
// потерянный typing-индикатор не является видимым пользователю сбоем.
func (r *Router) RouteTyping(senderSessionID string, in event.TypingPayload) {
	evt := event.Event{Type: event.TypeTypingState, Payload: event.TypingStatePayload{
		ConversationID: in.ConversationID,
		DisplayName:    r.senderName(senderSessionID, in.DisplayName),
		IsTyping:       in.IsTyping,
	}}

	if in.ConversationID == "" {
		for _, s := range r.reg.All() {
			if s.ID == senderSessionID {
				continue
			}
			_ = s.Conn.Send(evt)
		}
		return
	}
	if r.isGroup(in.ConversationID) {
		r.rec.Reconcile(in.ConversationID)
	}
	r.rooms.Broadcast(in.ConversationID, senderSessionID, evt)
}

// NotifyGroup — fan-out при создании группы: создатель получает
// group_created, остальные участники с живой сессией — group_added_to.
// Обновление состава рассылку не порождает.
func (r *Router) NotifyGroup(rec *domain.GroupRecord, created bool, creatorSessionID string) {
	if !created {
		return
	}
	item := GroupItem(rec)

	if s, ok := r.reg.Get(creatorSessionID); ok {
		_ = s.Conn.Send(event.Event{Type: event.TypeGroupCreated, Payload: item})
	}
	for uid := range rec.Members {
		if uid == rec.CreatorUserID {
			continue
		}
		s, ok := r.reg.Resolve(uid)
		if !ok {
			slog.Debug("group member unreachable, skipping notice",
				"conversation", rec.ConversationID, "user", uid)
			continue
		}
		_ = s.Conn.Send(event.Event{Type: event.TypeGroupAddedTo, Payload: item})
	}
}

// unicastGroup доставляет событие каждому участнику группы, кроме
// отправителя, чья сессия резолвится; недостижимые пропускаются — группа с
// нулём достижимых получателей всё равно считается доставленной.
func (r *Router) unicastGroup(senderSessionID, conversationID string, evt event.Event) {
	rec, ok := r.dir.Get(conversationID)
	if !ok {
		return
	}
	senderUserID := ""
	if s, ok := r.reg.Get(senderSessionID); ok {
		senderUserID = s.UserID
	}
	for uid := range rec.Members {
		if uid == senderUserID {
			continue
		}
		s, ok := r.reg.Resolve(uid)
		if !ok {
			slog.Debug("recipient unreachable, skipped", "conversation", conversationID, "user", uid)
			continue
		}
		if err := s.Conn.Send(evt); err != nil {
			slog.Debug("group unicast failed", "conversation", conversationID, "user", uid, "err", err)
		}
	}
}

// senderName восстанавливает identity отправителя: имя из события, иначе имя
// из реестра, иначе синтетический placeholder — доставка важнее строгой
// корректности identity.
func (r *Router) senderName(sessionID, given string) string {
	if name := strings.TrimSpace(given); name != "" {
		return name
	}
	if s, ok := r.reg.Get(sessionID); ok && strings.TrimSpace(s.DisplayName) != "" {
		return s.DisplayName
	}
	suffix := sessionID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return "user-" + suffix
}

func (r *Router) isGroup(conversationID string) bool {
	_, ok := r.dir.Get(conversationID)
	return ok
}

func toWire(m domain.ChatMessage) event.MessageOut {
	return event.MessageOut{
		ConversationID: m.ConversationID,
		MsgID:          m.ID,
		UserID:         m.UserID,
		DisplayName:    m.DisplayName,
		Text:           m.Text,
		Kind:           string(m.Kind),
		TSUnix:         m.CreatedAt.Unix(),
	}
}

// GroupItem собирает wire-представление группы
func GroupItem(rec *domain.GroupRecord) event.GroupItem {
	members := rec.MemberList()
	items := make([]event.MemberItem, 0, len(members))
	for _, m := range members {
		items = append(items, event.MemberItem{UserID: m.UserID, DisplayName: m.DisplayName})
	}
	return event.GroupItem{
		ConversationID: rec.ConversationID,
		Name:           rec.Name,
		CreatedBy:      rec.CreatorUserID,
		Members:        items,
		CreatedAtUnix:  rec.CreatedAt.Unix(),
	}
}
