package ws

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Jayeshkushwaha/SocketChat/internal/domain"
	"github.com/Jayeshkushwaha/SocketChat/internal/event"
	"github.com/Jayeshkushwaha/SocketChat/internal/router"
	"github.com/Jayeshkushwaha/SocketChat/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Server struct {
	upgrader websocket.Upgrader
	relay    *service.RelayService

	pingEvery time.Duration
}

func NewServer(relay *service.RelayService) *Server {
	return &Server{
		relay: relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws — одна транспортная сессия на подключение.
// Идентификация (join) приходит уже внутри сессии; порядок setup-событий
// клиентом не гарантируется.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту при ошибке
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	sessionID := uuid.NewString()
	c := newWsConn(conn, sessionID)

	go s.writeLoop(c)
	s.readLoop(c)

	// disconnect: снять подписки, убрать из реестра, разослать member_left
	s.relay.Disconnect(sessionID)
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "session", sessionID, "err", err)
	}
}

func (s *Server) readLoop(c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg inboundEvent
		if err := decode(data, &msg); err != nil {
			continue
		}
		s.dispatch(c, msg)
	}
}

// dispatch разбирает граничное событие и передаёт его ядру. Ошибки
// валидации уходят только сессии-инициатору и не трогают остальных.
func (s *Server) dispatch(c *wsConn, msg inboundEvent) {
	switch msg.Type {
	case event.TypeJoin:
		var p event.JoinPayload
		if decode(msg.Payload, &p) != nil {
			return
		}
		if err := s.relay.Join(c.sessionID, c, p); err != nil {
			s.sendValidation(c, err)
		}

	case event.TypeJoinConversation:
		var p event.JoinConversationPayload
		if decode(msg.Payload, &p) != nil {
			return
		}
		if err := s.relay.JoinConversation(c.sessionID, p); err != nil {
			s.sendValidation(c, err)
		}

	case event.TypeMessage:
		var p event.MessagePayload
		if decode(msg.Payload, &p) != nil {
			return
		}
		s.relay.Message(c.sessionID, p)

	case event.TypeTyping:
		var p event.TypingPayload
		if decode(msg.Payload, &p) != nil {
			return
		}
		s.relay.Typing(c.sessionID, p)

	case event.TypeRenameIdentity:
		var p event.RenamePayload
		if decode(msg.Payload, &p) != nil {
			return
		}
		if err := s.relay.Rename(c.sessionID, p); err != nil {
			s.sendValidation(c, err)
		}

	case event.TypeGetGroupInfo:
		var p event.GroupInfoRequest
		if decode(msg.Payload, &p) != nil {
			return
		}
		rec, err := s.relay.GroupInfo(c.sessionID, p.ConversationID)
		if err != nil {
			s.sendValidation(c, err)
			return
		}
		_ = c.Send(event.Event{Type: event.TypeGroupInfo, Payload: router.GroupItem(rec)})

	case event.TypeDeleteGroup:
		var p event.DeleteGroupPayload
		if decode(msg.Payload, &p) != nil {
			return
		}
		err := s.relay.DeleteGroup(c.sessionID, p)
		ack := event.GroupDeleteAckPayload{ConversationID: p.ConversationID, OK: err == nil}
		if err != nil {
			ack.Error = err.Error()
			s.sendValidation(c, err)
		}
		_ = c.Send(event.Event{Type: event.TypeGroupDeleteAck, Payload: ack})

	default:
		slog.Debug("unknown ws event", "type", msg.Type, "session", c.sessionID)
	}
}

func (s *Server) sendValidation(c *wsConn, err error) {
	evt := event.Event{Type: event.TypeValidationError, Payload: event.ValidationErrorPayload{
		Kind:    domain.ErrorKind(err),
		Message: err.Error(),
	}}
	if sendErr := c.Send(evt); sendErr != nil && !errors.Is(sendErr, websocket.ErrCloseSent) {
		slog.Debug("validation error push failed", "session", c.sessionID, "err", sendErr)
	}
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-c.closed:
			return
		}
	}
}

// --- соединение ---

type wsConn struct {
	conn      *websocket.Conn
	sessionID string
	sendMu    chan struct{}
	closeOnce sync.Once
	closed    chan struct{}
}

var _ domain.Conn = (*wsConn)(nil)

func newWsConn(c *websocket.Conn, sessionID string) *wsConn {
	return &wsConn{
		conn:      c,
		sessionID: sessionID,
		sendMu:    make(chan struct{}, 1),
		closed:    make(chan struct{}),
	}
}

func (c *wsConn) Send(evt event.Event) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(evt)
}

// Close идемпотентен: takeover может закрыть соединение, которое уже
// закрылось само — в том числе из чужой горутины
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })

	return c.conn.Close()
}
