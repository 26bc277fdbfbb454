package domain

import (
	"time"

	"github.com/Jayeshkushwaha/SocketChat/internal/event"
)

// Conn — одно живое транспортное подключение. Реализации обязаны быть
// потокобезопасными; Close должен быть идемпотентным.
type Conn interface {
	Send(evt event.Event) error
	Close() error
}

// Session — эфемерная привязка транспортного подключения к логическому
// пользователю. После публикации в реестре структура не мутирует: rename
// заменяет её целиком.
type Session struct {
	ID          string
	UserID      string
	DisplayName string
	JoinedAt    time.Time
	Conn        Conn
}
