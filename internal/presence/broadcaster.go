package presence

import (
	"log/slog"

	"github.com/Jayeshkushwaha/SocketChat/internal/event"
	"github.com/Jayeshkushwaha/SocketChat/internal/registry"
)

// Broadcaster пересчитывает и рассылает список достижимых пользователей.
// Чистая функция состояния реестра, собственного состояния не имеет.
type Broadcaster struct {
	reg *registry.Registry
}

func New(reg *registry.Registry) *Broadcaster {
	return &Broadcaster{reg: reg}
}

// Attach подписывает рассылку на изменения реестра
func (b *Broadcaster) Attach() {
	b.reg.OnChange(b.Broadcast)
}

func (b *Broadcaster) Broadcast() {
	evt := event.Event{
		Type:    event.TypePresenceSnapshot,
		Payload: event.PresenceSnapshotPayload{Users: b.reg.Snapshot()},
	}
	for _, s := range b.reg.All() {
		if err := s.Conn.Send(evt); err != nil {
			slog.Debug("presence push failed", "session", s.ID, "err", err)
		}
	}
}
