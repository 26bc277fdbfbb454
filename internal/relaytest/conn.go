package relaytest

import (
	"sync"

	"github.com/Jayeshkushwaha/SocketChat/internal/event"
)

// Conn — потокобезопасный фейк транспортного подключения для тестов ядра
type Conn struct {
	mu     sync.Mutex
	events []event.Event
	closed bool
}

func NewConn() *Conn { return &Conn{} }

func (c *Conn) Send(evt event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) Events() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]event.Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *Conn) OfType(eventType string) []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []event.Event
	for _, e := range c.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (c *Conn) CountOf(eventType string) int {
	return len(c.OfType(eventType))
}
