package domain

import "time"

type ConversationKind string

const (
	KindDirect ConversationKind = "direct"
	KindGroup  ConversationKind = "group"
)

type Conversation struct {
	ID        string
	Kind      ConversationKind
	Name      string
	CreatedAt time.Time
}

// DirectConversationID — детерминированный id диалога двух пользователей:
// отсортированные userId, соединённые двоеточием. DirectConversationID(a,b)
// == DirectConversationID(b,a).
func DirectConversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}
