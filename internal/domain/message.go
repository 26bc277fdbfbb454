package domain

import "time"

type MessageKind string

const (
	MessageText   MessageKind = "text"
	MessageEmoji  MessageKind = "emoji"
	MessageSystem MessageKind = "system"
)

// NormalizeKind сводит неизвестные виды сообщений к text
func NormalizeKind(s string) MessageKind {
	switch MessageKind(s) {
	case MessageEmoji:
		return MessageEmoji
	case MessageSystem:
		return MessageSystem
	default:
		return MessageText
	}
}

type ChatMessage struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id,omitempty"`
	UserID         string      `json:"user_id"`
	DisplayName    string      `json:"display_name"`
	Text           string      `json:"text"`
	Kind           MessageKind `json:"kind"`
	CreatedAt      time.Time   `json:"created_at"`
}
