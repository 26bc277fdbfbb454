package event

// Типы событий, которыми обмениваются клиент и сервер поверх одной WS-сессии
const (
	// входящие
	TypeJoin             = "join"              // регистрация логического пользователя
	TypeJoinConversation = "join_conversation" // вход в диалог/группу
	TypeMessage          = "message"           // чат-сообщение
	TypeTyping           = "typing"            // индикатор набора текста
	TypeRenameIdentity   = "rename_identity"   // смена отображаемого имени
	TypeGetGroupInfo     = "get_group_info"    // снапшот группы
	TypeDeleteGroup      = "delete_group"      // удаление группы создателем

	// исходящие
	TypePresenceSnapshot = "presence_snapshot" // список достижимых пользователей
	TypeAvailableGroups  = "available_groups"  // группы пользователя
	TypeMemberJoined     = "member_joined"
	TypeMemberLeft       = "member_left"
	TypeTypingState      = "typing_state"
	TypeGroupCreated     = "group_created"
	TypeGroupAddedTo     = "group_added_to"
	TypeGroupInfo        = "group_info"
	TypeGroupDeleted     = "group_deleted"
	TypeGroupDeleteAck   = "group_delete_ack"
	TypeValidationError  = "validation_error"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// --- входящие payload'ы ---

type JoinPayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type MemberItem struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type JoinConversationPayload struct {
	ConversationID string       `json:"conversation_id"`
	UserID         string       `json:"user_id"`
	DisplayName    string       `json:"display_name"`
	IsGroup        bool         `json:"is_group"`
	GroupName      string       `json:"group_name,omitempty"`
	Members        []MemberItem `json:"members,omitempty"`
}

type MessagePayload struct {
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id"`
	DisplayName    string `json:"display_name"`
	Text           string `json:"text"`
	Kind           string `json:"kind,omitempty"` // text|emoji|system
}

type TypingPayload struct {
	ConversationID string `json:"conversation_id,omitempty"`
	DisplayName    string `json:"display_name"`
	IsTyping       bool   `json:"is_typing"`
}

type RenamePayload struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

type GroupInfoRequest struct {
	ConversationID string `json:"conversation_id"`
}

type DeleteGroupPayload struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

// --- исходящие payload'ы ---

type PresenceEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Reachable   bool   `json:"reachable"`
}

type PresenceSnapshotPayload struct {
	Users []PresenceEntry `json:"users"`
}

type GroupItem struct {
	ConversationID string       `json:"conversation_id"`
	Name           string       `json:"name"`
	CreatedBy      string       `json:"created_by"`
	Members        []MemberItem `json:"members"`
	CreatedAtUnix  int64        `json:"created_at_unix"`
}

type AvailableGroupsPayload struct {
	Groups []GroupItem `json:"groups"`
}

type MemberEventPayload struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	DisplayName    string `json:"display_name"`
}

type MessageOut struct {
	ConversationID string `json:"conversation_id,omitempty"`
	MsgID          string `json:"msg_id"`
	UserID         string `json:"user_id"`
	DisplayName    string `json:"display_name"`
	Text           string `json:"text"`
	Kind           string `json:"kind"`
	TSUnix         int64  `json:"ts_unix"`
}

type TypingStatePayload struct {
	ConversationID string `json:"conversation_id,omitempty"`
	DisplayName    string `json:"display_name"`
	IsTyping       bool   `json:"is_typing"`
}

type GroupDeletedPayload struct {
	ConversationID string `json:"conversation_id"`
	Name           string `json:"name"`
}

type GroupDeleteAckPayload struct {
	ConversationID string `json:"conversation_id"`
	OK             bool   `json:"ok"`
	Error          string `json:"error,omitempty"`
}

type ValidationErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
