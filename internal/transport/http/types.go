package http

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	Sessions      int    `json:"sessions"`
	Conversations int    `json:"conversations"`
	Groups        int    `json:"groups"`
}

type MessageItem struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	DisplayName    string `json:"display_name"`
	Text           string `json:"text"`
	Kind           string `json:"kind"`
	CreatedAtUnix  int64  `json:"created_at_unix"`
}

type HistoryResponse struct {
	Items []MessageItem `json:"items"`
}
