package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Jayeshkushwaha/SocketChat/internal/service"
	"github.com/Jayeshkushwaha/SocketChat/internal/storage"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	relay   *service.RelayService
	history *storage.MessageLog
}

func NewHandler(relay *service.RelayService, history *storage.MessageLog) *Handler {
	return &Handler{relay: relay, history: history}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /healthz — liveness-проба: счётчики без мутации состояния
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	sessions, conversations, groups := h.relay.Stats()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Sessions:      sessions,
		Conversations: conversations,
		Groups:        groups,
	})
}

// GET /conversations/{id}/messages — волатильная история диалога
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "message log disabled"})
		return
	}
	conversationID := chi.URLParam(r, "id")

	items, err := h.history.History(conversationID)
	if err != nil {
		slog.Error("handler.GetHistory:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	resp := HistoryResponse{Items: make([]MessageItem, 0, len(items))}
	for _, m := range items {
		resp.Items = append(resp.Items, MessageItem{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			UserID:         m.UserID,
			DisplayName:    m.DisplayName,
			Text:           m.Text,
			Kind:           string(m.Kind),
			CreatedAtUnix:  m.CreatedAt.Unix(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
