package http

import (
	"net/http"

	"github.com/Jayeshkushwaha/SocketChat/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)

	// WS endpoint — identity self-asserted, токенов нет
	r.Get("/ws", wsServer.HandleWS)

	r.Get("/conversations/{id}/messages", h.GetHistory)

	// health
	r.Get("/healthz", h.Healthz)

	return r
}
