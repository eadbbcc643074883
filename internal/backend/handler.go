// Package backend is a reference implementation of the chat endpoint the
// widget talks to.
package backend

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"chatwidget/chatapi"
	"chatwidget/identity"
)

const maxRequestBytes = 64 << 10

type Handler struct {
	svc        *Service
	scriptBase string
	logger     zerolog.Logger
}

func NewHandler(svc *Service, scriptBase string, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, scriptBase: scriptBase, logger: logger}
}

// HandleChat implements the chat exchange: {"bot_id","message"} in,
// {"response"} out.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With().Str("request_id", r.Header.Get(chatapi.RequestIDHeader)).Logger()

	var req chatapi.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.BotID) == "" || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "missing bot_id or message", http.StatusBadRequest)
		return
	}

	reply, err := h.svc.Chat(r.Context(), req.BotID, req.Message)
	switch {
	case errors.Is(err, ErrUnknownBot):
		log.Info().Str("bot_id", req.BotID).Msg("unknown bot")
		http.Error(w, "unknown bot", http.StatusNotFound)
		return
	case err != nil:
		log.Error().Err(err).Str("bot_id", req.BotID).Msg("chat failed")
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(chatapi.Response{Response: reply}); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

// HandleEmbed returns the snippet a site owner pastes into their page.
func (h *Handler) HandleEmbed(w http.ResponseWriter, r *http.Request) {
	id := identity.BotID(chi.URLParam(r, "botID"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, identity.Declaration(h.scriptBase, id)+"\n")
}

func (h *Handler) HandlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// NewRouter wires the routes behind CORS for origins and the request
// logging middleware.
func NewRouter(h *Handler, origins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", chatapi.RequestIDHeader},
	}))
	r.Use(requestLogger(h.logger))
	RegisterRoutes(r, h)
	return r
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Str("request_id", r.Header.Get(chatapi.RequestIDHeader)).
				Msg("request")
		})
	}
}
