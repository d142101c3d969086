// Package httpapi exposes the support agent over HTTP and websocket.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	contractx "github.com/nimbushome/support-agent/agent/contract"
	sessionx "github.com/nimbushome/support-agent/agent/session"
)

type Config struct {
	Addr string `split_words:"true" default:":8080"`
}

// TurnHandler is what the router needs from the orchestrator.
type TurnHandler interface {
	HandleTurn(ctx context.Context, customerID, text, conversationID string) (contractx.TurnResult, error)
}

// ConversationReader loads a conversation's persisted turns.
type ConversationReader interface {
	Conversation(ctx context.Context, conversationID string) ([]contractx.ConversationTurn, error)
}

type Router struct {
	agent    TurnHandler
	turns    ConversationReader
	sessions *sessionx.Manager
	sessCfg  sessionx.Config
	logger   zerolog.Logger
	mux      *http.ServeMux
}

func NewRouter(agent TurnHandler, turns ConversationReader, sessions *sessionx.Manager, sessCfg sessionx.Config, logger zerolog.Logger) http.Handler {
	r := &Router{
		agent:    agent,
		turns:    turns,
		sessions: sessions,
		sessCfg:  sessCfg,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	r.routes()
	return r.mux
}

func (r *Router) routes() {
	r.mux.HandleFunc("GET /healthz", r.handleHealthz)
	r.mux.HandleFunc("POST /api/chat", r.handleChat)
	r.mux.HandleFunc("GET /api/conversations/{conversationId}", r.handleGetConversation)
	r.mux.HandleFunc("GET /ws/chat", r.handleChatWS)
}

func (r *Router) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeTurnError maps the contract sentinels onto HTTP statuses. Anything
// unexpected becomes a 500 carrying a customer-safe message.
func (r *Router) writeTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contractx.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, contractx.ErrNotFound), errors.Is(err, contractx.ErrTierNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		r.logger.Error().Err(err).Msg("turn handling failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "something went wrong on our side, please try again",
		})
	}
}
