package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

type chatRequest struct {
	CustomerID     string `json:"customerId"`
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) {
	var body chatRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := r.agent.HandleTurn(req.Context(), body.CustomerID, body.Message, body.ConversationID)
	if err != nil {
		r.writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (r *Router) handleGetConversation(w http.ResponseWriter, req *http.Request) {
	conversationID := strings.TrimSpace(req.PathValue("conversationId"))
	if conversationID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "conversation id is required"})
		return
	}

	turns, err := r.turns.Conversation(req.Context(), conversationID)
	if err != nil {
		r.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("conversation lookup failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load conversation"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversationId": conversationID,
		"turns":          turns,
	})
}
