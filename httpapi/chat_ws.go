package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	contractx "github.com/nimbushome/support-agent/agent/contract"
	sessionx "github.com/nimbushome/support-agent/agent/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsInbound struct {
	// Type defaults to "message". "rebind" switches the session's customer.
	Type           string `json:"type,omitempty"`
	CustomerID     string `json:"customerId,omitempty"`
	Message        string `json:"message,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
}

type wsError struct {
	Error string `json:"error"`
}

func (r *Router) handleChatWS(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sess := sessionx.New(conn, req.URL.Query().Get("customerId"), r.logger, r.sessCfg)
	r.sessions.Register(sess)
	defer func() {
		r.sessions.Unregister(sess.ID)
		_ = sess.Close()
	}()

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("websocket read failed")
			}
			return
		}

		if strings.EqualFold(in.Type, "rebind") {
			if err := sess.Rebind(in.CustomerID); err != nil {
				if werr := conn.WriteJSON(wsError{Error: "customer id is required to rebind"}); werr != nil {
					return
				}
			}
			continue
		}

		customerID := sess.CustomerID()
		if strings.TrimSpace(in.CustomerID) != "" {
			customerID = in.CustomerID
		}

		result, err := r.agent.HandleTurn(req.Context(), customerID, in.Message, in.ConversationID)
		if err != nil {
			if werr := conn.WriteJSON(wsError{Error: wsErrorMessage(err)}); werr != nil {
				return
			}
			continue
		}

		if err := sess.Deliver(result); err != nil {
			if errors.Is(err, sessionx.ErrClosed) {
				return
			}
			r.logger.Error().Err(err).Str("session_id", sess.ID).Msg("delivery exhausted retries")
		}
	}
}

func wsErrorMessage(err error) string {
	switch {
	case errors.Is(err, contractx.ErrValidation):
		return err.Error()
	case errors.Is(err, contractx.ErrNotFound), errors.Is(err, contractx.ErrTierNotFound):
		return err.Error()
	default:
		return "something went wrong on our side, please try again"
	}
}
