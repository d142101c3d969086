package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	contractx "github.com/nimbushome/support-agent/agent/contract"
	sessionx "github.com/nimbushome/support-agent/agent/session"
)

type fakeAgent struct {
	result contractx.TurnResult
	err    error
	calls  int
}

func (f *fakeAgent) HandleTurn(ctx context.Context, customerID, text, conversationID string) (contractx.TurnResult, error) {
	f.calls++
	if f.err != nil {
		return contractx.TurnResult{}, f.err
	}
	return f.result, nil
}

type fakeHistory struct {
	turns []contractx.ConversationTurn
	err   error
}

func (f *fakeHistory) Conversation(ctx context.Context, conversationID string) ([]contractx.ConversationTurn, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.turns, nil
}

func newTestRouter(agent *fakeAgent, history *fakeHistory) http.Handler {
	return NewRouter(agent, history, sessionx.NewManager(), sessionx.Config{}, zerolog.Nop())
}

func TestHandleChatOK(t *testing.T) {
	t.Parallel()

	allowed := true
	agent := &fakeAgent{result: contractx.TurnResult{
		Message:        "Volume is now 50.",
		ConversationID: "conv-1",
		MessageID:      "msg-1",
		CustomerID:     "cust-1",
		Timestamp:      time.Now().UTC(),
		RequestType:    "volume_control",
		ActionsAllowed: &allowed,
	}}
	router := newTestRouter(agent, &fakeHistory{})

	body := `{"customerId":"cust-1","message":"Set the volume to 50 percent"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var result contractx.TurnResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Message != "Volume is now 50." || result.ConversationID != "conv-1" {
		t.Errorf("result = %+v", result)
	}
}

func TestHandleChatErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", fmt.Errorf("%w: message is empty", contractx.ErrValidation), http.StatusBadRequest},
		{"customer not found", fmt.Errorf("%w: customer x", contractx.ErrNotFound), http.StatusNotFound},
		{"tier not found", fmt.Errorf("%w: tier x", contractx.ErrTierNotFound), http.StatusNotFound},
		{"internal", fmt.Errorf("graph exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeAgent{err: tt.err}, &fakeHistory{})
			req := httptest.NewRequest(http.MethodPost, "/api/chat",
				strings.NewReader(`{"customerId":"x","message":"y"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var payload map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if payload["error"] == "" {
				t.Error("error body is empty")
			}
			if tt.status == http.StatusInternalServerError && strings.Contains(payload["error"], "exploded") {
				t.Errorf("internal detail leaked to the customer: %q", payload["error"])
			}
		})
	}
}

func TestHandleChatMalformedBody(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{}
	router := newTestRouter(agent, &fakeHistory{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"customerId":`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if agent.calls != 0 {
		t.Errorf("agent called %d times for malformed body, want 0", agent.calls)
	}
}

func TestHandleGetConversation(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{turns: []contractx.ConversationTurn{
		{ID: "t1", ConversationID: "conv-1", Sender: contractx.SenderUser, Text: "hi"},
		{ID: "t2", ConversationID: "conv-1", Sender: contractx.SenderBot, Text: "hello"},
	}}
	router := newTestRouter(&fakeAgent{}, history)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/conv-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload struct {
		ConversationID string                      `json:"conversationId"`
		Turns          []contractx.ConversationTurn `json:"turns"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ConversationID != "conv-1" || len(payload.Turns) != 2 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestHandleHealthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeAgent{}, &fakeHistory{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
