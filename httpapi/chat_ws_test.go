package httpapi

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	contractx "github.com/nimbushome/support-agent/agent/contract"
	sessionx "github.com/nimbushome/support-agent/agent/session"
)

func dialTestWS(t *testing.T, agent *fakeAgent) (*websocket.Conn, func()) {
	t.Helper()

	server := httptest.NewServer(NewRouter(agent, &fakeHistory{}, sessionx.NewManager(), sessionx.Config{}, zerolog.Nop()))
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat?customerId=cust-1"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
		server.Close()
	}
}

func TestChatWSRoundTrip(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{result: contractx.TurnResult{
		Message:        "Done!",
		ConversationID: "conv-1",
	}}
	conn, cleanup := dialTestWS(t, agent)
	defer cleanup()

	if err := conn.WriteJSON(wsInbound{Message: "turn up the volume"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var result contractx.TurnResult
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatalf("read: %v", err)
	}
	if result.Message != "Done!" || result.ConversationID != "conv-1" {
		t.Errorf("result = %+v", result)
	}
}

func TestChatWSReportsTurnErrors(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{err: contractx.ErrNotFound}
	conn, cleanup := dialTestWS(t, agent)
	defer cleanup()

	if err := conn.WriteJSON(wsInbound{Message: "hello"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var errMsg wsError
	if err := conn.ReadJSON(&errMsg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if errMsg.Error == "" {
		t.Error("expected an error frame")
	}

	// The connection survives a turn error.
	agent.err = nil
	agent.result = contractx.TurnResult{Message: "recovered"}
	if err := conn.WriteJSON(wsInbound{Message: "try again"}); err != nil {
		t.Fatalf("write after error: %v", err)
	}
	var result contractx.TurnResult
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatalf("read after error: %v", err)
	}
	if result.Message != "recovered" {
		t.Errorf("result = %+v", result)
	}
}
