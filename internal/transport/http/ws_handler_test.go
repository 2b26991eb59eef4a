package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-session-engine/internal/domain"
)

type wsMessage struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func readNext(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func expectStatus(t *testing.T, conn *websocket.Conn, state domain.State) {
	t.Helper()
	msg := readNext(t, conn)
	if msg.Type != "status" || msg.Payload["state"] != string(state) {
		t.Fatalf("expected status %s, got %s %v", state, msg.Type, msg.Payload)
	}
}

func TestWebSocketSessionFlow(t *testing.T) {
	server, engine, _ := newTestServer(t)
	ctx := context.Background()
	sessionID, err := engine.StartSession(ctx, "quiz-1", 0)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	playerID, err := engine.Join(ctx, sessionID, "ann")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/player/1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	expectStatus(t, conn, domain.StateLobby)

	if err := conn.WriteJSON(map[string]any{"type": "chat", "payload": map[string]any{"message": "hi"}}); err != nil {
		t.Fatalf("write chat: %v", err)
	}
	if msg := readNext(t, conn); msg.Type != "chatSent" {
		t.Fatalf("expected chatSent, got %s %v", msg.Type, msg.Payload)
	}

	act := func(a domain.Action) {
		t.Helper()
		if err := engine.UpdateSessionState(ctx, "quiz-1", sessionID, a); err != nil {
			t.Fatalf("%s: %v", a, err)
		}
	}
	act(domain.ActionNextQuestion)
	expectStatus(t, conn, domain.StateQuestionCountdown)
	act(domain.ActionSkipCountdown)
	expectStatus(t, conn, domain.StateQuestionOpen)

	if err := conn.WriteJSON(map[string]any{"type": "question", "payload": map[string]any{"questionPosition": 1}}); err != nil {
		t.Fatalf("write question: %v", err)
	}
	if msg := readNext(t, conn); msg.Type != "question" || msg.Payload["questionId"] != float64(101) {
		t.Fatalf("expected question 101, got %s %v", msg.Type, msg.Payload)
	}

	if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{"questionPosition": 1, "answerIds": []int{2}}}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	if msg := readNext(t, conn); msg.Type != "answerAccepted" {
		t.Fatalf("expected answerAccepted, got %s %v", msg.Type, msg.Payload)
	}
	if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{"questionPosition": 1, "answerIds": []int{9}}}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	if msg := readNext(t, conn); msg.Type != "error" || msg.Payload["kind"] != "invalid_input" {
		t.Fatalf("expected invalid_input error, got %s %v", msg.Type, msg.Payload)
	}

	act(domain.ActionEnd)
	expectStatus(t, conn, domain.StateEnd)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg wsMessage
	err = conn.ReadJSON(&msg)
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) || closeErr.Code != websocket.CloseNormalClosure {
		t.Fatalf("expected normal closure after END, got %v", err)
	}

	if _, err := engine.PlayerStatus(ctx, playerID); err != nil {
		t.Fatalf("player should stay resolvable after END: %v", err)
	}
}

func TestWebSocketChatRateLimit(t *testing.T) {
	server, engine, _ := newTestServer(t)
	ctx := context.Background()
	sessionID, err := engine.StartSession(ctx, "quiz-1", 0)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if _, err := engine.Join(ctx, sessionID, "ann"); err != nil {
		t.Fatalf("join: %v", err)
	}

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/player/1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	expectStatus(t, conn, domain.StateLobby)

	limited := 0
	for i := 0; i < 8; i++ {
		if err := conn.WriteJSON(map[string]any{"type": "chat", "payload": map[string]any{"message": "spam"}}); err != nil {
			t.Fatalf("write chat: %v", err)
		}
		if msg := readNext(t, conn); msg.Type == "error" {
			limited++
		}
	}
	if limited == 0 {
		t.Fatalf("expected the chat limiter to reject part of a burst")
	}
}

func TestWebSocketUnknownPlayer(t *testing.T) {
	server, _, _ := newTestServer(t)
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/player/42/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown player, got %v", resp)
	}
}
