package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/domain"
)

type WSHandler struct {
	engine    *app.Engine
	log       *zap.Logger
	upgrader  websocket.Upgrader
	chatRate  rate.Limit
	chatBurst int
}

func NewWSHandler(engine *app.Engine, log *zap.Logger) *WSHandler {
	return &WSHandler{
		engine: engine,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		chatRate:  rate.Limit(2),
		chatBurst: 5,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionPosition int   `json:"questionPosition"`
	AnswerIDs        []int `json:"answerIds"`
}

type questionPayload struct {
	QuestionPosition int `json:"questionPosition"`
}

type chatPayload struct {
	Message string `json:"message"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
	// final closes the connection once written.
	final bool
}

type errorPayload struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

func errorMessage(err error) outboundMessage[any] {
	payload := errorPayload{Message: err.Error()}
	if kind := domain.KindOf(err); kind != domain.KindUnknown {
		payload.Kind = kind.String()
	}
	return outboundMessage[any]{Type: "error", Payload: payload}
}

// ServeWS upgrades a player's connection, pushes a status message on every phase change of
// their session and accepts answers, question fetches and chat. The socket is closed after
// the END status is delivered.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathInt(r, "playerid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	updates, cancel, err := h.engine.Subscribe(r.Context(), playerID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Int("playerId", playerID), zap.Error(err))
		return
	}
	defer conn.Close()
	log := h.log.With(zap.Int("playerId", playerID))

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only this goroutine writes data frames.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				conn.Close()
				return
			}
			if msg.final {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(time.Second))
				conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case status, ok := <-updates:
				if !ok {
					return
				}
				msg := outboundMessage[any]{Type: "status", Payload: status, final: status.State == domain.StateEnd}
				select {
				case send <- msg:
				case <-writerDone:
					return
				case <-closeSignals:
					return
				}
				if msg.final {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	limiter := rate.NewLimiter(h.chatRate, h.chatBurst)
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply := h.handleInbound(r.Context(), playerID, inbound, limiter)
		select {
		case send <- reply:
		case <-writerDone:
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
	log.Debug("ws closed")
}

func (h *WSHandler) handleInbound(ctx context.Context, playerID int, inbound inboundMessage, limiter *rate.Limiter) outboundMessage[any] {
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
		}
		if err := h.engine.SubmitAnswer(ctx, playerID, payload.QuestionPosition, payload.AnswerIDs); err != nil {
			return errorMessage(err)
		}
		return outboundMessage[any]{Type: "answerAccepted", Payload: payload}
	case "question":
		var payload questionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid question payload"}}
		}
		info, err := h.engine.CurrentQuestion(ctx, playerID, payload.QuestionPosition)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage[any]{Type: "question", Payload: info}
	case "chat":
		var payload chatPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid chat payload"}}
		}
		if !limiter.Allow() {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "chat rate limit exceeded"}}
		}
		if err := h.engine.SendChat(ctx, playerID, payload.Message); err != nil {
			return errorMessage(err)
		}
		return outboundMessage[any]{Type: "chatSent", Payload: payload}
	default:
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
	}
}
