package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"quizzy/internal/app"
	"quizzy/internal/domain"
)

type WSHandler struct {
	service      *app.QuizService
	upgrader     websocket.Upgrader
	log          zerolog.Logger
	tickInterval time.Duration
}

func NewWSHandler(service *app.QuizService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log:          log.With().Str("component", "ws").Logger(),
		tickInterval: time.Second,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Category   string            `json:"category"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

type selectPayload struct {
	QuestionID string `json:"questionId"`
	Option     *int   `json:"option"`
}

type gotoPayload struct {
	Index int `json:"index"`
}

type tickPayload struct {
	Elapsed int `json:"elapsed"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one profile's quiz
// attempt over the connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	profile := r.URL.Query().Get("profile")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	tickerDone := make(chan struct{})

	// Single writer; after a write error it keeps draining so senders never block.
	go func() {
		defer close(writerDone)
		failed := false
		for msg := range send {
			if failed {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Str("profile", profile).Msg("ws write error")
				failed = true
			}
		}
	}()

	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(h.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				state, err := h.service.Attempt(profile)
				if err != nil || state.Status() != app.StatusActive {
					continue
				}
				select {
				case send <- outboundMessage[any]{Type: "tick", Payload: tickPayload{Elapsed: state.Tick()}}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	sendError := func(err error) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
	}
	sendState := func() {
		view, err := h.service.View(ctx, profile)
		if errors.Is(err, domain.ErrSessionNotFound) {
			view = app.View{Status: app.StatusUninitialized.String(), Selected: map[string]int{}}
		} else if err != nil {
			sendError(err)
			return
		}
		send <- outboundMessage[any]{Type: "state", Payload: view}
	}

	sendState()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendError(errors.New("invalid start payload"))
				continue
			}
			if payload.Category == domain.ComprehensiveCategory || payload.Difficulty != "" {
				_, err = h.service.StartComprehensive(ctx, profile, payload.Difficulty)
			} else {
				_, err = h.service.StartQuiz(ctx, profile, payload.Category)
			}
			if err != nil {
				sendError(err)
				continue
			}
			sendState()
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
				sendError(errors.New("invalid select payload"))
				continue
			}
			feedback, err := h.service.SelectAnswer(ctx, profile, payload.QuestionID, *payload.Option)
			if err != nil {
				sendError(err)
				continue
			}
			send <- outboundMessage[any]{Type: "feedback", Payload: feedback}
			sendState()
		case "next", "previous", "goto":
			state, err := h.service.Attempt(profile)
			if err != nil {
				sendError(err)
				continue
			}
			switch inbound.Type {
			case "next":
				state.NextQuestion()
			case "previous":
				state.PreviousQuestion()
			default:
				var payload gotoPayload
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil || !state.GoToQuestion(payload.Index) {
					sendError(errors.New("invalid question index"))
					continue
				}
			}
			sendState()
		case "finish":
			result, err := h.service.Finish(ctx, profile)
			if err != nil {
				sendError(err)
				continue
			}
			send <- outboundMessage[any]{Type: "result", Payload: result}
		default:
			sendError(errors.New("unsupported message type"))
		}
	}

	close(closeSignals)
	<-tickerDone
	close(send)
	<-writerDone
}
