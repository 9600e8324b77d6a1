package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"finlit-quiz-service/internal/app"
	"finlit-quiz-service/internal/domain"
	"finlit-quiz-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

// DefaultPollInterval matches the host re-render cadence the engine expects.
const DefaultPollInterval = 120 * time.Millisecond

type WSHandler struct {
	engine   *app.Engine
	registry *memory.SessionRegistry
	upgrader websocket.Upgrader
	poll     time.Duration
}

func NewWSHandler(engine *app.Engine, registry *memory.SessionRegistry) *WSHandler {
	return &WSHandler{
		engine:   engine,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		poll: DefaultPollInterval,
	}
}

// SetPollInterval overrides the tick cadence (tests use a faster clock).
func (h *WSHandler) SetPollInterval(d time.Duration) {
	if d > 0 {
		h.poll = d
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Name       string `json:"name"`
	Country    string `json:"country"`
	Avatar     string `json:"avatar"`
	Difficulty string `json:"difficulty"`
}

type selectPayload struct {
	Option string `json:"option"`
}

type resumePayload struct {
	SessionID string `json:"sessionId"`
}

type startedPayload struct {
	SessionID string             `json:"sessionId"`
	State     domain.SessionView `json:"state"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// connState is the per-connection quiz run, shared between the reader loop
// and the poll ticker.
type connState struct {
	mu          sync.Mutex
	session     *app.Session
	sessionID   string
	resultsSent bool
}

// ServeWS upgrades the connection and drives one quiz session over it: the
// client sends start/resume/select/playAgain, the server pushes state snapshots on a
// fixed poll cadence plus a single completed payload per run.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	state := &connState{}
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	tickerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(h.poll)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				msgs := h.pollOnce(r.Context(), state)
				for _, msg := range msgs {
					select {
					case send <- msg:
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		for _, msg := range h.handleInbound(r.Context(), state, inbound) {
			select {
			case send <- msg:
			case <-writerDone:
			}
		}
	}

	state.mu.Lock()
	if state.sessionID != "" {
		h.registry.Delete(state.sessionID)
	}
	state.mu.Unlock()

	close(closeSignals)
	<-tickerDone
	close(send)
	<-writerDone
}

// pollOnce is one host render cycle: tick the engine, snapshot the session,
// and emit the completion payload exactly once.
func (h *WSHandler) pollOnce(ctx context.Context, state *connState) []outboundMessage[any] {
	state.mu.Lock()
	session := state.session
	alreadySent := state.resultsSent
	state.mu.Unlock()
	if session == nil {
		return nil
	}

	h.engine.Tick(ctx, session)
	view := h.engine.View(session)
	msgs := []outboundMessage[any]{{Type: "state", Payload: view}}

	if view.Phase == domain.PhaseComplete.String() && !alreadySent {
		results, err := h.engine.Results(ctx, session)
		if err == nil {
			state.mu.Lock()
			if !state.resultsSent {
				state.resultsSent = true
				msgs = append(msgs, outboundMessage[any]{Type: "completed", Payload: results})
			}
			state.mu.Unlock()
		}
	}
	return msgs
}

func (h *WSHandler) handleInbound(ctx context.Context, state *connState, inbound inboundMessage) []outboundMessage[any] {
	switch inbound.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid start payload")
		}
		session, err := h.engine.Start(ctx, domain.Setup{
			Name:       payload.Name,
			Country:    payload.Country,
			Avatar:     payload.Avatar,
			Difficulty: payload.Difficulty,
		})
		if err != nil {
			return errorMessage(startErrorText(err))
		}

		state.mu.Lock()
		state.session = session
		state.resultsSent = false
		if state.sessionID == "" {
			state.sessionID = h.registry.Put(session)
		} else {
			h.registry.Replace(state.sessionID, session)
		}
		id := state.sessionID
		state.mu.Unlock()

		return []outboundMessage[any]{{Type: "started", Payload: startedPayload{
			SessionID: id,
			State:     h.engine.View(session),
		}}}

	case "resume":
		var payload resumePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid resume payload")
		}
		session, ok := h.registry.Get(payload.SessionID)
		if !ok {
			return errorMessage(domain.ErrSessionNotFound.Error())
		}
		state.mu.Lock()
		state.session = session
		state.sessionID = payload.SessionID
		state.resultsSent = false
		state.mu.Unlock()
		return []outboundMessage[any]{{Type: "state", Payload: h.engine.View(session)}}

	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid select payload")
		}
		state.mu.Lock()
		session := state.session
		state.mu.Unlock()
		if session == nil {
			return errorMessage(domain.ErrSessionNotFound.Error())
		}
		if err := h.engine.Select(session, payload.Option); err != nil {
			return errorMessage(err.Error())
		}
		return []outboundMessage[any]{{Type: "state", Payload: h.engine.View(session)}}

	case "playAgain":
		state.mu.Lock()
		session := state.session
		state.resultsSent = false
		state.mu.Unlock()
		if session == nil {
			return errorMessage(domain.ErrSessionNotFound.Error())
		}
		h.engine.Restart(session)
		return []outboundMessage[any]{{Type: "state", Payload: h.engine.View(session)}}

	default:
		return errorMessage("unsupported message type")
	}
}

func startErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrSetupIncomplete),
		errors.Is(err, domain.ErrUnknownDifficulty):
		return err.Error()
	case errors.Is(err, domain.ErrNoValidQuestions):
		return "no quiz available: the question bank is empty"
	default:
		return "could not start quiz"
	}
}

func errorMessage(text string) []outboundMessage[any] {
	return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Message: text}}}
}
