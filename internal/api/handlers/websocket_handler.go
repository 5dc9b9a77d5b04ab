package handlers

import (
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/aura-dashboard/backend/internal/comparison"
	"github.com/aura-dashboard/backend/internal/report"
	"github.com/aura-dashboard/backend/pkg/logger"
)

const eventBuffer = 16

type WebSocketHandler struct {
	orchestrator *comparison.Orchestrator
}

func NewWebSocketHandler(orchestrator *comparison.Orchestrator) *WebSocketHandler {
	return &WebSocketHandler{
		orchestrator: orchestrator,
	}
}

type stateMessage struct {
	Type   string        `json:"type"`
	From   string        `json:"from,omitempty"`
	State  string        `json:"state"`
	Report *report.Draft `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// HandleConnection sends the current state, then one message per transition until the
// client disconnects.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	events := make(chan comparison.Event, eventBuffer)
	unsubscribe := h.orchestrator.Subscribe(func(ev comparison.Event) {
		select {
		case events <- ev:
		default:
			logger.Warn("Dropping comparison event for slow WebSocket client",
				zap.String("state", ev.To.String()),
			)
		}
	})

	defer func() {
		unsubscribe()
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := c.WriteJSON(h.snapshot()); err != nil {
		logger.Error("Failed to write WebSocket message", zap.Error(err))
		return
	}

	for {
		select {
		case ev := <-events:
			if err := c.WriteJSON(transitionMessage(ev)); err != nil {
				logger.Error("Failed to write WebSocket message", zap.Error(err))
				return
			}
		case <-closed:
			return
		}
	}
}

func (h *WebSocketHandler) snapshot() stateMessage {
	msg := stateMessage{Type: "snapshot", State: h.orchestrator.State().String()}
	if d, err := h.orchestrator.Current(); err == nil {
		msg.State = comparison.StateReady.String()
		msg.Report = &d
	}
	return msg
}

func transitionMessage(ev comparison.Event) stateMessage {
	msg := stateMessage{
		Type:   "transition",
		From:   ev.From.String(),
		State:  ev.To.String(),
		Report: ev.Draft,
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	return msg
}
