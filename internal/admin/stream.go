package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"reliefops-sim/internal/logging"
	"reliefops-sim/internal/telemetry"
)

const subscriberBuffer = 64

// StreamEvent is the envelope pushed to websocket subscribers.
type StreamEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// StreamHub fans simulator rows out to websocket clients. It is itself a writer
// and is added to the simulator's MultiWriter.
type StreamHub struct {
	mu       sync.Mutex
	subs     map[chan []byte]struct{}
	upgrader websocket.Upgrader
}

// NewStreamHub creates an empty hub.
func NewStreamHub() *StreamHub {
	return &StreamHub{
		subs: make(map[chan []byte]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe registers a new listener. The returned cancel func must be called.
func (h *StreamHub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
}

// Subscribers returns the number of connected listeners.
func (h *StreamHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// publish drops the event for subscribers that are not keeping up.
func (h *StreamHub) publish(kind string, v any) error {
	b, err := json.Marshal(StreamEvent{Type: kind, Data: v})
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- b:
		default:
		}
	}
	return nil
}

// Write implements sim.MoveWriter.
func (h *StreamHub) Write(row telemetry.MoveRow) error { return h.publish("move", row) }

// WriteZoneEvent implements sim.ZoneEventWriter.
func (h *StreamHub) WriteZoneEvent(row telemetry.ZoneEventRow) error {
	return h.publish("zone", row)
}

// WriteStats implements sim.StatsWriter.
func (h *StreamHub) WriteStats(row telemetry.StatsRow) error { return h.publish("stats", row) }

// ServeHTTP upgrades the request and streams events until the client goes away.
func (h *StreamHub) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	events, cancelSub := h.Subscribe()
	defer cancelSub()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
			return
		case b, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}
