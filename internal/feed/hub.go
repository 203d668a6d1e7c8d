// Package feed pushes newly created forecasts to connected TCP and
// WebSocket subscribers as newline-delimited JSON. A new subscriber first
// receives a hello line and then the most recent forecasts, oldest first.
package feed

import (
	"net"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"boxoffice/pkg/models"
)

// DefaultBacklog is how many recent forecasts a new subscriber is sent.
const DefaultBacklog = 10

const (
	transportTCP = "tcp"
	transportWS  = "websocket"

	writeTimeout = 2 * time.Second
)

type subscriber interface {
	send(line []byte) error
	close()
	transport() string
}

type tcpSubscriber struct{ conn net.Conn }

func (s tcpSubscriber) send(line []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := s.conn.Write(line)
	return err
}

func (s tcpSubscriber) close()            { _ = s.conn.Close() }
func (s tcpSubscriber) transport() string { return transportTCP }

type wsSubscriber struct{ conn *websocket.Conn }

func (s wsSubscriber) send(line []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, line)
}

func (s wsSubscriber) close()            { _ = s.conn.Close() }
func (s wsSubscriber) transport() string { return transportWS }

// hello is the first line every subscriber receives.
type hello struct {
	Type      string `json:"type"`
	Transport string `json:"transport"`
	Backlog   int    `json:"backlog"`
	Published int    `json:"published"`
}

const helloEvent = "feed.hello"

// Hub tracks subscribers and the recent forecast backlog. Writes happen
// under mu, so each subscriber sees events in publish order.
type Hub struct {
	mu        sync.Mutex
	subs      map[subscriber]struct{}
	recent    [][]byte
	backlog   int
	published int
	closed    bool
	logger    *zap.Logger
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
	Backlog    int `json:"backlog"`
	Published  int `json:"published"`
}

// NewHub keeps up to backlog recent forecasts for replay; a negative value
// means DefaultBacklog.
func NewHub(backlog int, logger *zap.Logger) *Hub {
	if backlog < 0 {
		backlog = DefaultBacklog
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:    make(map[subscriber]struct{}),
		backlog: backlog,
		logger:  logger,
	}
}

// Publish records ev in the backlog and sends it to every subscriber.
// Subscribers that fail a write are dropped.
func (h *Hub) Publish(ev models.ForecastEvent) {
	if ev.Type == "" {
		ev.Type = models.ForecastCreatedEvent
	}
	line, err := encodeLine(ev)
	if err != nil {
		h.logger.Warn("feed encode failed", zap.String("id", ev.ID), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.published++
	if h.backlog > 0 {
		if len(h.recent) == h.backlog {
			h.recent = append(h.recent[:0], h.recent[1:]...)
		}
		h.recent = append(h.recent, line)
	}

	for s := range h.subs {
		if err := s.send(line); err != nil {
			h.dropLocked(s, err)
		}
	}
}

// subscribe sends the hello line and the backlog to s, then registers it
// for live events. Nothing is published to s in between.
func (h *Hub) subscribe(s subscriber) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		s.close()
		return net.ErrClosed
	}

	greeting, err := encodeLine(hello{
		Type:      helloEvent,
		Transport: s.transport(),
		Backlog:   len(h.recent),
		Published: h.published,
	})
	if err != nil {
		s.close()
		return err
	}
	if err := s.send(greeting); err != nil {
		s.close()
		return err
	}
	for _, line := range h.recent {
		if err := s.send(line); err != nil {
			s.close()
			return err
		}
	}

	h.subs[s] = struct{}{}
	return nil
}

func (h *Hub) unsubscribe(s subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.close()
}

// dropLocked must be called with h.mu held.
func (h *Hub) dropLocked(s subscriber, err error) {
	h.logger.Debug("dropping feed subscriber", zap.String("transport", s.transport()), zap.Error(err))
	s.close()
	delete(h.subs, s)
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := Stats{Backlog: len(h.recent), Published: h.published}
	for s := range h.subs {
		switch s.transport() {
		case transportTCP:
			st.TCPClients++
		case transportWS:
			st.WSClients++
		}
	}
	return st
}

// CloseAll disconnects every subscriber and refuses new ones.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.subs {
		s.close()
		delete(h.subs, s)
	}
}

func encodeLine(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
