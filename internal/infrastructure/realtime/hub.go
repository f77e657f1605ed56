// Package realtime pushes client change notifications to websocket
// subscribers. Each subscriber watches one table, optionally narrowed to a
// single client.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/attractify/onboarding/internal/domain/shared"
)

const (
	defaultHeartbeat = 30 * time.Second
	writeWait        = 10 * time.Second
	maxReadBytes     = 512
	sendBuffer       = 64
)

var (
	// ErrTooManyClients is returned when the hub is at capacity.
	ErrTooManyClients = errors.New("realtime: too many subscribers")
	// ErrHubClosed is returned after Close.
	ErrHubClosed = errors.New("realtime: hub closed")
	// ErrUnknownTable is returned for a table outside the hosted schema.
	ErrUnknownTable = errors.New("realtime: unknown table")
)

// Tables lists the tables a subscriber may watch.
func Tables() []string {
	return []string{
		client.TableClients,
		client.TableOnboardingSteps,
		client.TableTimelineItems,
		client.TableRecordingSessions,
		client.TableAnalyticsSetup,
	}
}

// Filter selects the notifications a subscriber receives. An empty Table
// matches every table; an empty ClientID matches every client.
type Filter struct {
	Table    string
	ClientID string
}

// ParseFilter validates query parameters. clientID accepts the
// PostgREST-style "eq.<id>" form as well as a bare id.
func ParseFilter(table, clientID string) (Filter, error) {
	table = strings.TrimSpace(table)
	if table != "" {
		known := false
		for _, t := range Tables() {
			if t == table {
				known = true
				break
			}
		}
		if !known {
			return Filter{}, fmt.Errorf("%w: %q", ErrUnknownTable, table)
		}
	}
	clientID = strings.TrimPrefix(strings.TrimSpace(clientID), "eq.")
	return Filter{Table: table, ClientID: clientID}, nil
}

func (f Filter) matches(m Message) bool {
	if f.Table != "" && f.Table != m.Table {
		return false
	}
	return f.ClientID == "" || f.ClientID == m.ClientID
}

// Message is the JSON frame pushed to subscribers.
type Message struct {
	Table       string            `json:"table"`
	Event       client.ChangeKind `json:"event"`
	Type        string            `json:"type"`
	ClientID    string            `json:"client_id"`
	CompanyName string            `json:"company_name,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Payload     any               `json:"payload,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

func messageFrom(e *client.ChangeEvent) Message {
	return Message{
		Table:       e.Table,
		Event:       e.Change,
		Type:        e.EventType(),
		ClientID:    e.ClientID,
		CompanyName: e.CompanyName,
		Summary:     e.Summary,
		Payload:     e.Payload,
		OccurredAt:  e.OccurredAt(),
	}
}

type subscriber struct {
	id        string
	filter    Filter
	conn      *websocket.Conn
	send      chan Message
	closeOnce sync.Once
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() { close(s.send) })
}

// Option configures a Hub
type Option func(*Hub)

// WithHeartbeat sets the ping interval
func WithHeartbeat(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// WithMaxClients caps concurrent subscribers. Zero means unlimited.
func WithMaxClients(n int) Option {
	return func(h *Hub) {
		h.maxClients = n
	}
}

// WithAllowedOrigins restricts the Origin header of upgrade requests.
// Empty or "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Hub) {
		h.origins = origins
	}
}

// WithLogger sets the hub logger
func WithLogger(logger *zap.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// Hub fans change events out to websocket subscribers. It is an event bus
// handler for every client event type.
type Hub struct {
	mu         sync.RWMutex
	subs       map[*subscriber]struct{}
	closed     bool
	heartbeat  time.Duration
	maxClients int
	origins    []string
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

// NewHub creates a new Hub
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:      make(map[*subscriber]struct{}),
		heartbeat: defaultHeartbeat,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.origins) == 0 {
		return true
	}
	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// ServeWS upgrades the request and streams matching notifications until
// the peer disconnects. ErrTooManyClients and ErrHubClosed are returned
// before anything is written, so the caller can still answer over HTTP.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, filter Filter) error {
	sub, err := h.reserve(filter)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.remove(sub)
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}
	sub.conn = conn

	h.logger.Debug("realtime subscriber connected",
		zap.String("subscriber_id", sub.id),
		zap.String("table", filter.Table),
		zap.String("client_id", filter.ClientID),
	)

	go h.writePump(sub)
	h.readPump(sub)
	return nil
}

func (h *Hub) reserve(filter Filter) (*subscriber, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.maxClients > 0 && len(h.subs) >= h.maxClients {
		return nil, ErrTooManyClients
	}
	sub := &subscriber{
		id:     uuid.New().String(),
		filter: filter,
		send:   make(chan Message, sendBuffer),
	}
	h.subs[sub] = struct{}{}
	return sub, nil
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	sub.close()
}

// readPump discards inbound frames and keeps the read deadline fresh on
// pong. It returns once the connection fails.
func (h *Hub) readPump(sub *subscriber) {
	defer func() {
		h.remove(sub)
		_ = sub.conn.Close()
		h.logger.Debug("realtime subscriber disconnected", zap.String("subscriber_id", sub.id))
	}()

	wait := 2 * h.heartbeat
	sub.conn.SetReadLimit(maxReadBytes)
	_ = sub.conn.SetReadDeadline(time.Now().Add(wait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("realtime read failed", zap.String("subscriber_id", sub.id), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(h.heartbeat)
	defer func() {
		ticker.Stop()
		_ = sub.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := sub.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast queues msg for every matching subscriber. A subscriber whose
// buffer is full is disconnected.
func (h *Hub) Broadcast(msg Message) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for sub := range h.subs {
		if !sub.filter.matches(msg) {
			continue
		}
		select {
		case sub.send <- msg:
			sent++
		default:
			h.logger.Warn("realtime subscriber too slow, dropping", zap.String("subscriber_id", sub.id))
			delete(h.subs, sub)
			sub.close()
		}
	}
	return sent
}

// Handle implements shared.EventHandler
func (h *Hub) Handle(_ context.Context, event shared.DomainEvent) error {
	change, ok := event.(*client.ChangeEvent)
	if !ok {
		return nil
	}
	h.Broadcast(messageFrom(change))
	return nil
}

// EventTypes implements shared.EventHandler
func (h *Hub) EventTypes() []string {
	return client.AllEventTypes()
}

// Count returns the number of connected subscribers
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		sub.close()
	}
}

var _ shared.EventHandler = (*Hub)(nil)
