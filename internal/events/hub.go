// Package events fans out expense changes to live subscribers.
package events

import (
	"log/slog"
	"sync"

	"github.com/mmynk/splitpartner/internal/models"
)

// EventType names the kind of change an ExpenseEvent reports.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 16

// ExpenseEvent describes one committed change to an owner's expenses.
// Expense is nil for deletions.
type ExpenseEvent struct {
	Type        EventType
	OwnerUserID string
	ExpenseID   string
	Expense     *models.Expense
}

type subscriber struct {
	ownerUserID string
	ch          chan ExpenseEvent
}

// Hub delivers events to the subscribers of the event's owner.
// Publish never blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	buffer int
	logger *slog.Logger
}

// NewHub creates a hub whose subscribers buffer up to buffer events.
// A non-positive buffer uses DefaultBuffer.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[int]*subscriber),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a listener for ownerUserID's expense changes.
// The returned cancel func unregisters it and closes the channel; it is safe
// to call more than once.
func (h *Hub) Subscribe(ownerUserID string) (<-chan ExpenseEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	sub := &subscriber{ownerUserID: ownerUserID, ch: make(chan ExpenseEvent, h.buffer)}
	h.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish sends event to every subscriber of its owner.
// It returns the number of subscribers that received it.
func (h *Hub) Publish(event ExpenseEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.subs {
		if sub.ownerUserID != event.OwnerUserID {
			continue
		}
		select {
		case sub.ch <- event:
			delivered++
		default:
			h.logger.Warn("Dropping expense event for slow subscriber",
				"owner_user_id", event.OwnerUserID,
				"expense_id", event.ExpenseID,
				"type", event.Type,
			)
		}
	}
	return delivered
}

// Subscribers returns the number of registered subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
