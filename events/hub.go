// client/events/hub.go
package events

import (
	"sync"

	"github.com/rs/zerolog"
)

const (
	NotesRefreshed = "notes_refreshed"
	TagsRefreshed  = "tags_refreshed"
	StoreReset     = "store_reset"
	SessionStarted = "session_started"
	SessionEnded   = "session_ended"
)

const subscriberBuffer = 64

type Message struct {
	Type  string
	Count int
}

// Hub fans state changes out to views. Delivery happens inside Broadcast, so
// once a mutating call returns its messages are already queued. A subscriber
// whose buffer is full misses the message rather than blocking the sender.
type Hub struct {
	mu      sync.RWMutex
	clients map[chan Message]bool
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[chan Message]bool),
		log:     log.With().Str("component", "hub").Logger(),
	}
}

// Subscribe registers a new buffered channel.
func (h *Hub) Subscribe() chan Message {
	ch := make(chan Message, subscriberBuffer)
	h.Register(ch)
	return ch
}

func (h *Hub) Register(ch chan Message) {
	h.mu.Lock()
	h.clients[ch] = true
	h.mu.Unlock()
}

func (h *Hub) Unregister(ch chan Message) {
	h.mu.Lock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *Hub) Broadcast(msgType string, count int) {
	if h == nil {
		return
	}
	msg := Message{Type: msgType, Count: count}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			h.log.Warn().Str("type", msgType).Msg("subscriber buffer full, dropping message")
		}
	}
}

// Drain returns whatever is queued on ch without waiting.
func Drain(ch <-chan Message) []Message {
	var out []Message
	for {
		select {
		case m, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, m)
		default:
			return out
		}
	}
}
