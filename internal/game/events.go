package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionEnded is published once per terminated session.
type SessionEnded struct {
	SessionID  int64
	PlayerID   int64
	TotalScore int
}

// SessionEndedBus delivers SessionEnded events synchronously, in
// registration order. A panicking listener is isolated: it is logged
// and the remaining listeners still run.
type SessionEndedBus struct {
	mu   sync.Mutex
	subs []busSubscriber
	log  zerolog.Logger
}

type busSubscriber struct {
	id uuid.UUID
	fn func(SessionEnded)
}

// Subscription is a handle for removing a listener.
type Subscription struct {
	id  uuid.UUID
	bus *SessionEndedBus
}

// NewSessionEndedBus creates an empty bus.
func NewSessionEndedBus(log zerolog.Logger) *SessionEndedBus {
	return &SessionEndedBus{log: log}
}

// Subscribe registers a listener and returns its cancellation handle.
func (b *SessionEndedBus) Subscribe(fn func(SessionEnded)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.New()
	b.subs = append(b.subs, busSubscriber{id: id, fn: fn})
	return Subscription{id: id, bus: b}
}

// Cancel removes the subscription from its bus. Canceling twice is a
// no-op.
func (s Subscription) Cancel() {
	if s.bus == nil {
		return
	}
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	for i, sub := range s.bus.subs {
		if sub.id == s.id {
			s.bus.subs = append(s.bus.subs[:i], s.bus.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to all current listeners.
func (b *SessionEndedBus) Publish(ev SessionEnded) {
	b.mu.Lock()
	subs := make([]busSubscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		b.deliver(sub, ev)
	}
}

func (b *SessionEndedBus) deliver(sub busSubscriber, ev SessionEnded) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Warn().
				Str("subscription", sub.id.String()).
				Interface("panic", r).
				Msg("session-ended listener panicked")
		}
	}()
	sub.fn(ev)
}
