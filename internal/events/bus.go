// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package events

import (
	"fmt"
	"sync"

	"github.com/stellarview/stellarview/internal/logging"
)

// DefaultMaxHandlers is the per-topic handler count above which the bus
// logs a leak warning. Subscriptions are never refused.
const DefaultMaxHandlers = 32

// Handler processes one published event. Handlers run synchronously on the
// publisher's goroutine and must not block for I/O.
type Handler func(Event)

// Subscription identifies one registered handler so it can be removed.
type Subscription struct {
	topic string
	id    uint64
	once  bool
	fn    Handler
}

// Topic returns the topic this subscription is registered on.
func (s *Subscription) Topic() string { return s.topic }

// Bus is a synchronous in-process publish/subscribe primitive.
//
// Delivery guarantees:
//   - Handlers for a topic run in registration order (FIFO).
//   - A panicking handler does not prevent later handlers from running;
//     the panic is recovered and re-published as HandlerError on the
//     reserved "error" topic. Panics while delivering on "error" itself
//     are logged and dropped to avoid infinite recursion.
//
// State lives only for process lifetime; there is no persistence.
type Bus struct {
	mu          sync.Mutex
	handlers    map[string][]*Subscription
	nextID      uint64
	maxHandlers int
}

// NewBus creates a bus with the default max-handlers warning threshold.
func NewBus() *Bus {
	return NewBusWithLimit(DefaultMaxHandlers)
}

// NewBusWithLimit creates a bus that warns when any single topic exceeds
// maxHandlers subscriptions. A limit <= 0 disables the warning.
func NewBusWithLimit(maxHandlers int) *Bus {
	return &Bus{
		handlers:    make(map[string][]*Subscription),
		maxHandlers: maxHandlers,
	}
}

// Subscribe registers a handler for a topic and returns its subscription
// handle. The handler fires for every event published on the topic until
// Unsubscribe is called.
func (b *Bus) Subscribe(topic string, fn Handler) *Subscription {
	return b.subscribe(topic, fn, false)
}

// SubscribeOnce registers a handler that fires for at most one event and
// is then removed automatically.
func (b *Bus) SubscribeOnce(topic string, fn Handler) *Subscription {
	return b.subscribe(topic, fn, true)
}

func (b *Bus) subscribe(topic string, fn Handler, once bool) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{topic: topic, id: b.nextID, once: once, fn: fn}
	b.handlers[topic] = append(b.handlers[topic], sub)

	if b.maxHandlers > 0 && len(b.handlers[topic]) > b.maxHandlers {
		logging.Warn().
			Str("topic", topic).
			Int("handlers", len(b.handlers[topic])).
			Int("limit", b.maxHandlers).
			Msg("event topic exceeds handler limit, possible subscription leak")
	}

	return sub
}

// Unsubscribe removes a subscription. Removing an already-removed
// subscription is a no-op.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.remove(sub)
}

// remove deletes the subscription from its topic list. Caller holds b.mu.
func (b *Bus) remove(sub *Subscription) {
	subs := b.handlers[sub.topic]
	for i, s := range subs {
		if s.id == sub.id {
			b.handlers[sub.topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to all current subscribers of its topic,
// synchronously and in registration order. Fire-once subscriptions are
// retired before their handler runs, so a handler that re-publishes on the
// same topic cannot re-trigger itself.
func (b *Bus) Publish(ev Event) {
	b.publish(ev, false)
}

// SubscriberCount reports how many handlers are registered on a topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[topic])
}

func (b *Bus) publish(ev Event, onErrorTopic bool) {
	topic := ev.Topic()

	b.mu.Lock()
	subs := b.handlers[topic]
	snapshot := make([]*Subscription, len(subs))
	copy(snapshot, subs)
	for _, s := range snapshot {
		if s.once {
			b.remove(s)
		}
	}
	b.mu.Unlock()

	for _, s := range snapshot {
		b.invoke(s, ev, onErrorTopic)
	}
}

// invoke runs one handler with panic isolation. A recovered panic is
// re-published on the "error" topic unless this delivery already is the
// "error" topic, which would recurse forever if that handler also panics.
func (b *Bus) invoke(s *Subscription, ev Event, onErrorTopic bool) {
	defer func() {
		if r := recover(); r != nil {
			if onErrorTopic {
				logging.Error().
					Str("topic", s.topic).
					Interface("panic", r).
					Msg("error-topic handler panicked, dropping to avoid recursion")
				return
			}
			logging.Error().
				Str("topic", s.topic).
				Interface("panic", r).
				Msg("event handler panicked")
			b.publish(HandlerError{
				SourceTopic: s.topic,
				Recovered:   fmt.Sprint(r),
			}, true)
		}
	}()

	s.fn(ev)
}
