// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package events

import (
	"testing"
	"time"

	"github.com/stellarview/stellarview/internal/models"
)

// TestBus_DeliveryOrderIsFIFO verifies handlers for a topic fire in
// registration order.
func TestBus_DeliveryOrderIsFIFO(t *testing.T) {
	bus := NewBus()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		bus.Subscribe(TopicTabSwitched, func(Event) {
			order = append(order, i)
		})
	}

	bus.Publish(TabSwitched{ViewID: "dashboard", Timestamp: time.Now()})

	if len(order) != 5 {
		t.Fatalf("expected 5 deliveries, got %d", len(order))
	}
	for i, got := range order {
		if got != i {
			t.Errorf("delivery %d went to handler %d, want %d", i, got, i)
		}
	}
}

// TestBus_SubscribeOnce verifies a once-handler fires for exactly one event.
func TestBus_SubscribeOnce(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.SubscribeOnce(TopicTabSwitched, func(Event) {
		calls++
	})

	bus.Publish(TabSwitched{ViewID: "a"})
	bus.Publish(TabSwitched{ViewID: "b"})

	if calls != 1 {
		t.Errorf("once-handler fired %d times, want 1", calls)
	}
	if n := bus.SubscriberCount(TopicTabSwitched); n != 0 {
		t.Errorf("expected 0 remaining subscribers, got %d", n)
	}
}

// TestBus_Unsubscribe verifies a removed handler no longer fires and that
// removing twice is a no-op.
func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	sub := bus.Subscribe(TopicAlertCreated, func(Event) {
		calls++
	})

	bus.Publish(AlertCreated{Alert: models.Alert{ID: "a1"}})
	bus.Unsubscribe(sub)
	bus.Unsubscribe(sub)
	bus.Publish(AlertCreated{Alert: models.Alert{ID: "a2"}})

	if calls != 1 {
		t.Errorf("handler fired %d times after unsubscribe, want 1", calls)
	}
}

// TestBus_PanicIsolation verifies a panicking handler neither kills the
// publisher nor suppresses later handlers, and that the panic surfaces as
// a HandlerError on the reserved error topic.
func TestBus_PanicIsolation(t *testing.T) {
	bus := NewBus()

	var handlerErr *HandlerError
	bus.Subscribe(TopicError, func(ev Event) {
		if he, ok := ev.(HandlerError); ok {
			handlerErr = &he
		}
	})

	bus.Subscribe(TopicTabSwitched, func(Event) {
		panic("boom")
	})
	laterFired := false
	bus.Subscribe(TopicTabSwitched, func(Event) {
		laterFired = true
	})

	bus.Publish(TabSwitched{ViewID: "dashboard"})

	if !laterFired {
		t.Error("handler registered after the panicking one did not fire")
	}
	if handlerErr == nil {
		t.Fatal("expected HandlerError on the error topic")
	}
	if handlerErr.SourceTopic != TopicTabSwitched {
		t.Errorf("HandlerError.SourceTopic = %q, want %q", handlerErr.SourceTopic, TopicTabSwitched)
	}
	if handlerErr.Recovered != "boom" {
		t.Errorf("HandlerError.Recovered = %q, want %q", handlerErr.Recovered, "boom")
	}
}

// TestBus_ErrorTopicPanicDoesNotRecurse verifies a panic inside an
// error-topic handler is dropped instead of re-published forever.
func TestBus_ErrorTopicPanicDoesNotRecurse(t *testing.T) {
	bus := NewBus()

	errorDeliveries := 0
	bus.Subscribe(TopicError, func(Event) {
		errorDeliveries++
		panic("error handler is itself broken")
	})
	bus.Subscribe(TopicTabSwitched, func(Event) {
		panic("boom")
	})

	// Must return; a recursion bug would overflow the stack here.
	bus.Publish(TabSwitched{ViewID: "dashboard"})

	if errorDeliveries != 1 {
		t.Errorf("error topic delivered %d times, want 1", errorDeliveries)
	}
}

// TestBus_OnceHandlerCannotRetriggerItself verifies a once-subscription is
// retired before its handler runs, so re-publishing on the same topic from
// inside the handler cannot fire it again.
func TestBus_OnceHandlerCannotRetriggerItself(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.SubscribeOnce(TopicTabSwitched, func(Event) {
		calls++
		bus.Publish(TabSwitched{ViewID: "again"})
	})

	bus.Publish(TabSwitched{ViewID: "first"})

	if calls != 1 {
		t.Errorf("once-handler fired %d times, want 1", calls)
	}
}

// TestBus_PerStreamTopics verifies the derived topic helpers route stream
// events independently.
func TestBus_PerStreamTopics(t *testing.T) {
	bus := NewBus()

	var gotA, gotB []string
	bus.Subscribe(UpdateTopic("iss-position"), func(ev Event) {
		gotA = append(gotA, ev.(StreamUpdate).StreamID)
	})
	bus.Subscribe(UpdateTopic("mars-ephemeris"), func(ev Event) {
		gotB = append(gotB, ev.(StreamUpdate).StreamID)
	})

	bus.Publish(StreamUpdate{StreamID: "iss-position"})
	bus.Publish(StreamUpdate{StreamID: "iss-position"})
	bus.Publish(StreamUpdate{StreamID: "mars-ephemeris"})

	if len(gotA) != 2 || len(gotB) != 1 {
		t.Errorf("deliveries = %d/%d, want 2/1", len(gotA), len(gotB))
	}
}
