package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/mergington/internal/domain/model"
)

func evt(id string) model.RegistrationEvent {
	return model.RegistrationEvent{
		EventID:  id,
		Activity: "Chess Club",
		Email:    id + "@mergington.edu",
		Action:   model.ActionSignup,
		TS:       time.Now(),
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, evt("event1")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	event := <-q.Dequeue(ctx)
	if event.EventID != "event1" {
		t.Errorf("expected event1, got %v", event.EventID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if q.Capacity() != 2 {
		t.Fatalf("expected capacity 2, got %d", q.Capacity())
	}
	for i := 0; i < 2; i++ {
		if !q.Enqueue(ctx, evt(fmt.Sprintf("event%d", i))) {
			t.Errorf("expected enqueue %d to succeed", i)
		}
	}
	if q.Enqueue(ctx, evt("overflow")) {
		t.Error("expected enqueue to fail when queue is full")
	}
}

func TestInMemoryQueue_DefaultCapacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(0))
	if q.Capacity() != defaultQueueCapacity {
		t.Errorf("expected default capacity %d, got %d", defaultQueueCapacity, q.Capacity())
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, evt("event1")) {
		t.Error("expected enqueue to fail on cancelled context")
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if !q.Enqueue(ctx, evt("before-close")) {
		t.Fatal("expected enqueue to succeed")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if err := q.Close(); err != ErrClosed {
		t.Errorf("expected ErrClosed on second close, got %v", err)
	}
	if q.Enqueue(ctx, evt("after-close")) {
		t.Error("expected enqueue to fail after close")
	}

	// Events queued before Close are still drained.
	ch := q.Dequeue(ctx)
	if e, ok := <-ch; !ok || e.EventID != "before-close" {
		t.Errorf("expected queued event before channel close, got %v %v", e.EventID, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
}
