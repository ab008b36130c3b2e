package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cardparty/internal/app/game"
	"cardparty/internal/configs"
)

func TestLongPollSender_FlushesBatchInOrder(t *testing.T) {
	s := NewLongPollSender()

	s.Enqueue(game.NewQueuedMessage(game.TypeChat, "first"))
	s.Enqueue(game.NewQueuedMessage(game.TypePlayerEvent, "second"))
	s.Enqueue(game.NewQueuedMessage(game.TypeGameEvent, "third"))

	msgs := s.Collect(context.Background(), time.Second)
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(msgs))
	}

	wantPayloads := []string{"first", "second", "third"}
	for i, want := range wantPayloads {
		if msgs[i].Payload != want {
			t.Errorf("Message %d: expected payload %q, got %v", i, want, msgs[i].Payload)
		}
	}
}

func TestLongPollSender_WakesOnEnqueue(t *testing.T) {
	s := NewLongPollSender()

	go func() {
		time.Sleep(20 * time.Millisecond)
		s.Enqueue(game.NewQueuedMessage(game.TypeChat, "late"))
	}()

	start := time.Now()
	msgs := s.Collect(context.Background(), 5*time.Second)
	elapsed := time.Since(start)

	if len(msgs) != 1 || msgs[0].Payload != "late" {
		t.Fatalf("Expected the late message, got %v", msgs)
	}
	if elapsed >= 5*time.Second {
		t.Error("Collect should have returned on enqueue, not on timeout")
	}
}

func TestLongPollSender_TimeoutReturnsEmptyBatch(t *testing.T) {
	s := NewLongPollSender()

	msgs := s.Collect(context.Background(), 20*time.Millisecond)
	if len(msgs) != 0 {
		t.Fatalf("Expected an empty batch on timeout, got %v", msgs)
	}
}

func TestLongPollSender_InertAfterFlush(t *testing.T) {
	s := NewLongPollSender()

	s.Enqueue(game.NewQueuedMessage(game.TypeChat, "flushed"))
	if msgs := s.Collect(context.Background(), time.Second); len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}

	// Messages after the flush are silently discarded.
	s.Enqueue(game.NewQueuedMessage(game.TypeChat, "discarded"))

	msgs := s.Collect(context.Background(), 20*time.Millisecond)
	if len(msgs) != 0 {
		t.Errorf("An inert sender must not accumulate messages, got %v", msgs)
	}
}

func TestLongPollSender_CancelledContextReturnsNil(t *testing.T) {
	s := NewLongPollSender()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	msgs := s.Collect(ctx, 5*time.Second)
	if msgs != nil {
		t.Errorf("Expected nil on cancellation, got %v", msgs)
	}

	// The sender is inert afterwards.
	s.Enqueue(game.NewQueuedMessage(game.TypeChat, "gone"))
	if msgs := s.Collect(context.Background(), 20*time.Millisecond); len(msgs) != 0 {
		t.Errorf("Expected an inert sender after cancellation, got %v", msgs)
	}
}

func TestHandleEvents_DeliveryRefreshesLiveness(t *testing.T) {
	deps := &AppDeps{Config: &configs.AppConfig{PollTimeout: 2 * time.Second}}
	u := game.NewUser("poller", "127.0.0.1", "session_poller", false)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(context.WithValue(req.Context(), contextUserKey, u))

	go func() {
		time.Sleep(20 * time.Millisecond)
		u.EnqueueMessage(game.NewQueuedMessage(game.TypeChat, "hello"))
	}()

	rr := httptest.NewRecorder()
	HandleEvents(deps)(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected HTTP 200, got %d", rr.Code)
	}
	if u.LastReceivedEvents().IsZero() {
		t.Error("A delivered batch should refresh the delivery timestamp")
	}
}

func TestHandleEvents_AbandonedPollIsNotDelivery(t *testing.T) {
	deps := &AppDeps{Config: &configs.AppConfig{PollTimeout: 5 * time.Second}}
	u := game.NewUser("gone", "127.0.0.1", "session_gone", false)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(context.WithValue(ctx, contextUserKey, u))

	// The client disconnects; a message racing in right after must not make the
	// abandoned poll count as a successful delivery.
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
		u.EnqueueMessage(game.NewQueuedMessage(game.TypeChat, "too late"))
	}()

	rr := httptest.NewRecorder()
	HandleEvents(deps)(rr, req)

	if !u.LastReceivedEvents().IsZero() {
		t.Error("A poll abandoned by the client must not count as delivery")
	}
}

func TestLongPollSender_SupersededByNewerPoll(t *testing.T) {
	u := game.NewUser("alice", "127.0.0.1", "session_alice", false)

	old := NewLongPollSender()
	u.EstablishedEventsConnection(old)

	// A newer poll takes over delivery; the old sender sees nothing further.
	current := NewLongPollSender()
	u.EstablishedEventsConnection(current)

	u.EnqueueMessage(game.NewQueuedMessage(game.TypeChat, "hello"))

	msgs := current.Collect(context.Background(), time.Second)
	if len(msgs) != 1 || msgs[0].Payload != "hello" {
		t.Fatalf("Expected the newer poll to receive the message, got %v", msgs)
	}

	if msgs := old.Collect(context.Background(), 20*time.Millisecond); len(msgs) != 0 {
		t.Errorf("The superseded poll must stay empty, got %v", msgs)
	}
}
