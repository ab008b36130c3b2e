/*
Package handler provides the HTTP handlers and routing for the cardparty server.

This file implements event delivery over long polling. Each poll request parks one
LongPollSender on the user; messages enqueued while it is parked are flushed to the
client as a single batch, in order, after which the sender is inert. Messages
enqueued while no poll is parked are dropped at the User layer — clients are
expected to keep a poll outstanding.
*/
package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cardparty/internal/app/game"
	"cardparty/internal/pkg/resp"
)

// LongPollSender buffers messages for exactly one poll response. It satisfies
// game.EventSender: Enqueue is safe from any goroutine and preserves FIFO order.
type LongPollSender struct {
	mu    sync.Mutex
	queue []game.QueuedMessage
	inert bool

	// signal wakes Collect when the first message arrives; buffered so Enqueue
	// never blocks.
	signal chan struct{}
}

// NewLongPollSender creates a sender for one poll request.
func NewLongPollSender() *LongPollSender {
	return &LongPollSender{signal: make(chan struct{}, 1)}
}

// Enqueue accepts a message for the pending flush. Once the sender has flushed it
// silently discards everything; a superseding poll has taken over by then.
func (s *LongPollSender) Enqueue(msg game.QueuedMessage) {
	s.mu.Lock()
	if s.inert {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, msg)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Collect blocks until at least one message is available, the timeout elapses, or
// the context is cancelled, then returns everything accepted so far and renders the
// sender inert. A cancelled context returns nil: the client is gone and nothing
// will be written.
func (s *LongPollSender) Collect(ctx context.Context, timeout time.Duration) []game.QueuedMessage {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			msgs := s.queue
			s.queue = nil
			s.inert = true
			s.mu.Unlock()
			return msgs
		}
		s.mu.Unlock()

		select {
		case <-s.signal:
		case <-timer.C:
			s.mu.Lock()
			msgs := s.queue
			s.queue = nil
			s.inert = true
			s.mu.Unlock()
			return msgs
		case <-ctx.Done():
			s.mu.Lock()
			s.queue = nil
			s.inert = true
			s.mu.Unlock()
			return nil
		}
	}
}

// HandleEvents is the long-poll endpoint. It attaches a fresh sender (superseding
// any previous poll), waits for events or the poll timeout, and responds with the
// batch. An empty batch on timeout is a normal response the client follows with the
// next poll.
func HandleEvents(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := sessionUser(r)

		sender := NewLongPollSender()
		u.EstablishedEventsConnection(sender)

		msgs := sender.Collect(r.Context(), deps.Config.PollTimeout)
		if r.Context().Err() != nil {
			return
		}

		if msgs == nil {
			msgs = []game.QueuedMessage{}
		}
		resp.RespondSuccess(w, r, map[string]any{"events": msgs})

		// A batch counts as delivered only once it went out to a client that was
		// still connected at the write.
		if len(msgs) > 0 && r.Context().Err() == nil {
			u.UserReceivedEvents()
		}
	}
}
