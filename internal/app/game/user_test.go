package game

import (
	"sync"
	"testing"
	"time"

	"cardparty/internal/app/prefs"
	"cardparty/internal/pkg/errs"
)

// mockSender is a test double for the EventSender interface.
type mockSender struct {
	mu   sync.Mutex
	msgs []QueuedMessage
}

func (m *mockSender) Enqueue(msg QueuedMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
}

func (m *mockSender) messages() []QueuedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]QueuedMessage(nil), m.msgs...)
}

func newTestUser(nickname string) *User {
	return NewUser(nickname, "127.0.0.1", "session_"+nickname, false)
}

func newTestGame(id string) *Game {
	return NewGame(id, nil, NewGameOptions(prefs.New()), nil)
}

func TestUser_EnqueueMessage_PreservesOrder(t *testing.T) {
	u := newTestUser("alice")
	sender := &mockSender{}
	u.EstablishedEventsConnection(sender)

	u.EnqueueMessage(NewQueuedMessage(TypeChat, "first"))
	u.EnqueueMessage(NewQueuedMessage(TypePlayerEvent, "second"))
	u.EnqueueMessage(NewQueuedMessage(TypeGameEvent, "third"))

	msgs := sender.messages()
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

func TestUser_EnqueueMessage_DroppedWithoutSender(t *testing.T) {
	u := newTestUser("bob")

	// No sender attached: the message must be silently dropped.
	u.EnqueueMessage(NewQueuedMessage(TypeChat, "lost"))

	sender := &mockSender{}
	u.EstablishedEventsConnection(sender)
	u.EnqueueMessage(NewQueuedMessage(TypeChat, "kept"))

	msgs := sender.messages()
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message after attaching sender, got %d", len(msgs))
	}
	if msgs[0].Payload != "kept" {
		t.Errorf("Expected the post-attach message, got %v", msgs[0].Payload)
	}
}

func TestUser_ChatFlood_RejectsInsideWindow(t *testing.T) {
	u := newTestUser("carol")

	current := time.Unix(1000, 0)
	u.now = func() time.Time { return current }

	// Fill the window: ten messages 100ms apart all pass.
	for i := 0; i < DefaultChatFloodCount; i++ {
		if err := u.CheckChatFlood(); err != nil {
			t.Fatalf("Message %d should pass the flood check, got %v", i, err)
		}
		u.RecordMessageTime()
		current = current.Add(100 * time.Millisecond)
	}

	// The window is full and its oldest entry is well inside the window duration.
	err := u.CheckChatFlood()
	if err == nil {
		t.Fatal("Expected the flood check to fail with a full, fresh window")
	}
	if err.Code != errs.ErrTooFast {
		t.Errorf("Expected error code %d, got %d", errs.ErrTooFast, err.Code)
	}
}

func TestUser_ChatFlood_FreesOneSlotAfterWindow(t *testing.T) {
	u := newTestUser("dave")

	base := time.Unix(1000, 0)
	current := base
	u.now = func() time.Time { return current }

	// One old message, then nine a second later, filling the window.
	if err := u.CheckChatFlood(); err != nil {
		t.Fatalf("First message should pass the flood check, got %v", err)
	}
	u.RecordMessageTime()

	current = base.Add(1 * time.Second)
	for i := 1; i < DefaultChatFloodCount; i++ {
		if err := u.CheckChatFlood(); err != nil {
			t.Fatalf("Message %d should pass the flood check, got %v", i, err)
		}
		u.RecordMessageTime()
	}

	// Once the oldest entry ages past the window, exactly one slot frees up.
	current = base.Add(DefaultChatFloodWindow + 500*time.Millisecond)
	if err := u.CheckChatFlood(); err != nil {
		t.Fatalf("Flood check should pass after the window elapsed, got %v", err)
	}
	u.RecordMessageTime()

	// The window is full again and its new oldest entry is still young.
	if err := u.CheckChatFlood(); err == nil {
		t.Fatal("Expected the flood check to fail again; only one slot should free per pass")
	}
}

func TestUser_PingPong(t *testing.T) {
	u := newTestUser("erin")
	sender := &mockSender{}
	u.EstablishedEventsConnection(sender)

	if u.IsWaitingPong() {
		t.Fatal("A fresh user must not be waiting for a pong")
	}

	u.SendPing()

	if !u.IsWaitingPong() {
		t.Fatal("SendPing should mark the user as awaiting a pong")
	}

	msgs := sender.messages()
	if len(msgs) != 1 || msgs[0].Type != TypePing {
		t.Fatalf("Expected exactly one PING message, got %v", msgs)
	}

	// Any client activity answers the ping.
	u.UserDidSomething()
	if u.IsWaitingPong() {
		t.Error("Client activity should clear the waiting-pong flag")
	}

	u.SendPing()
	u.UserReceivedEvents()
	if u.IsWaitingPong() {
		t.Error("Event delivery should clear the waiting-pong flag")
	}
}

func TestUser_NoLongerValid_LeavesGameAndIsIdempotent(t *testing.T) {
	u := newTestUser("frank")
	g := newTestGame("G1")

	if err := g.AddPlayer(u); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}

	u.NoLongerValid()

	if u.IsValid() {
		t.Error("User should be invalid after NoLongerValid")
	}
	if g.HasPlayer(u) {
		t.Error("User should have been removed from its game's roster")
	}
	if u.Game() != nil {
		t.Error("User should have no current game after invalidation")
	}

	// A second call must be harmless.
	u.NoLongerValid()
	if u.IsValid() {
		t.Error("User must stay invalid")
	}
}

func TestUser_AtMostOneGame(t *testing.T) {
	u := newTestUser("grace")
	g1 := newTestGame("G1")
	g2 := newTestGame("G2")

	if err := g1.AddPlayer(u); err != nil {
		t.Fatalf("Joining the first game failed: %v", err)
	}

	err := g2.AddPlayer(u)
	if err == nil {
		t.Fatal("Joining a second game should fail")
	}
	if err.Code != errs.ErrAlreadyInGame {
		t.Errorf("Expected error code %d, got %d", errs.ErrAlreadyInGame, err.Code)
	}

	// The failed join must not disturb the existing membership.
	if u.Game() != g1 {
		t.Error("Current game should still be the first game")
	}
	if g2.HasPlayer(u) {
		t.Error("The second game's roster must not contain the user")
	}

	// After leaving, the user can join the other game.
	g1.RemovePlayer(u)
	if err := g2.AddPlayer(u); err != nil {
		t.Fatalf("Joining after leaving should succeed, got %v", err)
	}
}

func TestUser_LeaveGame_StaleRemovalKeepsNewMembership(t *testing.T) {
	u := newTestUser("heidi")
	g1 := newTestGame("G1")
	g2 := newTestGame("G2")

	if err := g1.AddPlayer(u); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	g1.RemovePlayer(u)

	if err := g2.AddPlayer(u); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}

	// A repeated removal from the old game must not clear the new membership.
	g1.RemovePlayer(u)
	if u.Game() != g2 {
		t.Error("Stale removal clobbered the user's current game")
	}
}
