package game

import (
	"testing"

	"cardparty/internal/pkg/errs"
)

func TestRegistry_CheckAndAdd_RejectsDuplicateNickname(t *testing.T) {
	r := NewRegistry(0, 0)

	if err := r.CheckAndAdd(newTestUser("Alice")); err != nil {
		t.Fatalf("First add failed: %v", err)
	}

	// Nickname comparison is case-insensitive.
	err := r.CheckAndAdd(NewUser("alice", "127.0.0.1", "other_session", false))
	if err == nil {
		t.Fatal("Adding a duplicate nickname should fail")
	}
	if err.Code != errs.ErrNicknameInUse {
		t.Errorf("Expected error code %d, got %d", errs.ErrNicknameInUse, err.Code)
	}
	if r.Count() != 1 {
		t.Errorf("Expected 1 connected user, got %d", r.Count())
	}
}

func TestRegistry_Lookups(t *testing.T) {
	r := NewRegistry(0, 0)
	u := newTestUser("Bob")

	if err := r.CheckAndAdd(u); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if got := r.GetByNickname("BOB"); got != u {
		t.Error("Nickname lookup should be case-insensitive")
	}
	if got := r.GetBySession(u.SessionID()); got != u {
		t.Error("Session lookup should return the registered user")
	}
	if r.GetByNickname("nobody") != nil {
		t.Error("Unknown nickname should resolve to nil")
	}
	if !r.HasNickname("bob") {
		t.Error("HasNickname should report the taken name")
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry(0, 0)
	u := newTestUser("Carol")

	if err := r.CheckAndAdd(u); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	r.Remove(u)
	if r.Count() != 0 {
		t.Errorf("Expected an empty registry, got %d users", r.Count())
	}
	if r.GetBySession(u.SessionID()) != nil {
		t.Error("Session index should be cleared on removal")
	}

	// Removing again, or removing a user that was never added, is a no-op.
	r.Remove(u)
	r.Remove(newTestUser("nobody"))
}

func TestRegistry_Remove_IgnoresStaleUser(t *testing.T) {
	r := NewRegistry(0, 0)
	current := newTestUser("Dave")

	if err := r.CheckAndAdd(current); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// A different User value with the same nickname must not displace the
	// registered one.
	stale := NewUser("Dave", "127.0.0.1", "stale_session", false)
	r.Remove(stale)

	if r.GetByNickname("dave") != current {
		t.Error("Removing a stale user displaced the registered one")
	}
}

func TestRegistry_Broadcast_ExcludesSender(t *testing.T) {
	r := NewRegistry(0, 0)

	sender := newTestUser("sender")
	receiver := newTestUser("receiver")
	receiverSink := &mockSender{}
	senderSink := &mockSender{}
	sender.EstablishedEventsConnection(senderSink)
	receiver.EstablishedEventsConnection(receiverSink)

	if err := r.CheckAndAdd(sender); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.CheckAndAdd(receiver); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	senderBefore := len(senderSink.messages())
	r.Broadcast(NewQueuedMessage(TypeChat, "hi all"), sender)

	found := false
	for _, m := range receiverSink.messages() {
		if m.Type == TypeChat && m.Payload == "hi all" {
			found = true
		}
	}
	if !found {
		t.Error("Broadcast did not reach the other user")
	}
	if len(senderSink.messages()) != senderBefore {
		t.Error("Broadcast must not reach the excluded user")
	}
}

func TestRegistry_AppliesFloodPolicy(t *testing.T) {
	r := NewRegistry(3, DefaultChatFloodWindow)
	u := newTestUser("Erin")

	if err := r.CheckAndAdd(u); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := u.CheckChatFlood(); err != nil {
			t.Fatalf("Message %d should pass, got %v", i, err)
		}
		u.RecordMessageTime()
	}
	if err := u.CheckChatFlood(); err == nil {
		t.Error("The registry's flood count of 3 should apply to admitted users")
	}
}
