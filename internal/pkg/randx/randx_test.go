package randx

import (
	"strings"
	"testing"
)

func TestGameID(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		id, err := GameID()
		if err != nil {
			t.Fatalf("GameID failed: %v", err)
		}
		if len(id) != GameIDLength {
			t.Fatalf("Expected id of length %d, got %q", GameIDLength, id)
		}
		if !IsValidGameID(id) {
			t.Fatalf("Generated id %q failed its own validation", id)
		}
		seen[id] = struct{}{}
	}

	if len(seen) < 99 {
		t.Errorf("Expected essentially unique ids, got %d distinct out of 100", len(seen))
	}
}

func TestIsValidGameID(t *testing.T) {
	cases := []struct {
		id    string
		valid bool
	}{
		{id: "Ab3xY9", valid: true},
		{id: "000000", valid: true},
		{id: "short", valid: false},
		{id: "toolong7", valid: false},
		{id: "bad-id", valid: false},
		{id: "", valid: false},
	}

	for _, c := range cases {
		if got := IsValidGameID(c.id); got != c.valid {
			t.Errorf("IsValidGameID(%q): expected %v, got %v", c.id, c.valid, got)
		}
	}
}

func TestSessionID(t *testing.T) {
	a := SessionID()
	b := SessionID()

	if a == b {
		t.Error("Session ids must be unique")
	}
	if strings.Count(a, "-") != 4 {
		t.Errorf("Expected a UUID-shaped session id, got %q", a)
	}
}
