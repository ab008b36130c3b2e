package game

import (
	"reflect"
	"testing"

	"cardparty/internal/app/prefs"
)

func TestGameOptions_Defaults(t *testing.T) {
	o := NewGameOptions(prefs.New())

	if o.BlanksInDeck() != 0 {
		t.Errorf("Expected 0 blank cards by default, got %d", o.BlanksInDeck())
	}
	if o.ScoreGoal() != 8 {
		t.Errorf("Expected score goal 8 by default, got %d", o.ScoreGoal())
	}
	if o.PlayerLimit() != 10 {
		t.Errorf("Expected player limit 10 by default, got %d", o.PlayerLimit())
	}
	if o.SpectatorLimit() != 10 {
		t.Errorf("Expected spectator limit 10 by default, got %d", o.SpectatorLimit())
	}
	if o.TimerMultiplier() != DefaultTimerMultiplier {
		t.Errorf("Expected timer multiplier %q, got %q", DefaultTimerMultiplier, o.TimerMultiplier())
	}
	if o.Password() != "" {
		t.Errorf("Expected no password by default, got %q", o.Password())
	}
}

func TestDeserializeGameOptions_ClampsOutOfRange(t *testing.T) {
	p := prefs.New()

	o := DeserializeGameOptions(p, `{"scoreLimit": 1000, "playerLimit": -5, "blanksLimit": 99, "spectatorLimit": 50}`)

	if o.ScoreGoal() != 69 {
		t.Errorf("Expected score goal clamped to 69, got %d", o.ScoreGoal())
	}
	if o.PlayerLimit() != 3 {
		t.Errorf("Expected player limit clamped to 3, got %d", o.PlayerLimit())
	}
	if o.BlanksInDeck() != 30 {
		t.Errorf("Expected blanks clamped to 30, got %d", o.BlanksInDeck())
	}
	if o.SpectatorLimit() != 20 {
		t.Errorf("Expected spectator limit clamped to 20, got %d", o.SpectatorLimit())
	}
}

func TestDeserializeGameOptions_AbsentFieldsKeepDefaults(t *testing.T) {
	o := DeserializeGameOptions(prefs.New(), `{"scoreLimit": 12}`)

	if o.ScoreGoal() != 12 {
		t.Errorf("Expected score goal 12, got %d", o.ScoreGoal())
	}
	if o.PlayerLimit() != 10 {
		t.Errorf("Absent player limit should keep the default 10, got %d", o.PlayerLimit())
	}
}

func TestDeserializeGameOptions_NeverFails(t *testing.T) {
	for name, text := range map[string]string{
		"empty":        "",
		"not json":     "{{{",
		"wrong types":  `{"scoreLimit": "many"}`,
		"null payload": "null",
	} {
		o := DeserializeGameOptions(prefs.New(), text)
		if o == nil {
			t.Errorf("%s: deserialization must always yield options", name)
			continue
		}
		if o.ScoreGoal() != 8 {
			t.Errorf("%s: expected default score goal, got %d", name, o.ScoreGoal())
		}
	}
}

func TestDeserializeGameOptions_SkipsBadCardSetTokens(t *testing.T) {
	o := DeserializeGameOptions(prefs.New(), `{"cardSets": "1, oops, -3,, 7"}`)

	want := []int{-3, 1, 7}
	if got := o.CardSetIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected card sets %v, got %v", want, got)
	}
}

func TestGameOptions_LocalCardSetIDs(t *testing.T) {
	o := DeserializeGameOptions(prefs.New(), `{"cardSets": "-2,0,3,5"}`)

	want := []int{3, 5}
	if got := o.LocalCardSetIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected local card sets %v, got %v", want, got)
	}
}

func TestGameOptions_Update_ReplacesCardSetsWholesale(t *testing.T) {
	p := prefs.New()
	o := DeserializeGameOptions(p, `{"cardSets": "1,2,3", "password": "old"}`)

	o.Update(DeserializeGameOptions(p, `{"cardSets": "4", "password": "new", "scoreLimit": 15}`))

	want := []int{4}
	if got := o.CardSetIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected card sets %v after update, got %v", want, got)
	}
	if o.Password() != "new" {
		t.Errorf("Expected password %q, got %q", "new", o.Password())
	}
	if o.ScoreGoal() != 15 {
		t.Errorf("Expected score goal 15, got %d", o.ScoreGoal())
	}
}

func TestGameOptions_BoundsReadLive(t *testing.T) {
	p := prefs.New()

	p.Set(prefs.KeyScoreLimit, prefs.MinDefaultMax{Min: 4, Default: 8, Max: 10})
	o := DeserializeGameOptions(p, `{"scoreLimit": 50}`)
	if o.ScoreGoal() != 10 {
		t.Errorf("Expected score goal clamped to the overridden max 10, got %d", o.ScoreGoal())
	}

	// Loosening the bound affects the next deserialization, not existing values.
	p.Set(prefs.KeyScoreLimit, prefs.MinDefaultMax{Min: 4, Default: 8, Max: 69})
	o2 := DeserializeGameOptions(p, `{"scoreLimit": 50}`)
	if o2.ScoreGoal() != 50 {
		t.Errorf("Expected score goal 50 under the loosened bound, got %d", o2.ScoreGoal())
	}
}

func TestGameOptions_Serialize(t *testing.T) {
	o := DeserializeGameOptions(prefs.New(), `{"cardSets": "2,1", "password": "pw", "scoreLimit": 12}`)

	view := o.Serialize(false)
	if view.Password != "" {
		t.Error("Unprivileged view must not carry the password")
	}
	if view.ScoreLimit != 12 {
		t.Errorf("Expected score limit 12, got %d", view.ScoreLimit)
	}
	if want := []int{1, 2}; !reflect.DeepEqual(view.CardSets, want) {
		t.Errorf("Expected card sets %v, got %v", want, view.CardSets)
	}

	if o.Serialize(true).Password != "pw" {
		t.Error("Privileged view should carry the password")
	}
}
