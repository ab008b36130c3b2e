package prefs

import "testing"

func TestMinDefaultMax_Clamp(t *testing.T) {
	b := MinDefaultMax{Min: 4, Default: 8, Max: 69}

	cases := []struct {
		in   int
		want int
	}{
		{in: 3, want: 4},
		{in: 4, want: 4},
		{in: 8, want: 8},
		{in: 69, want: 69},
		{in: 1000, want: 69},
		{in: -5, want: 4},
	}

	for _, c := range cases {
		if got := b.Clamp(c.in); got != c.want {
			t.Errorf("Clamp(%d): expected %d, got %d", c.in, c.want, got)
		}
	}
}

func TestPreferences_FallbackAndOverride(t *testing.T) {
	p := New()

	b := p.MinDefaultMax(KeyScoreLimit, 4, 8, 69)
	if b != (MinDefaultMax{Min: 4, Default: 8, Max: 69}) {
		t.Errorf("Expected the fallback triple, got %+v", b)
	}

	p.Set(KeyScoreLimit, MinDefaultMax{Min: 1, Default: 5, Max: 10})
	b = p.MinDefaultMax(KeyScoreLimit, 4, 8, 69)
	if b != (MinDefaultMax{Min: 1, Default: 5, Max: 10}) {
		t.Errorf("Expected the override triple, got %+v", b)
	}

	// Other keys are unaffected by the override.
	b = p.MinDefaultMax(KeyPlayerLimit, 3, 10, 20)
	if b != (MinDefaultMax{Min: 3, Default: 10, Max: 20}) {
		t.Errorf("Expected the fallback triple for another key, got %+v", b)
	}
}

func TestEnvKey(t *testing.T) {
	cases := map[string]string{
		KeyScoreLimit:      "PREF_SCORE_LIMIT",
		KeyBlankCardsLimit: "PREF_BLANK_CARDS_LIMIT",
		KeyPlayerLimit:     "PREF_PLAYER_LIMIT",
		KeySpectatorLimit:  "PREF_SPECTATOR_LIMIT",
	}

	for name, want := range cases {
		if got := envKey(name); got != want {
			t.Errorf("envKey(%q): expected %q, got %q", name, want, got)
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PREF_SCORE_LIMIT", "2, 6, 12")

	p, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	b := p.MinDefaultMax(KeyScoreLimit, 4, 8, 69)
	if b != (MinDefaultMax{Min: 2, Default: 6, Max: 12}) {
		t.Errorf("Expected the environment triple, got %+v", b)
	}

	// Unset keys keep their fallback.
	b = p.MinDefaultMax(KeyPlayerLimit, 3, 10, 20)
	if b != (MinDefaultMax{Min: 3, Default: 10, Max: 20}) {
		t.Errorf("Expected the fallback triple, got %+v", b)
	}
}

func TestLoadFromEnv_RejectsMalformedValues(t *testing.T) {
	cases := map[string]string{
		"wrong arity":       "1,2",
		"not numeric":       "1,two,3",
		"default below min": "5,2,10",
		"default above max": "5,20,10",
		"min above max":     "10,10,5",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("PREF_SCORE_LIMIT", raw)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("Expected %s (%q) to fail", name, raw)
			}
		})
	}
}
