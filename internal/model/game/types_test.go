package game

import "testing"

func TestParseVibeAcceptsKnownLabels(t *testing.T) {
	cases := map[string]VibeLabel{
		"Vibing":  VibeVibing,
		"flowing": VibeFlowing,
		"Okay":    VibeOkay,
		"awkward": VibeAwkward,
		"Painful": VibePainful,
	}
	for raw, want := range cases {
		got, ok := ParseVibe(raw)
		if !ok || got != want {
			t.Fatalf("ParseVibe(%q) = %q, %v", raw, got, ok)
		}
	}
}

func TestParseVibeRejectsUnknown(t *testing.T) {
	if _, ok := ParseVibe("Amazing"); ok {
		t.Fatal("expected unknown label to be rejected")
	}
	if _, ok := ParseVibe(""); ok {
		t.Fatal("expected empty label to be rejected")
	}
}

func TestValenceOrdering(t *testing.T) {
	order := []VibeLabel{VibePainful, VibeAwkward, VibeOkay, VibeFlowing, VibeVibing}
	for i := 1; i < len(order); i++ {
		if order[i].Valence() <= order[i-1].Valence() {
			t.Fatalf("expected %s to rank above %s", order[i], order[i-1])
		}
	}
}

func TestPositive(t *testing.T) {
	if !VibeVibing.Positive() || !VibeFlowing.Positive() {
		t.Fatal("expected Vibing and Flowing to be positive")
	}
	if VibeOkay.Positive() || VibeAwkward.Positive() || VibePainful.Positive() {
		t.Fatal("expected Okay, Awkward, Painful to be non-positive")
	}
}

func TestMultipliers(t *testing.T) {
	speed := 60
	standard := 180

	cases := []struct {
		name    string
		cfg     SessionConfig
		penalty float64
		bonus   float64
	}{
		{"speed", SessionConfig{Duration: &speed}, 0.5, 1.5},
		{"standard", SessionConfig{Duration: &standard}, 1.0, 1.0},
		{"zen", SessionConfig{}, 0.5, 1.0},
	}
	for _, tc := range cases {
		penalty, bonus := tc.cfg.Multipliers()
		if penalty != tc.penalty || bonus != tc.bonus {
			t.Fatalf("%s: expected multipliers (%.1f, %.1f), got (%.1f, %.1f)",
				tc.name, tc.penalty, tc.bonus, penalty, bonus)
		}
	}
}

func TestScenarioStore(t *testing.T) {
	store := NewMemoryScenarioStore(Seed())
	scenarios := store.List()
	if len(scenarios) != 6 {
		t.Fatalf("expected 6 seeded scenarios, got %d", len(scenarios))
	}

	found, ok := store.FindByID("party-orphan")
	if !ok {
		t.Fatal("expected party-orphan scenario")
	}
	if found.NPCRole == "" || found.Context == "" || found.InitialLine == "" {
		t.Fatal("expected scenario fields populated")
	}

	if _, ok := store.FindByID("missing"); ok {
		t.Fatal("expected lookup miss for unknown id")
	}
}
