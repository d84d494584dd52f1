package game

import (
	"testing"

	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
)

func speedConfig() game.SessionConfig {
	d := 60
	return game.SessionConfig{Duration: &d}
}

func standardConfig() game.SessionConfig {
	d := 180
	return game.SessionConfig{Duration: &d}
}

func zenConfig() game.SessionConfig {
	return game.SessionConfig{}
}

func TestSpeedRoundPainfulThenVibing(t *testing.T) {
	state := game.NewHealthState()
	cfg := speedConfig()

	state = applyVerdict(state, cfg, game.VibePainful)
	if state.Energy != 40 {
		t.Fatalf("expected energy 40 after halved Painful, got %d", state.Energy)
	}
	if state.Streak != 0 {
		t.Fatalf("expected streak 0, got %d", state.Streak)
	}

	// At exactly 40 the comeback boost must not apply: threshold is strict.
	state = applyVerdict(state, cfg, game.VibeVibing)
	if state.Energy != 55 {
		t.Fatalf("expected energy 55 after boosted Vibing, got %d", state.Energy)
	}
	if state.Streak != 1 {
		t.Fatalf("expected streak 1, got %d", state.Streak)
	}
	if state.RecoveryActive {
		t.Fatal("expected no recovery at exactly the threshold")
	}
}

func TestZenComebackFlowing(t *testing.T) {
	state := game.HealthState{Energy: 30}

	state = applyVerdict(state, zenConfig(), game.VibeFlowing)
	if state.Energy != 38 {
		t.Fatalf("expected energy 38 after comeback Flowing, got %d", state.Energy)
	}
	if !state.RecoveryActive {
		t.Fatal("expected recovery flag below the threshold")
	}
	if state.LastVibe != game.VibeFlowing {
		t.Fatalf("expected last vibe recorded, got %s", state.LastVibe)
	}
}

func TestComebackVibingBelowThreshold(t *testing.T) {
	state := game.HealthState{Energy: 39}

	state = applyVerdict(state, standardConfig(), game.VibeVibing)
	if state.Energy != 54 {
		t.Fatalf("expected energy 54 from comeback Vibing, got %d", state.Energy)
	}
	if !state.RecoveryActive {
		t.Fatal("expected recovery flag set")
	}
}

func TestStreakGrowsAndResets(t *testing.T) {
	cfg := standardConfig()
	state := game.NewHealthState()

	state = applyVerdict(state, cfg, game.VibeVibing)
	state = applyVerdict(state, cfg, game.VibeFlowing)
	if state.Streak != 2 {
		t.Fatalf("expected streak 2, got %d", state.Streak)
	}

	state = applyVerdict(state, cfg, game.VibeOkay)
	if state.Streak != 2 {
		t.Fatalf("expected Okay to leave streak untouched, got %d", state.Streak)
	}

	state = applyVerdict(state, cfg, game.VibeAwkward)
	if state.Streak != 0 {
		t.Fatalf("expected Awkward to reset streak, got %d", state.Streak)
	}
}

func TestEnergyClampedToBounds(t *testing.T) {
	cfg := standardConfig()

	state := game.HealthState{Energy: 10}
	state = applyVerdict(state, cfg, game.VibePainful)
	if state.Energy != 0 {
		t.Fatalf("expected energy floor 0, got %d", state.Energy)
	}

	state = game.HealthState{Energy: 95}
	state = applyVerdict(state, cfg, game.VibeVibing)
	if state.Energy != 100 {
		t.Fatalf("expected energy ceiling 100, got %d", state.Energy)
	}
}

func TestRecoveryClearedOnNextVerdict(t *testing.T) {
	state := game.HealthState{Energy: 30}
	state = applyVerdict(state, zenConfig(), game.VibeFlowing)
	if !state.RecoveryActive {
		t.Fatal("expected recovery set")
	}

	state = applyVerdict(state, zenConfig(), game.VibeOkay)
	if state.RecoveryActive {
		t.Fatal("expected recovery cleared by a non-comeback verdict")
	}
}
