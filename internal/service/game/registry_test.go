package game

import (
	"context"
	"errors"
	"testing"

	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
)

func TestRegistryCreateAndGet(t *testing.T) {
	registry := NewRegistry()
	record, err := registry.Create(context.Background(), testScenario(), nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if record.ID == "" {
		t.Fatal("expected generated session id")
	}
	if record.Duration != nil {
		t.Fatal("expected unbounded duration")
	}

	got, err := registry.Get(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Scenario.ID != "party-orphan" {
		t.Fatalf("unexpected scenario: %s", got.Scenario.ID)
	}
}

func TestRegistryRequiresScenario(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Create(context.Background(), game.Scenario{}, nil); !errors.Is(err, ErrScenarioRequired) {
		t.Fatalf("expected ErrScenarioRequired, got %v", err)
	}
}

func TestRegistryGetMissing(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Get(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRegistryAttachOnce(t *testing.T) {
	registry := NewRegistry()
	record, err := registry.Create(context.Background(), testScenario(), nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	sess := &Session{ID: record.ID}
	if err := registry.Attach(record.ID, sess); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if err := registry.Attach(record.ID, sess); !errors.Is(err, ErrSessionAttached) {
		t.Fatalf("expected ErrSessionAttached, got %v", err)
	}

	registry.Detach(record.ID)
	if err := registry.Attach(record.ID, sess); err != nil {
		t.Fatalf("attach after detach failed: %v", err)
	}

	registry.Remove(record.ID)
	if err := registry.Attach(record.ID, sess); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after remove, got %v", err)
	}
}
