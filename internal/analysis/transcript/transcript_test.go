package transcript

import (
	"fmt"
	"testing"
	"time"

	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
)

func entry(text string, isUser bool) game.TranscriptEntry {
	return game.TranscriptEntry{Text: text, IsUser: isUser}
}

func TestLatestUnjudgedUserFindsNewestUserTurn(t *testing.T) {
	entries := []game.TranscriptEntry{
		entry("hi there", true),
		entry("oh hey", false),
		entry("nice party", true),
		entry("yeah the host outdid himself", false),
	}

	if got := LatestUnjudgedUser(entries, -1); got != 2 {
		t.Fatalf("expected index 2, got %d", got)
	}
}

func TestLatestUnjudgedUserSkipsAlreadyJudged(t *testing.T) {
	entries := []game.TranscriptEntry{
		entry("hi there", true),
		entry("oh hey", false),
	}

	if got := LatestUnjudgedUser(entries, 0); got != -1 {
		t.Fatalf("expected -1 for already judged turn, got %d", got)
	}
}

func TestLatestUnjudgedUserNoUserEntries(t *testing.T) {
	entries := []game.TranscriptEntry{
		entry("*waves*", false),
	}
	if got := LatestUnjudgedUser(entries, -1); got != -1 {
		t.Fatalf("expected -1 with no user turns, got %d", got)
	}
	if got := LatestUnjudgedUser(nil, -1); got != -1 {
		t.Fatalf("expected -1 for empty transcript, got %d", got)
	}
}

func TestWindowClampsAtStart(t *testing.T) {
	entries := []game.TranscriptEntry{
		entry("a", true),
		entry("b", false),
		entry("c", true),
	}

	window := Window(entries, 2, 3)
	if len(window) != 3 {
		t.Fatalf("expected full transcript when history is short, got %d entries", len(window))
	}
	if window[len(window)-1].Text != "c" {
		t.Fatalf("expected window to end at judged entry, got %q", window[len(window)-1].Text)
	}

	if got := Window(entries, 5, 3); got != nil {
		t.Fatal("expected nil window for out-of-range index")
	}
}

func TestFormatLines(t *testing.T) {
	entries := []game.TranscriptEntry{
		entry("nice party", true),
		entry("yeah, the host outdid himself", false),
	}

	want := "User: nice party\nNPC: yeah, the host outdid himself"
	if got := FormatLines(entries); got != want {
		t.Fatalf("unexpected dialogue rendering:\n%s", got)
	}
}

func TestSerializeIncludesTimestampAndVibe(t *testing.T) {
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	entries := []game.TranscriptEntry{
		{Text: "nice party", IsUser: true, Timestamp: at, Vibe: game.VibeFlowing},
		{Text: "yeah!", IsUser: false, Timestamp: at.Add(time.Second)},
	}

	want := fmt.Sprintf("[%d] User (Flowing): nice party\n[%d] NPC (): yeah!",
		at.UnixMilli(), at.Add(time.Second).UnixMilli())
	if got := Serialize(entries); got != want {
		t.Fatalf("unexpected serialization:\n%s", got)
	}
}
