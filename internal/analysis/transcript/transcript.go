package transcript

import (
	"fmt"
	"strings"

	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
)

// 本包只做纯函数式的转写加工：裁判取证窗口、角色标注、整场序列化。
// 转写本身由编排器独占持有，这里不保留任何状态。

// Role labels used when rendering transcript lines for the agents.
const (
	roleUser      = "User"
	roleCharacter = "NPC"
)

// LatestUnjudgedUser returns the index of the most recent user entry strictly
// after lastJudged, or -1 when every user turn has already been submitted.
// Entries are appended in arrival order, so a backwards scan finds the latest.
func LatestUnjudgedUser(entries []game.TranscriptEntry, lastJudged int) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].IsUser {
			if i <= lastJudged {
				return -1
			}
			return i
		}
	}
	return -1
}

// Window returns the slice of entries ending at index and including up to
// preceding earlier entries for context.
func Window(entries []game.TranscriptEntry, index, preceding int) []game.TranscriptEntry {
	if index < 0 || index >= len(entries) {
		return nil
	}
	start := index - preceding
	if start < 0 {
		start = 0
	}
	return entries[start : index+1]
}

// FormatLines renders entries as role-labelled dialogue lines for the judge.
func FormatLines(entries []game.TranscriptEntry) string {
	var builder strings.Builder
	for i, entry := range entries {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(roleFor(entry))
		builder.WriteString(": ")
		builder.WriteString(entry.Text)
	}
	return builder.String()
}

// Serialize renders the full transcript for the evaluator, one line per entry
// with its arrival timestamp and the vibe tag where the judge assigned one.
func Serialize(entries []game.TranscriptEntry) string {
	var builder strings.Builder
	for i, entry := range entries {
		if i > 0 {
			builder.WriteString("\n")
		}
		fmt.Fprintf(&builder, "[%d] %s (%s): %s",
			entry.Timestamp.UnixMilli(), roleFor(entry), entry.Vibe, entry.Text)
	}
	return builder.String()
}

func roleFor(entry game.TranscriptEntry) string {
	if entry.IsUser {
		return roleUser
	}
	return roleCharacter
}
