package game

import "time"

// VibeLabel 表示单轮对话质量的定性标签。
type VibeLabel string

const (
	VibeVibing  VibeLabel = "Vibing"
	VibeFlowing VibeLabel = "Flowing"
	VibeOkay    VibeLabel = "Okay"
	VibeAwkward VibeLabel = "Awkward"
	VibePainful VibeLabel = "Painful"
)

// Valence returns the position of the label in the total order
// Vibing > Flowing > Okay > Awkward > Painful. Higher is better.
func (v VibeLabel) Valence() int {
	switch v {
	case VibeVibing:
		return 4
	case VibeFlowing:
		return 3
	case VibeOkay:
		return 2
	case VibeAwkward:
		return 1
	case VibePainful:
		return 0
	default:
		return -1
	}
}

// Positive reports whether the label rewards the player.
func (v VibeLabel) Positive() bool {
	return v == VibeVibing || v == VibeFlowing
}

// ParseVibe maps a raw model output string onto the closed label set.
func ParseVibe(raw string) (VibeLabel, bool) {
	switch raw {
	case "Vibing", "vibing":
		return VibeVibing, true
	case "Flowing", "flowing":
		return VibeFlowing, true
	case "Okay", "okay":
		return VibeOkay, true
	case "Awkward", "awkward":
		return VibeAwkward, true
	case "Painful", "painful":
		return VibePainful, true
	default:
		return "", false
	}
}

// TranscriptEntry 是转写流水线产出的一条对话片段。
// Vibe 在裁判返回结论后由编排器回填，且只回填一次。
type TranscriptEntry struct {
	Text      string    `json:"text"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
	Vibe      VibeLabel `json:"vibe,omitempty"`
}

// Energy boundaries for the health model.
const (
	StartingEnergy    = 50
	MaxEnergy         = 100
	ComebackThreshold = 40
)

// HealthState 表示会话期间的游戏健康状态（社交电量）。
type HealthState struct {
	Energy         int       `json:"energy"`
	Streak         int       `json:"streak"`
	LastVibe       VibeLabel `json:"lastVibe,omitempty"`
	RecoveryActive bool      `json:"recoveryActive"`
}

// NewHealthState returns the state every session starts from.
func NewHealthState() HealthState {
	return HealthState{Energy: StartingEnergy}
}

// SessionConfig is the immutable configuration one session is created with.
// Duration is in seconds; nil means unbounded ("zen" mode).
type SessionConfig struct {
	Scenario Scenario
	Duration *int
}

// Unbounded reports whether the session has no countdown.
func (c SessionConfig) Unbounded() bool {
	return c.Duration == nil
}

// Multipliers derives the forgiveness multipliers for the configured
// duration mode: 60s speed rounds halve penalties and boost bonuses,
// unbounded zen mode only halves penalties.
func (c SessionConfig) Multipliers() (penalty, bonus float64) {
	penalty, bonus = 1.0, 1.0
	switch {
	case c.Duration != nil && *c.Duration == 60:
		penalty, bonus = 0.5, 1.5
	case c.Duration == nil:
		penalty = 0.5
	}
	return penalty, bonus
}

// Verdict 是裁判针对单个用户回合给出的结构化结论。
type Verdict struct {
	Vibe        VibeLabel `json:"vibe"`
	Reasoning   string    `json:"reasoning"`
	CoachingTip string    `json:"coaching_tip"`
}

// EvaluationReport is the terminal artifact produced once per session.
type EvaluationReport struct {
	VibeScore         int      `json:"vibeScore"`
	OpenerFeedback    string   `json:"openerFeedback"`
	ContinuerFeedback string   `json:"continuerFeedback"`
	CloserFeedback    string   `json:"closerFeedback"`
	CulturalNotes     string   `json:"culturalNotes"`
	KillerDetection   []string `json:"killerDetection"`
	OverallSummary    string   `json:"overallSummary"`
}
