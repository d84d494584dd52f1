package game

import (
	"math"

	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
)

// Base energy deltas per verdict, before the duration multipliers.
const (
	vibingDelta  = 10
	flowingDelta = 5
	okayDelta    = -2
	awkwardDelta = -10
	painfulDelta = -20

	vibingComebackDelta  = 15
	flowingComebackDelta = 8
)

// applyVerdict 依据裁判结论推进健康状态：能量增减、连击、低谷反弹。
// 负向增量乘以惩罚系数，正向增量乘以奖励系数，四舍五入后截断到 [0, 100]。
func applyVerdict(state game.HealthState, cfg game.SessionConfig, vibe game.VibeLabel) game.HealthState {
	penalty, bonus := cfg.Multipliers()
	danger := state.Energy < game.ComebackThreshold

	next := state
	next.LastVibe = vibe
	next.RecoveryActive = false

	var delta float64
	switch vibe {
	case game.VibeVibing:
		delta = vibingDelta * bonus
		next.Streak = state.Streak + 1
		if danger {
			delta = vibingComebackDelta * bonus
			next.RecoveryActive = true
		}
	case game.VibeFlowing:
		delta = flowingDelta * bonus
		next.Streak = state.Streak + 1
		if danger {
			delta = flowingComebackDelta * bonus
			next.RecoveryActive = true
		}
	case game.VibeOkay:
		delta = okayDelta * penalty
	case game.VibeAwkward:
		delta = awkwardDelta * penalty
		next.Streak = 0
	case game.VibePainful:
		delta = painfulDelta * penalty
		next.Streak = 0
	}

	energy := state.Energy + int(math.Round(delta))
	if energy < 0 {
		energy = 0
	}
	if energy > game.MaxEnergy {
		energy = game.MaxEnergy
	}
	next.Energy = energy

	return next
}
