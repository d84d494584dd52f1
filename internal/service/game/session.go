package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Pickle1024/Yapyap-AI/internal/analysis/transcript"
	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
	"github.com/Pickle1024/Yapyap-AI/internal/service/judge"
)

// Phase 表示会话生命周期所处的阶段。
type Phase string

const (
	PhaseInitializing Phase = "initializing"
	PhaseConnected    Phase = "connected"
	PhaseEvaluating   Phase = "evaluating"
	PhaseEnded        Phase = "ended"
)

// 编排器内部的时序常量，取值跟随产品交互节奏。
const (
	countdownTick   = time.Second
	timeUpDelay     = 1500 * time.Millisecond
	depletedDelay   = 2 * time.Second
	recoveryFlash   = 2 * time.Second
	evaluateTimeout = 60 * time.Second
)

// Transport 是到远端语音模型的实时链路，由传输层实现。
type Transport interface {
	Connect(ctx context.Context, systemInstruction string) error
	Disconnect()
}

// Judge 对单个用户回合给出实时结论。
type Judge interface {
	Judge(ctx context.Context, scenario game.Scenario, window []game.TranscriptEntry) (game.Verdict, error)
}

// Evaluator 在会话结束时产出整场评估报告。
type Evaluator interface {
	Evaluate(ctx context.Context, scenario game.Scenario, serialized string) (game.EvaluationReport, error)
}

// Events 是编排器向展示层推送的回调集合，构造时一次性注入。
// 任何字段都可以为 nil，表示展示层不关心该类事件。
type Events struct {
	OnState      func(text string)
	OnVolume     func(volume float64)
	OnTranscript func(entry game.TranscriptEntry)
	OnHealth     func(health game.HealthState)
	OnTip        func(tip string)
	OnCountdown  func(remaining int)
	OnReport     func(report game.EvaluationReport)
}

// Session 驱动一场完整的对话训练：实时链路、逐回合打分、终局评估。
type Session struct {
	ID        string
	Config    game.SessionConfig
	CreatedAt time.Time

	transport Transport
	judge     Judge
	evaluator Evaluator
	events    Events

	mu            sync.Mutex
	phase         Phase
	health        game.HealthState
	entries       []game.TranscriptEntry
	lastJudged    int
	timeLeft      int
	timerExpired  bool
	evaluating    bool
	report        *game.EvaluationReport
	runCancel     context.CancelFunc
	timerCancel   context.CancelFunc
	recoveryTimer *time.Timer
}

// NewSession 构造一个处于 Initializing 阶段的会话编排器。
func NewSession(id string, cfg game.SessionConfig, transport Transport, turnJudge Judge, evaluator Evaluator, events Events) *Session {
	s := &Session{
		ID:         id,
		Config:     cfg,
		CreatedAt:  time.Now().UTC(),
		transport:  transport,
		judge:      turnJudge,
		evaluator:  evaluator,
		events:     events,
		phase:      PhaseInitializing,
		health:     game.NewHealthState(),
		lastJudged: -1,
	}
	if cfg.Duration != nil {
		s.timeLeft = *cfg.Duration
	}
	return s
}

// Start 建立实时链路并在有时限的模式下启动倒计时。
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseInitializing {
		s.mu.Unlock()
		return fmt.Errorf("session %s already started", s.ID)
	}
	s.mu.Unlock()

	s.emitState("Connecting...")

	runCtx, cancel := context.WithCancel(context.Background())
	if err := s.transport.Connect(ctx, s.systemInstruction()); err != nil {
		cancel()
		s.emitState("Connection Lost.")
		return fmt.Errorf("failed to open live link: %w", err)
	}

	s.mu.Lock()
	s.phase = PhaseConnected
	s.runCancel = cancel
	bounded := !s.Config.Unbounded()
	s.mu.Unlock()

	if bounded {
		timerCtx, timerCancel := context.WithCancel(runCtx)
		s.mu.Lock()
		s.timerCancel = timerCancel
		s.mu.Unlock()
		go s.countdown(timerCtx)
	}

	s.emitState("Connected. Speak now.")
	s.emitHealth(s.Health())
	return nil
}

// HandleTranscript 接收传输层回调的转写片段。NPC 片段到达意味着
// 它之前的用户回合已经确定结束，此时触发一次裁判检查。
func (s *Session) HandleTranscript(entry game.TranscriptEntry) {
	s.mu.Lock()
	if s.phase == PhaseEnded {
		s.mu.Unlock()
		return
	}
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	if s.events.OnTranscript != nil {
		s.events.OnTranscript(entry)
	}
	if !entry.IsUser {
		s.triggerVibeCheck()
	}
}

// HandleVolume 转发输入音量。
func (s *Session) HandleVolume(volume float64) {
	if s.events.OnVolume != nil {
		s.events.OnVolume(volume)
	}
}

// HandleDisconnect 处理链路中断。正常终局路径（评估中、电量耗尽、
// 时间用完）不提示掉线。
func (s *Session) HandleDisconnect() {
	s.mu.Lock()
	quiet := s.evaluating || s.health.Energy == 0 || s.timerExpired || s.phase == PhaseEnded
	s.mu.Unlock()
	if !quiet {
		s.emitState("Connection Lost.")
	}
}

// triggerVibeCheck 找到最近一条尚未评判的用户片段并异步交给裁判。
// 索引在触发时即推进，保证同一回合至多评判一次。
func (s *Session) triggerVibeCheck() {
	s.mu.Lock()
	idx := transcript.LatestUnjudgedUser(s.entries, s.lastJudged)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.lastJudged = idx
	// 裁判协程在锁外读取窗口，必须深拷贝，否则后续落到
	// entries 上的结论写入会与它共享底层数组。
	window := append([]game.TranscriptEntry(nil), transcript.Window(s.entries, idx, judge.ContextLines)...)
	s.mu.Unlock()

	go func(target int, window []game.TranscriptEntry) {
		ctx, cancel := context.WithTimeout(context.Background(), evaluateTimeout)
		defer cancel()

		verdict, err := s.judge.Judge(ctx, s.Config.Scenario, window)
		if err != nil {
			log.Printf("[game] vibe check failed for session %s: %v", s.ID, err)
			return
		}
		s.applyVerdictAt(target, verdict)
	}(idx, window)
}

// applyVerdictAt 把裁判结论落到捕获的转写索引并推进健康状态。
func (s *Session) applyVerdictAt(index int, verdict game.Verdict) {
	s.mu.Lock()
	if s.phase == PhaseEnded || s.evaluating {
		s.mu.Unlock()
		return
	}

	s.health = applyVerdict(s.health, s.Config, verdict.Vibe)
	if index >= 0 && index < len(s.entries) {
		s.entries[index].Vibe = verdict.Vibe
	}
	health := s.health
	depleted := health.Energy == 0

	if health.RecoveryActive {
		if s.recoveryTimer != nil {
			s.recoveryTimer.Stop()
		}
		s.recoveryTimer = time.AfterFunc(recoveryFlash, s.clearRecovery)
	}
	s.mu.Unlock()

	if verdict.CoachingTip != "" && s.events.OnTip != nil {
		s.events.OnTip(verdict.CoachingTip)
	}
	s.emitHealth(health)

	if depleted {
		s.transport.Disconnect()
		s.emitState("SOCIAL BATTERY DEPLETED.")
		time.AfterFunc(depletedDelay, func() { s.Finish(context.Background()) })
	}
}

func (s *Session) clearRecovery() {
	s.mu.Lock()
	s.health.RecoveryActive = false
	health := s.health
	ended := s.phase == PhaseEnded
	s.mu.Unlock()
	if !ended {
		s.emitHealth(health)
	}
}

// countdown 每秒推进一次剩余时间，归零后延迟片刻进入终局评估。
func (s *Session) countdown(ctx context.Context) {
	ticker := time.NewTicker(countdownTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.timeLeft <= 0 {
				s.mu.Unlock()
				return
			}
			s.timeLeft--
			remaining := s.timeLeft
			expired := remaining == 0
			if expired {
				s.timerExpired = true
			}
			s.mu.Unlock()

			if s.events.OnCountdown != nil {
				s.events.OnCountdown(remaining)
			}
			if expired {
				s.emitState("TIME'S UP!")
				time.AfterFunc(timeUpDelay, func() { s.Finish(context.Background()) })
				return
			}
		}
	}
}

// Finish 结束会话并产出评估报告。布尔闩保证整场评估只发生一次，
// 评估失败时退化为带当前电量的兜底报告。
func (s *Session) Finish(ctx context.Context) {
	s.mu.Lock()
	if s.evaluating || s.phase == PhaseEnded {
		s.mu.Unlock()
		return
	}
	s.evaluating = true
	s.phase = PhaseEvaluating
	s.stopTimersLocked()
	entries := make([]game.TranscriptEntry, len(s.entries))
	copy(entries, s.entries)
	energy := s.health.Energy
	s.mu.Unlock()

	s.emitState("Analyzing Performance...")
	s.transport.Disconnect()

	evalCtx, cancel := context.WithTimeout(ctx, evaluateTimeout)
	defer cancel()

	report, err := s.evaluator.Evaluate(evalCtx, s.Config.Scenario, transcript.Serialize(entries))
	if err != nil {
		log.Printf("[game] evaluation failed for session %s: %v", s.ID, err)
		report = fallbackReport(energy)
	}

	s.mu.Lock()
	s.report = &report
	s.phase = PhaseEnded
	if s.runCancel != nil {
		s.runCancel()
	}
	s.mu.Unlock()

	if s.events.OnReport != nil {
		s.events.OnReport(report)
	}
}

// Abort 丢弃会话，不做终局评估。可重复调用。
func (s *Session) Abort() {
	s.mu.Lock()
	if s.phase == PhaseEnded {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseEnded
	s.stopTimersLocked()
	if s.runCancel != nil {
		s.runCancel()
	}
	s.mu.Unlock()

	s.transport.Disconnect()
}

func (s *Session) stopTimersLocked() {
	if s.timerCancel != nil {
		s.timerCancel()
		s.timerCancel = nil
	}
	if s.recoveryTimer != nil {
		s.recoveryTimer.Stop()
		s.recoveryTimer = nil
	}
}

// Health 返回当前健康状态快照。
func (s *Session) Health() game.HealthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.health
}

// CurrentPhase 返回当前生命周期阶段。
func (s *Session) CurrentPhase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Transcript 返回转写记录的副本。
func (s *Session) Transcript() []game.TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]game.TranscriptEntry, len(s.entries))
	copy(copied, s.entries)
	return copied
}

// Report 返回终局报告。会话尚未结束时第二个返回值为 false。
func (s *Session) Report() (game.EvaluationReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		return game.EvaluationReport{}, false
	}
	return *s.report, true
}

// systemInstruction 拼装角色代理的完整人设指令：
// 扮演契约、闲聊知识库、场景字段，以及随时长模式变化的情境修饰。
func (s *Session) systemInstruction() string {
	sc := s.Config.Scenario
	return fmt.Sprintf(
		"%s\n\n%s\n\n---\nCURRENT SCENARIO: %s\nDIFFICULTY: %s\nROLE: %s\nGOAL: %s\nCONTEXT: %s\nINITIAL LINE: %q\n\n%s",
		game.CharacterContract,
		game.KnowledgeBase,
		sc.Title, sc.Difficulty, sc.NPCRole, sc.Goal, sc.Context, sc.InitialLine,
		s.situationModifier(),
	)
}

func (s *Session) situationModifier() string {
	switch {
	case s.Config.Duration != nil && *s.Config.Duration == 60:
		return "SITUATION MODIFIER: You are in a rush. You have very little patience. Keep your responses short and punchy because you don't have much time."
	case s.Config.Duration == nil:
		return "SITUATION MODIFIER: You are completely relaxed. You have nowhere to be. You are patient and willing to let the conversation drift."
	default:
		return "SITUATION MODIFIER: A standard social interaction flow."
	}
}

func (s *Session) emitState(text string) {
	if s.events.OnState != nil {
		s.events.OnState(text)
	}
}

func (s *Session) emitHealth(health game.HealthState) {
	if s.events.OnHealth != nil {
		s.events.OnHealth(health)
	}
}

// fallbackReport 是评估链路失败时的保底产物，分数取当前电量。
func fallbackReport(energy int) game.EvaluationReport {
	return game.EvaluationReport{
		VibeScore:         energy,
		OpenerFeedback:    "N/A",
		ContinuerFeedback: "N/A",
		CloserFeedback:    "N/A",
		CulturalNotes:     "N/A",
		KillerDetection:   []string{},
		OverallSummary:    "Evaluation failed due to network error, but good effort!",
	}
}
