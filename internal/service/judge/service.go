package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Pickle1024/Yapyap-AI/internal/analysis/transcript"
	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
)

// ContextLines 是随被评回合一起提交的前文条数上限。
const ContextLines = 3

// Service 对刚完成的单个用户回合请求一次定性裁决。
// 调用是旁路异步的：任何失败都只向上返回错误，由编排器记录并放弃本轮计分。
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService 基于已有的聊天模型编译裁判链。
func NewService(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile judge chain: %w", err)
	}

	return &Service{chain: runnable}, nil
}

// Judge 评估 window 中最后一条用户发言。window 为被评条目加上不超过
// ContextLines 条前文（见 transcript.Window）。
func (s *Service) Judge(ctx context.Context, scenario game.Scenario, window []game.TranscriptEntry) (game.Verdict, error) {
	if len(window) == 0 {
		return game.Verdict{}, fmt.Errorf("judge window is empty")
	}

	query := fmt.Sprintf("SCENARIO: %s\nCONTEXT: %s\n\nTRANSCRIPT:\n%s",
		scenario.Title, scenario.Context, transcript.FormatLines(window))

	msg, err := s.chain.Invoke(ctx, map[string]any{
		"system": game.JudgeInstruction,
		"query":  query,
	})
	if err != nil {
		return game.Verdict{}, fmt.Errorf("judge invoke failed: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return game.Verdict{}, fmt.Errorf("judge returned empty output")
	}

	return parseVerdict(msg.Content)
}

type verdictPayload struct {
	Vibe        string `json:"vibe"`
	Reasoning   string `json:"reasoning"`
	CoachingTip string `json:"coaching_tip"`
}

// parseVerdict 解析大模型返回的 JSON，容忍被包裹在多余文本里的对象。
func parseVerdict(raw string) (game.Verdict, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return game.Verdict{}, err
	}

	payload := verdictPayload{}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return game.Verdict{}, fmt.Errorf("judge output unmarshal failed: %w", err)
	}

	label, ok := game.ParseVibe(strings.TrimSpace(payload.Vibe))
	if !ok {
		return game.Verdict{}, fmt.Errorf("judge returned unknown vibe %q", payload.Vibe)
	}

	return game.Verdict{
		Vibe:        label,
		Reasoning:   strings.TrimSpace(payload.Reasoning),
		CoachingTip: strings.TrimSpace(payload.CoachingTip),
	}, nil
}

func extractJSON(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("missing json object in judge output")
	}
	return trimmed[start : end+1], nil
}
