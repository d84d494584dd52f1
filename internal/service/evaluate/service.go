package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
)

// Service 在会话结束时对整场转写做一次性的结构化评估。
// 失败不终止流程：编排器会用兜底报告替代。
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService 基于已有的聊天模型编译评估链。
func NewService(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{transcript}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile evaluator chain: %w", err)
	}

	return &Service{chain: runnable}, nil
}

// Evaluate 将序列化后的完整转写交给评估模型，返回结构化报告。
func (s *Service) Evaluate(ctx context.Context, scenario game.Scenario, serialized string) (game.EvaluationReport, error) {
	system := fmt.Sprintf("%s\nSCENARIO: %s\n%s", game.EvaluatorInstruction, scenario.Title, game.KnowledgeBase)
	if scenario.EvaluationCriteria != "" {
		system += "\nADDITIONAL CRITERIA: " + scenario.EvaluationCriteria
	}

	msg, err := s.chain.Invoke(ctx, map[string]any{
		"system":     system,
		"transcript": "Evaluate this conversation based on your instructions.\n\n" + serialized,
	})
	if err != nil {
		return game.EvaluationReport{}, fmt.Errorf("evaluator invoke failed: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return game.EvaluationReport{}, fmt.Errorf("evaluator returned empty output")
	}

	return parseReport(msg.Content)
}

// parseReport 解析大模型返回的 JSON，容忍被包裹在多余文本里的对象。
func parseReport(raw string) (game.EvaluationReport, error) {
	trimmed := strings.TrimSpace(raw)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return game.EvaluationReport{}, fmt.Errorf("missing json object in evaluator output")
	}

	report := game.EvaluationReport{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &report); err != nil {
		return game.EvaluationReport{}, fmt.Errorf("evaluator output unmarshal failed: %w", err)
	}

	if report.VibeScore < 0 {
		report.VibeScore = 0
	}
	if report.VibeScore > 100 {
		report.VibeScore = 100
	}
	if report.KillerDetection == nil {
		report.KillerDetection = []string{}
	}
	return report, nil
}
