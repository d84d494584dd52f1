package session

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Pickle1024/Yapyap-AI/internal/config"
	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
	gamesvc "github.com/Pickle1024/Yapyap-AI/internal/service/game"
	"github.com/Pickle1024/Yapyap-AI/pkg/utils"
)

// Handler 会话生命周期的HTTP处理器
type Handler struct {
	registry  *gamesvc.Registry
	scenarios game.ScenarioStore
	judge     gamesvc.Judge
	evaluator gamesvc.Evaluator
	liveCfg   config.LiveConfig
}

// New 创建会话处理器
func New(registry *gamesvc.Registry, scenarios game.ScenarioStore, turnJudge gamesvc.Judge, evaluator gamesvc.Evaluator, liveCfg config.LiveConfig) *Handler {
	return &Handler{
		registry:  registry,
		scenarios: scenarios,
		judge:     turnJudge,
		evaluator: evaluator,
		liveCfg:   liveCfg,
	}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Get("/sessions/{sessionID}", h.handleGetSession)
	r.Get("/sessions/{sessionID}/report", h.handleGetReport)
	r.Get("/sessions/{sessionID}/ws", h.handleWebSocket)
}

// handleCreateSession 创建会话记录。durationSeconds 为 null 表示禅模式。
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ScenarioID      string `json:"scenarioId"`
		DurationSeconds *int   `json:"durationSeconds"`
	}

	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.ScenarioID == "" {
		utils.RespondError(w, http.StatusBadRequest, "scenarioId is required")
		return
	}

	if payload.DurationSeconds != nil && *payload.DurationSeconds <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "durationSeconds must be positive")
		return
	}

	scenario, ok := h.scenarios.FindByID(payload.ScenarioID)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "scenario not found")
		return
	}

	record, err := h.registry.Create(r.Context(), scenario, payload.DurationSeconds)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, record)
}

// handleGetSession 返回会话记录与当前健康状态
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	record, err := h.lookup(w, r)
	if err != nil {
		return
	}

	resp := map[string]any{
		"id":              record.ID,
		"scenario":        record.Scenario,
		"durationSeconds": record.Duration,
		"createdAt":       record.CreatedAt,
	}
	if record.Session != nil {
		resp["phase"] = record.Session.CurrentPhase()
		resp["health"] = record.Session.Health()
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleGetReport 返回终局评估报告，尚未产出时返回404
func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	record, err := h.lookup(w, r)
	if err != nil {
		return
	}

	if record.Session == nil {
		utils.RespondError(w, http.StatusNotFound, "session not started")
		return
	}

	report, ok := record.Session.Report()
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "report not ready")
		return
	}

	utils.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*gamesvc.Record, error) {
	id := chi.URLParam(r, "sessionID")
	if id == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionID is required")
		return nil, gamesvc.ErrSessionNotFound
	}

	record, err := h.registry.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gamesvc.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
		} else {
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, err
	}
	return record, nil
}
