package scenario

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
	"github.com/Pickle1024/Yapyap-AI/pkg/utils"
)

// Handler 场景目录的HTTP处理器
type Handler struct {
	scenarios game.ScenarioStore
}

// New 创建场景处理器
func New(scenarios game.ScenarioStore) *Handler {
	return &Handler{
		scenarios: scenarios,
	}
}

// RegisterRoutes 注册场景相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/scenarios", h.handleListScenarios)
	r.Get("/scenarios/{scenarioID}", h.handleGetScenario)
}

// handleListScenarios 列出全部训练场景
func (h *Handler) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.scenarios.List())
}

// handleGetScenario 按ID返回单个场景
func (h *Handler) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "scenarioID")
	scenario, ok := h.scenarios.FindByID(id)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "scenario not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, scenario)
}
