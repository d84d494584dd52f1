package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Pickle1024/Yapyap-AI/internal/config"
	"github.com/Pickle1024/Yapyap-AI/internal/handler/scenario"
	"github.com/Pickle1024/Yapyap-AI/internal/handler/session"
	middlewarePkg "github.com/Pickle1024/Yapyap-AI/internal/middleware"
	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
	gamesvc "github.com/Pickle1024/Yapyap-AI/internal/service/game"
	"github.com/Pickle1024/Yapyap-AI/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(scenarios game.ScenarioStore, registry *gamesvc.Registry, turnJudge gamesvc.Judge, evaluator gamesvc.Evaluator, liveCfg config.LiveConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	scenarioHandler := scenario.New(scenarios)
	sessionHandler := session.New(registry, scenarios, turnJudge, evaluator, liveCfg)

	r.Route("/api", func(api chi.Router) {
		api.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		scenarioHandler.RegisterRoutes(api)
		sessionHandler.RegisterRoutes(api)
	})

	return r
}
