package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Pickle1024/Yapyap-AI/internal/config"
	"github.com/Pickle1024/Yapyap-AI/internal/handler"
	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
	"github.com/Pickle1024/Yapyap-AI/internal/service/evaluate"
	gamesvc "github.com/Pickle1024/Yapyap-AI/internal/service/game"
	"github.com/Pickle1024/Yapyap-AI/internal/service/judge"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	scenarioStore := game.NewMemoryScenarioStore(game.Seed())
	registry := gamesvc.NewRegistry()

	// 打分与评估共用同一个聊天模型，凭证缺失时两者一起降级。
	var (
		turnJudge gamesvc.Judge
		evaluator gamesvc.Evaluator
	)
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			log.Println("continuing without scoring - 请检查 Ark 模型相关环境变量")
		} else {
			judgeSvc, err := judge.NewService(ctx, chatModel)
			if err != nil {
				log.Fatalf("failed to build judge chain: %v", err)
			}
			evalSvc, err := evaluate.NewService(ctx, chatModel)
			if err != nil {
				log.Fatalf("failed to build evaluator chain: %v", err)
			}
			turnJudge = judgeSvc
			evaluator = evalSvc
			log.Println("Judge and evaluator services initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，跳过打分与评估功能初始化")
	}

	if cfg.Live.Enabled {
		log.Printf("Live speech link configured model=%s voice=%s", cfg.Live.Model, cfg.Live.Voice)
	} else {
		log.Println("实时语音凭证未配置，会话将无法接通")
	}

	router := handler.NewRouter(scenarioStore, registry, turnJudge, evaluator, cfg.Live)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Yapyap backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
