package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/triage-service/internal/api/http"
	"github.com/spec-kit/triage-service/internal/api/http/handlers"
	"github.com/spec-kit/triage-service/internal/auth"
	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/engine"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/llm"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/persistence"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/service"
	"github.com/spec-kit/triage-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	teamRepo := repository.NewCachedTeamRepository(
		repository.NewTeamRepository(pool),
		redis.Client,
		cfg.Engine.RosterCacheTTL(),
		logger,
	)
	taskRepo := repository.NewTaskRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	keywords := engine.DefaultKeywords()
	ruleClassifier := engine.NewRuleClassifier(engine.DefaultRuleClassifierConfig(), keywords)

	var external engine.ExternalClassifier
	if cfg.LLM.APIKey != "" {
		external = llm.NewAnthropicClassifier(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout(),
		}, logger)
	} else {
		logger.Warn("ANTHROPIC_API_KEY not provided; llm_based classification disabled")
	}

	classifier := engine.NewClassificationEngine(engine.DefaultHybridConfig(), ruleClassifier, external, logger)
	assigner := engine.NewAssignmentEngine(engine.DefaultAssignmentConfig(), keywords, logger)

	dispatcher := events.NewInMemoryDispatcher()
	tracker := engine.NewAccuracyTracker()
	metrics := observability.NewMetrics()
	worker.NewStatsWorker(dispatcher, tracker, metrics, logger).Register()

	triageService := service.NewTriageService(service.TriageDependencies{
		Classifier:                    classifier,
		Assigner:                      assigner,
		Features:                      engine.NewFeatureExtractor(keywords),
		TeamRepo:                      teamRepo,
		TaskRepo:                      taskRepo,
		ResultRepo:                    resultRepo,
		Dispatcher:                    dispatcher,
		Logger:                        logger,
		DefaultClassificationStrategy: cfg.Engine.ClassificationStrategy,
		DefaultAssignmentStrategy:     cfg.Engine.AssignmentStrategy,
	})
	teamService := service.NewTeamService(teamRepo)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Triage:         handlers.NewTriageHandler(triageService),
		Teams:          handlers.NewTeamsHandler(teamService),
		Stats:          handlers.NewStatsHandler(tracker, metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
