package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/config"
	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/infra/memory"
	pgloader "quiz-session-engine/internal/infra/postgres"
	infraredis "quiz-session-engine/internal/infra/redis"
	"quiz-session-engine/internal/logging"
	"quiz-session-engine/internal/metrics"
	transport "quiz-session-engine/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			return runServer(cmd.Context(), cfg, *port, log)
		},
	}
}

func loadConfig(path string) (config.Config, *zap.Logger, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

func runServer(ctx context.Context, cfg config.Config, portFlag string, log *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		loader = pgloader.NewQuizLoader(pool)
	} else {
		log.Warn("postgres not configured, serving the built-in sample quiz")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	var store app.SessionRepository
	if redisClient != nil {
		quizRepo = infraredis.NewQuizRepository(redisClient, loader, quizTTL)
		redisStore := infraredis.NewSessionStore(redisClient, redisTTL, log.Named("mirror"))
		defer redisStore.Close()
		store = redisStore
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
		store = memory.NewSessionStore()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	defaults := app.DefaultLimits()
	limits := app.Limits{
		Countdown:         config.TTLDuration(cfg.Session.Countdown, defaults.Countdown),
		MaxActiveSessions: config.IntOr(cfg.Session.MaxActive, defaults.MaxActiveSessions),
		MaxAutoStart:      config.IntOr(cfg.Session.MaxAutoStart, defaults.MaxAutoStart),
	}
	opts := []app.Option{
		app.WithLogger(log.Named("engine")),
		app.WithMetrics(metrics.New(reg)),
		app.WithLimits(limits),
	}
	if cfg.Session.ExportBaseURL != "" {
		opts = append(opts, app.WithExportBaseURL(cfg.Session.ExportBaseURL))
	}
	engine := app.NewEngine(quizRepo, app.NewRegistry(store, app.NameScope(cfg.Session.NameScope)), opts...)
	defer engine.Close()

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(engine, log.Named("http"), reg),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz session engine", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes backs the server when no postgres is configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:          "quiz-1",
			Name:        "Warm up",
			Description: "A two question demo quiz",
			Questions: []domain.Question{
				{
					ID:       1,
					Text:     "What is 2 + 2?",
					Duration: 20,
					Points:   5,
					Answers: []domain.Answer{
						{ID: 1, Text: "3", Colour: "red"},
						{ID: 2, Text: "4", Colour: "blue", Correct: true},
						{ID: 3, Text: "5", Colour: "green"},
					},
				},
				{
					ID:       2,
					Text:     "Which of these are primes?",
					Duration: 30,
					Points:   10,
					Answers: []domain.Answer{
						{ID: 1, Text: "2", Colour: "red", Correct: true},
						{ID: 2, Text: "4", Colour: "blue"},
						{ID: 3, Text: "7", Colour: "green", Correct: true},
					},
				},
			},
		},
	}
}
