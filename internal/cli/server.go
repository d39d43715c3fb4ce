package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"advent-quiz-service/internal/app"
	"advent-quiz-service/internal/config"
	"advent-quiz-service/internal/infra/memory"
	pgstore "advent-quiz-service/internal/infra/postgres"
	redisstore "advent-quiz-service/internal/infra/redis"
	transport "advent-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		db, err := openBun(cfg)
		if err != nil {
			return err
		}
		err = runMigrations(ctx, db)
		db.Close()
		if err != nil {
			return err
		}
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	redisClient := newRedisClient(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	checker, closeChecker, err := buildChecker(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeChecker()

	loader, err := questionLoader(cfg, pool)
	if err != nil {
		return err
	}

	var questions app.QuestionRepository
	var answers app.AnswerRepository
	var store app.SessionRepository
	switch {
	case redisClient != nil:
		questions = redisstore.NewQuestionRepository(redisClient, loader, questionTTL(cfg))
		answers = redisstore.NewAnswerStore(redisClient)
		store = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	default:
		questions = memory.NewQuestionRepository(loader, questionTTL(cfg))
		answers = memory.NewAnswerStore()
		store = memory.NewSessionStore()
	}
	// Postgres is the durable answer record whenever it is configured.
	if pool != nil {
		answers = pgstore.NewAnswerStore(pool)
	}

	service := app.NewQuizService(store, questions, answers, checker, app.WithPointsPerCorrect(cfg.Scoring.PointsPerCorrect))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
