package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"advent-quiz-service/internal/app"
	"advent-quiz-service/internal/domain"
	pgstore "advent-quiz-service/internal/infra/postgres"
	pgmigrations "advent-quiz-service/internal/infra/postgres/migrations"
	infraredis "advent-quiz-service/internal/infra/redis"
	"advent-quiz-service/internal/validation"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

type countingOracle struct {
	calls atomic.Int32
}

func (o *countingOracle) Judge(context.Context, string) (string, error) {
	o.calls.Add(1)
	return `{"match":"yes","confidence":93,"reasoning":"gran is Swedish for spruce"}`, nil
}

func TestSubmitAnswerEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuestions(t, ctx, pgURL, sampleQuestions())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	oracle := &countingOracle{}
	advent := validation.AdventRules()
	rules := validation.MustRegistry(map[int]validation.Rule{9: advent[9], 23: advent[23]})
	checker := validation.NewChecker(rules, infraredis.NewOracleCache(redisClient, oracle, "test-model", time.Hour),
		validation.CheckerConfig{OracleEnabled: true})

	questions := infraredis.NewQuestionRepository(redisClient, pgstore.NewQuestionLoader(pool), 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewQuizService(sessionStore, questions, pgstore.NewAnswerStore(pool), checker)

	if _, err := service.Join(ctx, "advent", "u1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := service.Join(ctx, "advent", "u2", "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}

	lb, result, err := service.SubmitAnswer(ctx, "advent", "u2", domain.AnswerSubmission{DayNumber: 9, Answer: "ca 108 km/h"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct || result.Awarded != 10 || result.TotalScore != 10 || result.Method != "rule_based" {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(lb.Entries) != 2 || lb.Entries[0].UserID != "u2" {
		t.Fatalf("expected bob leading, got %+v", lb.Entries)
	}

	_, result, err = service.SubmitAnswer(ctx, "advent", "u2", domain.AnswerSubmission{DayNumber: 23, Answer: "röd, lila, grön, gul, rosa"})
	if err != nil {
		t.Fatalf("submit day 23: %v", err)
	}
	if result.Correct || result.CorrectAnswer != "röd, lila, grön, gul, blå" || result.TotalScore != 10 {
		t.Fatalf("expected rejected list answer, got %+v", result)
	}

	// the oracle decides day 3 for both players; the second call is served from the Redis cache
	for _, player := range []string{"u1", "u2"} {
		_, result, err = service.SubmitAnswer(ctx, "advent", player, domain.AnswerSubmission{DayNumber: 3, Answer: "gran"})
		if err != nil {
			t.Fatalf("submit day 3 for %s: %v", player, err)
		}
		if !result.Correct || result.Method != "ai" {
			t.Fatalf("expected ai acceptance, got %+v", result)
		}
	}
	if oracle.calls.Load() != 1 {
		t.Fatalf("expected one oracle call, got %d", oracle.calls.Load())
	}

	if _, _, err := service.SubmitAnswer(ctx, "advent", "u2", domain.AnswerSubmission{DayNumber: 9, Answer: "110"}); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected already answered, got %v", err)
	}

	days, err := service.Answered(ctx, "advent", "u2")
	if err != nil {
		t.Fatalf("answered: %v", err)
	}
	if len(days) != 3 || days[0].Day != 3 || days[1].Day != 9 || days[2].Day != 23 {
		t.Fatalf("unexpected answered days %+v", days)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuestions(t *testing.T, ctx context.Context, dsn string, questions []domain.Question) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	n, err := pgstore.SeedQuestions(ctx, db, questions)
	if err != nil {
		t.Fatalf("seed questions: %v", err)
	}
	if n != len(questions) {
		t.Fatalf("expected %d seeded rows, got %d", len(questions), n)
	}
	// reseeding updates in place
	if _, err := pgstore.SeedQuestions(ctx, db, questions); err != nil {
		t.Fatalf("reseed questions: %v", err)
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{DayNumber: 3, Text: "Which tree is the classic Christmas tree?", CorrectAnswer: "Spruce"},
		{DayNumber: 9, Text: "How fast can a cheetah run (km/h)?", CorrectAnswer: "110 km/h"},
		{DayNumber: 23, Text: "Name the five colours of Färgfemman.", CorrectAnswer: "röd, lila, grön, gul, blå", Images: []string{"fargfemman.jpg"}},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
