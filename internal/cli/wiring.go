package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"advent-quiz-service/internal/config"
	"advent-quiz-service/internal/infra/memory"
	pgstore "advent-quiz-service/internal/infra/postgres"
	redisstore "advent-quiz-service/internal/infra/redis"
	"advent-quiz-service/internal/oracle"
	"advent-quiz-service/internal/validation"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// loadRegistry returns the built-in advent table unless validation.rules_file replaces it.
func loadRegistry(cfg config.Config) (*validation.Registry, error) {
	if cfg.Validation.RulesFile == "" {
		return validation.DefaultRegistry(), nil
	}
	log.Printf("loading validation rules from %s", cfg.Validation.RulesFile)
	f, err := os.Open(cfg.Validation.RulesFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rules, err := validation.LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", cfg.Validation.RulesFile, err)
	}
	return validation.NewRegistry(rules)
}

// buildChecker wires the registry and, when enabled, the Gemini judge behind an optional Redis cache.
// The returned closer releases the Gemini client.
func buildChecker(ctx context.Context, cfg config.Config, rdb *redis.Client) (*validation.Checker, func(), error) {
	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, nil, err
	}
	threshold := cfg.Oracle.Threshold
	checkerCfg := validation.CheckerConfig{
		OracleEnabled: cfg.Oracle.Enabled,
		Threshold:     &threshold,
		Timeout:       config.TTLDuration(cfg.Oracle.Timeout, validation.DefaultOracleTimeout),
	}
	if !cfg.Oracle.Enabled {
		return validation.NewChecker(registry, nil, checkerCfg), func() {}, nil
	}

	gemini, err := oracle.NewGemini(ctx, oracle.GeminiConfig{
		APIKey:          cfg.Oracle.APIKey,
		Model:           cfg.Oracle.Model,
		Temperature:     cfg.Oracle.Temperature,
		MaxOutputTokens: cfg.Oracle.MaxOutputTokens,
	})
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := gemini.Close(); err != nil {
			log.Printf("close gemini client: %v", err)
		}
	}

	var judge validation.Oracle = gemini
	if cacheTTL := config.TTLDuration(cfg.Oracle.CacheTTL, 0); rdb != nil && cacheTTL > 0 {
		judge = redisstore.NewOracleCache(rdb, gemini, gemini.Model(), cacheTTL).WithCallTimeout(checkerCfg.Timeout)
	}
	log.Printf("oracle enabled: model=%s threshold=%d rules=%d days", gemini.Model(), cfg.Oracle.Threshold, registry.Len())
	return validation.NewChecker(registry, judge, checkerCfg), closer, nil
}

// questionLoader prefers Postgres, then the YAML seed file, then nothing.
func questionLoader(cfg config.Config, pool *pgxpool.Pool) (memory.QuestionLoader, error) {
	if pool != nil {
		return pgstore.NewQuestionLoader(pool), nil
	}
	if cfg.Questions.SeedFile == "" {
		log.Printf("no question source configured; every day will be missing")
		return memory.NewStaticQuestionLoader(nil), nil
	}
	questions, err := memory.ReadQuestionsFile(cfg.Questions.SeedFile)
	if err != nil {
		return nil, err
	}
	return memory.NewStaticQuestionLoader(questions), nil
}

func questionTTL(cfg config.Config) time.Duration {
	return config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
}
