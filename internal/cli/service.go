package cli

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quizmaster/internal/app"
	"quizmaster/internal/config"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/llm"
	"quizmaster/internal/infra/memory"
	"quizmaster/internal/infra/opentdb"
	pgstore "quizmaster/internal/infra/postgres"
	redisstore "quizmaster/internal/infra/redis"
)

// buildService wires the authority from configuration. Redis and Postgres
// are optional; without them sessions, banks and profiles live in memory.
func buildService(ctx context.Context, cfg config.Config) (*app.QuizService, func(), error) {
	if err := opentdb.CheckCatalog(cfg.Quiz.Catalog); err != nil {
		return nil, nil, err
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
	}

	var sessions app.SessionRepository = memory.NewSessionStore()
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader()
	var profiles app.ProfileRepository = memory.NewProfileStore()
	if pool != nil {
		loader = pgstore.NewBankStore(pool)
		profiles = pgstore.NewProfileStore(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var banks app.BankRepository
	if redisClient != nil {
		banks = redisstore.NewBankRepository(redisClient, loader, quizTTL)
	} else {
		banks = memory.NewBankRepository(loader, quizTTL)
	}

	trivia := opentdb.NewClient(cfg.OpenTDB.BaseURL, cfg.OpenTDB.Difficulty, config.TTLDuration(cfg.OpenTDB.Timeout, 10*time.Second))

	var assistant app.Assistant
	provider, err := llm.NewProvider(llm.Config{
		Provider: cfg.Assistant.Provider,
		APIKeys:  cfg.Assistant.APIKeys,
		Model:    cfg.Assistant.Model,
		BaseURL:  cfg.Assistant.BaseURL,
	})
	if err != nil {
		log.Printf("assistant disabled: %v", err)
	} else {
		assistant = llm.NewAssistant(provider, cfg.Assistant.SystemPrompt, cfg.Assistant.MaxTokens)
	}

	service := app.NewQuizService(sessions, trivia, banks, profiles, assistant, app.Options{
		QuizSize:  cfg.Quiz.Size,
		Eliminate: eliminateTable(cfg.Hints.Eliminate),
	})
	return service, cleanup, nil
}

func eliminateTable(raw map[int]int) map[domain.Rarity]int {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[domain.Rarity]int, len(raw))
	for r, n := range raw {
		out[domain.Rarity(r)] = n
	}
	return out
}
