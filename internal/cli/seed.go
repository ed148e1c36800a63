package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"quizmaster/internal/app"
	"quizmaster/internal/config"
	"quizmaster/internal/domain"
	pgstore "quizmaster/internal/infra/postgres"
	redisstore "quizmaster/internal/infra/redis"
)

type bankFile struct {
	Player    string `yaml:"player"`
	Category  string `yaml:"category"`
	Questions []struct {
		Text    string   `yaml:"text"`
		Choices []string `yaml:"choices"`
		Correct string   `yaml:"correct"`
	} `yaml:"questions"`
}

// NewSeedCategoryCmd stores a player-authored question bank.
func NewSeedCategoryCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-category <file.yaml>",
		Short: "Store an authored question bank in Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, args[0])
		},
	}
}

func readBankFile(path string) (bankFile, []domain.StoredQuestion, error) {
	var f bankFile
	data, err := os.ReadFile(path)
	if err != nil {
		return f, nil, err
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Player == "" || f.Category == "" {
		return f, nil, fmt.Errorf("%s: player and category are required", path)
	}
	questions := make([]domain.StoredQuestion, 0, len(f.Questions))
	for _, q := range f.Questions {
		questions = append(questions, domain.StoredQuestion{Text: q.Text, Choices: q.Choices, Correct: q.Correct})
	}
	return f, questions, nil
}

func runSeed(ctx context.Context, configPath, path string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	f, questions, err := readBankFile(path)
	if err != nil {
		return err
	}
	size := cfg.Quiz.Size
	if size <= 0 {
		size = app.DefaultQuizSize
	}
	if err := app.ValidateBank(questions, size); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := pgstore.NewBankStore(pool)
	if err := store.SaveBank(ctx, f.Player, f.Category, questions); err != nil {
		return err
	}
	log.Printf("stored %d questions in %q for %s", len(questions), f.Category, f.Player)

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer client.Close()
		cache := redisstore.NewBankRepository(client, store, config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute))
		if err := cache.Invalidate(ctx, f.Player, f.Category); err != nil {
			log.Printf("invalidate cached bank: %v", err)
		}
	}
	return nil
}
