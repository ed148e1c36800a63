package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizmaster/internal/domain"
)

// BankStore loads and saves player-authored question banks as JSONB.
type BankStore struct {
	pool *pgxpool.Pool
}

func NewBankStore(pool *pgxpool.Pool) *BankStore {
	return &BankStore{pool: pool}
}

func (s *BankStore) LoadBank(ctx context.Context, player, category string) ([]domain.StoredQuestion, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT questions FROM categories WHERE owner=$1 AND name=$2`, player, category).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load bank: %w", err)
	}
	var questions []domain.StoredQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal bank: %w", err)
	}
	return questions, nil
}

// SaveBank creates or replaces the player's bank for category.
func (s *BankStore) SaveBank(ctx context.Context, player, category string, questions []domain.StoredQuestion) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO categories (owner, name, questions) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (owner, name) DO UPDATE SET questions = EXCLUDED.questions, updated_at = now()`,
		player, category, string(data))
	if err != nil {
		return fmt.Errorf("save bank: %w", err)
	}
	return nil
}
