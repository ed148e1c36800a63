package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizmaster/internal/domain"
)

// ProfileStore persists cheat-sheet inventories and cumulative stats.
// Profiles are created lazily with zero of every default rarity.
type ProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

func (s *ProfileStore) ensure(ctx context.Context, player string) error {
	rarities := make([]int32, len(domain.DefaultRarities))
	for i, r := range domain.DefaultRarities {
		rarities[i] = int32(r)
	}
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO profiles (player) VALUES ($1) ON CONFLICT DO NOTHING`, player); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO cheat_sheets (player, rarity, quantity)
			SELECT $1, r, 0 FROM unnest($2::int[]) AS r
			ON CONFLICT DO NOTHING`, player, rarities)
		if err != nil {
			return fmt.Errorf("create inventory: %w", err)
		}
		return nil
	})
}

func (s *ProfileStore) Inventory(ctx context.Context, player string) (domain.Inventory, error) {
	if err := s.ensure(ctx, player); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT rarity, quantity FROM cheat_sheets WHERE player=$1`, player)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	inv := make(domain.Inventory)
	for rows.Next() {
		var rarity, quantity int
		if err := rows.Scan(&rarity, &quantity); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		inv[domain.Rarity(rarity)] = quantity
	}
	return inv, rows.Err()
}

func (s *ProfileStore) ApplyInventory(ctx context.Context, player string, delta domain.InventoryDelta) error {
	if err := s.ensure(ctx, player); err != nil {
		return err
	}
	if delta.Delta < 0 {
		tag, err := s.pool.Exec(ctx, `
			UPDATE cheat_sheets SET quantity = quantity + $3
			WHERE player=$1 AND rarity=$2 AND quantity + $3 >= 0`,
			player, int(delta.Rarity), delta.Delta)
		if err != nil {
			return fmt.Errorf("update inventory: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrInsufficientCheatSheets
		}
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO cheat_sheets (player, rarity, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (player, rarity) DO UPDATE SET quantity = cheat_sheets.quantity + EXCLUDED.quantity`,
		player, int(delta.Rarity), delta.Delta)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	return nil
}

func (s *ProfileStore) ApplyStats(ctx context.Context, player string, delta domain.StatsDelta) error {
	if err := s.ensure(ctx, player); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE profiles SET
			quizzes_played = quizzes_played + $2,
			correct_responses = correct_responses + $3,
			perfect_marks = perfect_marks + $4,
			cheat_sheets_used = cheat_sheets_used + $5
		WHERE player=$1`,
		player, delta.QuizzesPlayed, delta.CorrectResponses, delta.PerfectMarks, delta.CheatSheetsUsed)
	if err != nil {
		return fmt.Errorf("update stats: %w", err)
	}
	return nil
}

func (s *ProfileStore) Stats(ctx context.Context, player string) (domain.Stats, error) {
	if err := s.ensure(ctx, player); err != nil {
		return domain.Stats{}, err
	}
	var st domain.Stats
	err := s.pool.QueryRow(ctx, `
		SELECT quizzes_played, correct_responses, perfect_marks, cheat_sheets_used
		FROM profiles WHERE player=$1`, player).
		Scan(&st.QuizzesPlayed, &st.CorrectResponses, &st.PerfectMarks, &st.CheatSheetsUsed)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return st, nil
}
