package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizmaster/internal/domain"
)

// BankLoader fetches a player's authored questions from a backing store.
type BankLoader interface {
	LoadBank(ctx context.Context, player, category string) ([]domain.StoredQuestion, error)
}

// BankRepository caches question banks in Redis and falls back to a loader on cache miss.
// Banks are stored as: SET quiz:bank:{player}:{category} {json}
type BankRepository struct {
	client *redis.Client
	loader BankLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBankRepository(client *redis.Client, loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, player, category string) ([]domain.StoredQuestion, error) {
	key := r.key(player, category)
	if bank, ok := r.cached(ctx, key); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.cached(ctx, key); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadBank(ctx, player, category)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(bank); err == nil {
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.StoredQuestion), nil
}

// Invalidate drops a cached bank, e.g. after the player edits it.
func (r *BankRepository) Invalidate(ctx context.Context, player, category string) error {
	return r.client.Del(ctx, r.key(player, category)).Err()
}

func (r *BankRepository) cached(ctx context.Context, key string) ([]domain.StoredQuestion, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var bank []domain.StoredQuestion
	if err := json.Unmarshal(data, &bank); err != nil || len(bank) == 0 {
		return nil, false
	}
	return bank, true
}

func (r *BankRepository) key(player, category string) string {
	return "quiz:bank:" + player + ":" + category
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
