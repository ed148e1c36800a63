package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizmaster/internal/domain"
)

// BankLoader fetches a player's authored questions from a backing store.
type BankLoader interface {
	LoadBank(ctx context.Context, player, category string) ([]domain.StoredQuestion, error)
}

// BankRepository caches question banks with TTL to avoid repeated DB hits.
type BankRepository struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedBank
}

type cachedBank struct {
	questions []domain.StoredQuestion
	expiresAt time.Time
}

func NewBankRepository(loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedBank),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, player, category string) ([]domain.StoredQuestion, error) {
	key := bankKey(player, category)
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.questions, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.questions, nil
		}
		r.mu.RUnlock()

		questions, err := r.loader.LoadBank(ctx, player, category)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[key] = cachedBank{
			questions: questions,
			expiresAt: now.Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.StoredQuestion), nil
}

// StaticBankLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticBankLoader struct {
	mu    sync.RWMutex
	banks map[string][]domain.StoredQuestion
}

func NewStaticBankLoader() *StaticBankLoader {
	return &StaticBankLoader{banks: make(map[string][]domain.StoredQuestion)}
}

// Put stores a bank for player and category.
func (l *StaticBankLoader) Put(player, category string, questions []domain.StoredQuestion) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.banks[bankKey(player, category)] = questions
}

func (l *StaticBankLoader) LoadBank(_ context.Context, player, category string) ([]domain.StoredQuestion, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if bank, ok := l.banks[bankKey(player, category)]; ok {
		return bank, nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *BankRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func bankKey(player, category string) string {
	return player + "/" + category
}
