package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
)

// CachedTeamRepository caches per-category rosters in Redis. Writes and load
// changes invalidate the affected roster; cache failures fall through to the
// database.
type CachedTeamRepository struct {
	inner  TeamRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedTeamRepository wraps a TeamRepository with a roster cache. A nil
// client disables caching.
func NewCachedTeamRepository(inner TeamRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedTeamRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedTeamRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

func rosterKey(category domain.Category) string {
	return fmt.Sprintf("roster:%s", category)
}

func (r *CachedTeamRepository) ListActiveByCategory(ctx context.Context, category domain.Category) ([]domain.Team, error) {
	if r.client == nil || r.ttl <= 0 {
		return r.inner.ListActiveByCategory(ctx, category)
	}

	key := rosterKey(category)
	cached, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var teams []domain.Team
		if err := json.Unmarshal(cached, &teams); err == nil {
			return teams, nil
		}
		r.logger.Warn("corrupt roster cache entry", zap.String("key", key))
	} else if err != redis.Nil {
		r.logger.Warn("roster cache read failed", zap.Error(err))
	}

	teams, err := r.inner.ListActiveByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(teams); err == nil {
		if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("roster cache write failed", zap.Error(err))
		}
	}
	return teams, nil
}

func (r *CachedTeamRepository) Create(ctx context.Context, team *domain.Team) error {
	if err := r.inner.Create(ctx, team); err != nil {
		return err
	}
	r.invalidate(ctx, team.Category)
	return nil
}

func (r *CachedTeamRepository) Update(ctx context.Context, team *domain.Team) error {
	if err := r.inner.Update(ctx, team); err != nil {
		return err
	}
	// The category may have changed; drop every roster.
	r.invalidateAll(ctx)
	return nil
}

func (r *CachedTeamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *CachedTeamRepository) List(ctx context.Context) ([]domain.Team, error) {
	return r.inner.List(ctx)
}

func (r *CachedTeamRepository) IncrementLoad(ctx context.Context, id string) error {
	if err := r.inner.IncrementLoad(ctx, id); err != nil {
		return err
	}
	r.invalidateAll(ctx)
	return nil
}

func (r *CachedTeamRepository) DecrementLoad(ctx context.Context, id string) error {
	if err := r.inner.DecrementLoad(ctx, id); err != nil {
		return err
	}
	r.invalidateAll(ctx)
	return nil
}

func (r *CachedTeamRepository) invalidate(ctx context.Context, category domain.Category) {
	if r.client == nil {
		return
	}
	if err := r.client.Del(ctx, rosterKey(category)).Err(); err != nil {
		r.logger.Warn("roster cache invalidation failed", zap.Error(err))
	}
}

func (r *CachedTeamRepository) invalidateAll(ctx context.Context) {
	if r.client == nil {
		return
	}
	keys := make([]string, 0, len(domain.Categories()))
	for _, category := range domain.Categories() {
		keys = append(keys, rosterKey(category))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("roster cache invalidation failed", zap.Error(err))
	}
}
