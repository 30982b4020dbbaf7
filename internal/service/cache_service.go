package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
)

const referenceCachePrefix = "refdata:"

// CacheRepository abstracts the key/value store behind the reference cache.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CacheService caches reference collections per kind. Cache failures never
// surface to callers; they degrade to a live fetch.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCacheService constructs a cache service. A nil repo disables caching.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *CacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger}
}

// Enabled reports whether lookups can hit.
func (s *CacheService) Enabled() bool {
	return s != nil && s.repo != nil
}

func cacheKey(kind models.ReferenceKind) string {
	return referenceCachePrefix + string(kind)
}

// Lookup fills dest with the cached collection and reports a hit.
func (s *CacheService) Lookup(ctx context.Context, kind models.ReferenceKind, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, cacheKey(kind), dest)
	hit := err == nil
	s.metrics.RecordCacheLookup(string(kind), hit, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("reference cache lookup failed", zap.String("kind", string(kind)), zap.Error(err))
	}
	return hit
}

// Store caches a freshly fetched collection.
func (s *CacheService) Store(ctx context.Context, kind models.ReferenceKind, value interface{}) {
	if !s.Enabled() {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, cacheKey(kind), value, s.ttl)
	s.metrics.ObserveCacheWrite(string(kind), time.Since(start))
	if err != nil {
		s.logger.Warn("reference cache store failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}

// Forget drops the cached collections of the given kinds.
func (s *CacheService) Forget(ctx context.Context, kinds ...models.ReferenceKind) {
	if !s.Enabled() || len(kinds) == 0 {
		return
	}
	keys := make([]string, len(kinds))
	for i, kind := range kinds {
		keys[i] = cacheKey(kind)
	}
	if err := s.repo.Delete(ctx, keys...); err != nil {
		s.logger.Warn("reference cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
