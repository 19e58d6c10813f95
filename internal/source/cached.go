package source

import (
	"context"
	"strings"
	"time"

	"github.com/courtdesk/causelist/internal/cache"
	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/models"
)

// Cached memoises option lists and cause lists of another Source. Errors are
// never cached.
type Cached struct {
	inner Source
	cache cache.Cache
}

func NewCached(inner Source, c cache.Cache) *Cached {
	return &Cached{inner: inner, cache: c}
}

func cacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}

func cachedOptions(c cache.Cache, key string, load func() ([]models.Option, error)) ([]models.Option, error) {
	if opts, ok := cache.GetJSON[[]models.Option](c, key); ok {
		return opts, nil
	}
	opts, err := load()
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(c, key, opts); err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("key", key).Msg("Failed to cache options")
	}
	return opts, nil
}

func (s *Cached) States(ctx context.Context) ([]models.Option, error) {
	return cachedOptions(s.cache, "states", func() ([]models.Option, error) {
		return s.inner.States(ctx)
	})
}

func (s *Cached) Districts(ctx context.Context, stateCode string) ([]models.Option, error) {
	return cachedOptions(s.cache, cacheKey("districts", stateCode), func() ([]models.Option, error) {
		return s.inner.Districts(ctx, stateCode)
	})
}

func (s *Cached) Complexes(ctx context.Context, stateCode, districtCode string) ([]models.Option, error) {
	return cachedOptions(s.cache, cacheKey("complexes", stateCode, districtCode), func() ([]models.Option, error) {
		return s.inner.Complexes(ctx, stateCode, districtCode)
	})
}

func (s *Cached) Courts(ctx context.Context, stateCode, districtCode, complexCode string) ([]models.Option, error) {
	return cachedOptions(s.cache, cacheKey("courts", stateCode, districtCode, complexCode), func() ([]models.Option, error) {
		return s.inner.Courts(ctx, stateCode, districtCode, complexCode)
	})
}

func (s *Cached) CauseList(ctx context.Context, court models.CourtRef, date time.Time) (*models.CauseList, error) {
	key := cacheKey("causelist", court.StateCode, court.DistrictCode, court.ComplexCode, court.CourtCode, date.Format("2006-01-02"))
	if list, ok := cache.GetJSON[models.CauseList](s.cache, key); ok {
		return &list, nil
	}
	list, err := s.inner.CauseList(ctx, court, date)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(s.cache, key, list); err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("key", key).Msg("Failed to cache cause list")
	}
	return list, nil
}

// BulkCauseList is not memoised when the inner source has its own bulk
// variant.
func (s *Cached) BulkCauseList(ctx context.Context, court models.CourtRef, date time.Time) (*models.CauseList, error) {
	if b, ok := s.inner.(BulkSource); ok {
		return b.BulkCauseList(ctx, court, date)
	}
	return s.CauseList(ctx, court, date)
}
