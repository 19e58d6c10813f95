// Package source provides the cascade option lists and daily cause lists
// that the API serves.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/courtdesk/causelist/internal/cache"
	"github.com/courtdesk/causelist/internal/client"
	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/models"
)

// Source supplies the court hierarchy and published cause lists.
type Source interface {
	States(ctx context.Context) ([]models.Option, error)
	Districts(ctx context.Context, stateCode string) ([]models.Option, error)
	Complexes(ctx context.Context, stateCode, districtCode string) ([]models.Option, error)
	Courts(ctx context.Context, stateCode, districtCode, complexCode string) ([]models.Option, error)
	CauseList(ctx context.Context, court models.CourtRef, date time.Time) (*models.CauseList, error)
}

// BulkSource is implemented by sources that publish a different list when
// every court of a complex is generated in one run.
type BulkSource interface {
	BulkCauseList(ctx context.Context, court models.CourtRef, date time.Time) (*models.CauseList, error)
}

// BulkCauseList returns the list src publishes for court in a bulk run.
// Sources without a bulk variant serve their regular cause list.
func BulkCauseList(ctx context.Context, src Source, court models.CourtRef, date time.Time) (*models.CauseList, error) {
	if b, ok := src.(BulkSource); ok {
		return b.BulkCauseList(ctx, court, date)
	}
	return src.CauseList(ctx, court, date)
}

// New builds the source named by cfg.Source, wrapped with c when c is non-nil.
func New(cfg *config.Config, c cache.Cache) (Source, error) {
	var src Source
	switch cfg.Source {
	case "", "demo":
		src = NewDemo()
	case "ecourts":
		src = NewECourts(cfg.ECourtsDomain, client.NewHTTPClient(cfg))
	default:
		return nil, fmt.Errorf("unknown cause-list source %q", cfg.Source)
	}
	if c == nil {
		return src, nil
	}
	return NewCached(src, c), nil
}
