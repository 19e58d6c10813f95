package services

import (
	"context"
	"errors"
	"time"

	"github.com/courtdesk/causelist/internal/models"
	"github.com/courtdesk/causelist/internal/source"
)

// stubSource serves the demo hierarchy with per-court cause lists and
// optional failures.
type stubSource struct {
	*source.Demo
	lists       map[string][]models.CaseEntry // keyed by court code
	failCourts  map[string]bool
	failCourtsL bool
	failDate    time.Time
}

func newStubSource() *stubSource {
	return &stubSource{
		Demo:       source.NewDemo(),
		lists:      map[string][]models.CaseEntry{},
		failCourts: map[string]bool{},
	}
}

func (s *stubSource) Courts(ctx context.Context, state, district, complexCode string) ([]models.Option, error) {
	if s.failCourtsL {
		return nil, errors.New("court list unavailable")
	}
	return s.Demo.Courts(ctx, state, district, complexCode)
}

func (s *stubSource) CauseList(_ context.Context, court models.CourtRef, date time.Time) (*models.CauseList, error) {
	if s.failCourts[court.CourtCode] {
		return nil, errors.New("court site returned 503")
	}
	if !s.failDate.IsZero() && sameDay(date, s.failDate) {
		return nil, errors.New("cause list not published")
	}
	return &models.CauseList{
		Date:      date.Format(models.DateLayout),
		CourtCode: court.CourtCode,
		CourtName: court.CourtName,
		Cases:     append([]models.CaseEntry(nil), s.lists[court.CourtCode]...),
	}, nil
}

// BulkCauseList keeps bulk runs on the stubbed lists instead of the demo
// bulk rows.
func (s *stubSource) BulkCauseList(ctx context.Context, court models.CourtRef, date time.Time) (*models.CauseList, error) {
	return s.CauseList(ctx, court, date)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
