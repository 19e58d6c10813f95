package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/courtdesk/causelist/internal/apperrors"
	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/metrics"
	"github.com/courtdesk/causelist/internal/models"
	"github.com/courtdesk/causelist/internal/source"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// CaseLookup reports whether a case is listed today or tomorrow.
type CaseLookup interface {
	Lookup(ctx context.Context, req models.LookupRequest) (*models.LookupResult, error)
}

// DefaultCaseLookup searches every court of a district for the case.
type DefaultCaseLookup struct {
	src source.Source
	now func() time.Time
}

// NewCaseLookup creates a lookup against src. now supplies the server-local
// "today"; nil means time.Now.
func NewCaseLookup(src source.Source, now func() time.Time) CaseLookup {
	if now == nil {
		now = time.Now
	}
	return &DefaultCaseLookup{src: src, now: now}
}

func (l *DefaultCaseLookup) Lookup(ctx context.Context, req models.LookupRequest) (*models.LookupResult, error) {
	if req.StateCode == "" || req.DistrictCode == "" {
		return nil, apperrors.NewValidationError("Please select state and district")
	}
	if !req.HasIdentifier() {
		return nil, apperrors.NewValidationError("Please enter either CNR or Case Type/Number/Year")
	}

	m := newCaseMatcher(req)
	today := l.now()
	result := &models.LookupResult{
		Today:    l.searchDay(ctx, req, m, today, "today"),
		Tomorrow: l.searchDay(ctx, req, m, today.AddDate(0, 0, 1), "tomorrow"),
	}

	outcome := "not_listed"
	if result.Today.Listed() || result.Tomorrow.Listed() {
		outcome = "listed"
	}
	metrics.CaseLookupsTotal.WithLabelValues(outcome).Inc()
	return result, nil
}

// searchDay never fails: errors are reported inside the day result.
func (l *DefaultCaseLookup) searchDay(ctx context.Context, req models.LookupRequest, m *caseMatcher, day time.Time, label string) *models.DayResult {
	found, err := l.findCase(ctx, req, m, day)
	if err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("day", label).Msg("Error checking cause lists")
		return &models.DayResult{Found: false, Error: err.Error()}
	}
	if found == nil {
		return &models.DayResult{Found: false}
	}
	return found
}

func (l *DefaultCaseLookup) findCase(ctx context.Context, req models.LookupRequest, m *caseMatcher, day time.Time) (*models.DayResult, error) {
	complexes, err := l.src.Complexes(ctx, req.StateCode, req.DistrictCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list court complexes: %w", err)
	}
	for _, cx := range complexes {
		courts, err := l.src.Courts(ctx, req.StateCode, req.DistrictCode, cx.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to list courts of %s: %w", cx.Text, err)
		}
		for _, ct := range courts {
			list, err := l.src.CauseList(ctx, models.CourtRef{
				StateCode:    req.StateCode,
				DistrictCode: req.DistrictCode,
				ComplexCode:  cx.Value,
				CourtCode:    ct.Value,
				CourtName:    ct.Text,
			}, day)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch cause list of %s: %w", ct.Text, err)
			}
			for _, row := range list.Cases {
				if m.matches(row.CaseNo) {
					return &models.DayResult{
						Found:        true,
						Date:         day.Format(models.DateLayout),
						SerialNumber: row.SrNo,
						CaseNumber:   row.CaseNo,
					}, nil
				}
			}
		}
	}
	return nil, nil
}

// caseMatcher compares case numbers after NFKC normalisation and case
// folding.
type caseMatcher struct {
	cnr     string
	pattern string
}

func newCaseMatcher(req models.LookupRequest) *caseMatcher {
	trimmed := models.LookupRequest{
		CaseType:   strings.TrimSpace(req.CaseType),
		CaseNumber: strings.TrimSpace(req.CaseNumber),
		CaseYear:   strings.TrimSpace(req.CaseYear),
	}
	return &caseMatcher{
		cnr:     foldText(strings.TrimSpace(req.CNR)),
		pattern: foldText(trimmed.CasePattern()),
	}
}

func (m *caseMatcher) matches(caseNo string) bool {
	folded := foldText(caseNo)
	if m.cnr != "" && strings.Contains(folded, m.cnr) {
		return true
	}
	return m.pattern != "" && strings.Contains(folded, m.pattern)
}

func foldText(s string) string {
	if s == "" {
		return ""
	}
	return cases.Fold().String(norm.NFKC.String(s))
}
