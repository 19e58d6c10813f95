package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/courtdesk/causelist/internal/apperrors"
	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/metrics"
	"github.com/courtdesk/causelist/internal/models"
	"github.com/courtdesk/causelist/internal/source"
)

// CauseListGenerator produces cause-list files in the output folder.
type CauseListGenerator interface {
	// Generate writes the JSON and PDF cause list of a single court.
	Generate(ctx context.Context, req models.CauseListRequest) (*models.DownloadResult, error)
	// GenerateAll writes cause lists for every court of a complex. Courts
	// that fail are logged and skipped.
	GenerateAll(ctx context.Context, req models.CauseListRequest) (*models.BulkDownloadResult, error)
}

// DefaultCauseListGenerator fetches cause lists from a Source and stores them
// through a FileStore.
type DefaultCauseListGenerator struct {
	src   source.Source
	store *FileStore
	demo  bool
}

// NewCauseListGenerator creates a generator. demo marks result messages as
// demonstration data.
func NewCauseListGenerator(src source.Source, store *FileStore, demo bool) CauseListGenerator {
	return &DefaultCauseListGenerator{src: src, store: store, demo: demo}
}

func (g *DefaultCauseListGenerator) Generate(ctx context.Context, req models.CauseListRequest) (*models.DownloadResult, error) {
	date, err := validateCauseListRequest(req, true)
	if err != nil {
		return nil, err
	}

	court := models.CourtRef{
		StateCode:    req.StateCode,
		DistrictCode: req.DistrictCode,
		ComplexCode:  req.ComplexCode,
		CourtCode:    req.CourtCode,
		CourtName:    g.courtName(ctx, req),
	}
	pdfName, cases, err := g.generateOne(ctx, court, date, g.src.CauseList)
	if err != nil {
		return nil, err
	}

	return &models.DownloadResult{
		Message:    g.withDemoSuffix("Cause list generated successfully"),
		Filename:   pdfName,
		CasesFound: cases,
	}, nil
}

func (g *DefaultCauseListGenerator) GenerateAll(ctx context.Context, req models.CauseListRequest) (*models.BulkDownloadResult, error) {
	date, err := validateCauseListRequest(req, false)
	if err != nil {
		return nil, err
	}

	courts, err := g.src.Courts(ctx, req.StateCode, req.DistrictCode, req.ComplexCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts: %w", err)
	}

	bulkList := func(ctx context.Context, court models.CourtRef, date time.Time) (*models.CauseList, error) {
		return source.BulkCauseList(ctx, g.src, court, date)
	}

	logger := config.GetLogger()
	result := &models.BulkDownloadResult{Files: []string{}}
	for _, c := range courts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		court := models.CourtRef{
			StateCode:    req.StateCode,
			DistrictCode: req.DistrictCode,
			ComplexCode:  req.ComplexCode,
			CourtCode:    c.Value,
			CourtName:    c.Text,
		}
		pdfName, cases, err := g.generateOne(ctx, court, date, bulkList)
		if err != nil {
			logger.Error().Err(err).Str("court", c.Text).Msg("Error processing court, skipping")
			continue
		}
		result.Files = append(result.Files, pdfName)
		result.TotalCases += cases
	}

	result.Message = g.withDemoSuffix(fmt.Sprintf("Generated %d PDF cause lists", len(result.Files)))
	logger.Info().
		Int("files", len(result.Files)).
		Int("totalCases", result.TotalCases).
		Str("complex", req.ComplexCode).
		Msg("Generated cause lists")
	return result, nil
}

type listFetcher func(ctx context.Context, court models.CourtRef, date time.Time) (*models.CauseList, error)

// generateOne writes both files for the list fetch returns and reports the
// PDF name and the number of cases.
func (g *DefaultCauseListGenerator) generateOne(ctx context.Context, court models.CourtRef, date time.Time, fetch listFetcher) (string, int, error) {
	list, err := fetch(ctx, court, date)
	if err != nil {
		metrics.CauseListsGeneratedTotal.WithLabelValues("error").Inc()
		return "", 0, fmt.Errorf("failed to fetch cause list for court %s: %w", court.CourtCode, err)
	}
	if list.CourtName == "" {
		list.CourtName = court.CourtName
	}

	base := fileBaseName(court.CourtCode, date)
	if err := g.store.WriteJSON(base+".json", list); err != nil {
		metrics.CauseListsGeneratedTotal.WithLabelValues("error").Inc()
		return "", 0, err
	}
	pdfName := base + ".pdf"
	if err := g.store.WriteFile(pdfName, func(w io.Writer) error {
		return writeCauseListPDF(w, list)
	}); err != nil {
		metrics.CauseListsGeneratedTotal.WithLabelValues("error").Inc()
		return "", 0, err
	}

	metrics.CauseListsGeneratedTotal.WithLabelValues("success").Inc()
	logger := config.GetLogger()
	logger.Info().Str("file", pdfName).Int("cases", len(list.Cases)).Msg("Generated cause list PDF")
	return pdfName, len(list.Cases), nil
}

// courtName resolves the display name of the requested court, falling back
// to "Court <code>" when the court list is unavailable.
func (g *DefaultCauseListGenerator) courtName(ctx context.Context, req models.CauseListRequest) string {
	courts, err := g.src.Courts(ctx, req.StateCode, req.DistrictCode, req.ComplexCode)
	if err == nil {
		for _, c := range courts {
			if c.Value == req.CourtCode && c.Text != "" {
				return c.Text
			}
		}
	}
	return "Court " + req.CourtCode
}

func (g *DefaultCauseListGenerator) withDemoSuffix(msg string) string {
	if g.demo {
		return msg + " (demonstration data)"
	}
	return msg
}

func validateCauseListRequest(req models.CauseListRequest, needCourt bool) (time.Time, error) {
	if req.StateCode == "" || req.DistrictCode == "" || req.ComplexCode == "" {
		return time.Time{}, apperrors.NewValidationError("Please select state, district, and court complex")
	}
	if needCourt && req.CourtCode == "" {
		return time.Time{}, apperrors.NewValidationError("Please select all required fields including a court")
	}
	date, err := time.ParseInLocation(models.DateLayout, req.Date, time.Local)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("Date must be in DD/MM/YYYY format")
	}
	return date, nil
}

// fileBaseName returns causelist_<court>_<DD-MM-YYYY>; characters outside
// [A-Za-z0-9_-] in the court code are replaced so the name stays a plain
// file name.
func fileBaseName(courtCode string, date time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, courtCode)
	return fmt.Sprintf("causelist_%s_%s", safe, date.Format("02-01-2006"))
}
