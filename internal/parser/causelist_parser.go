package parser

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"

	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/models"
)

// CauseListParser reads the rows of the first table on a cause-list page.
// Expected columns: | Sr. No. | Case No. | Party Name | Purpose |.
// Rows with fewer than two cells (headers, section captions) are skipped.
type CauseListParser struct{}

func NewCauseListParser() *CauseListParser {
	return &CauseListParser{}
}

// ParseHtml implements Parser[models.CaseEntry].
func (p *CauseListParser) ParseHtml(body io.Reader) ([]models.CaseEntry, error) {
	logger := config.GetLogger()

	utf8Body, err := NewUTF8Reader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse HTML document")
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		logger.Debug().Msg("No cause-list table on page")
		return []models.CaseEntry{}, nil
	}

	cases := make([]models.CaseEntry, 0)
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		tds := row.Find("td")
		if tds.Length() < 2 {
			return
		}
		entry := models.CaseEntry{
			SrNo:   collapseSpace(tds.Eq(0).Text()),
			CaseNo: collapseSpace(tds.Eq(1).Text()),
		}
		if tds.Length() > 2 {
			entry.PartyName = collapseSpace(tds.Eq(2).Text())
		}
		if tds.Length() > 3 {
			entry.Purpose = collapseSpace(tds.Eq(3).Text())
		}
		if entry.CaseNo == "" {
			logger.Debug().Int("row", i).Msg("Skipping row without case number")
			return
		}
		cases = append(cases, entry)
	})

	logger.Debug().Int("cases", len(cases)).Msg("Parsed cause list table")
	return cases, nil
}
