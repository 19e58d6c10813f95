package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/models"
)

// OptionParser extracts the entries of a <select> element. Placeholder
// entries (empty value, or a value of "0" with a "Select ..." label) are skipped.
type OptionParser struct {
	selector string
}

// NewOptionParser creates a parser for the <select> matched by selector,
// e.g. "select#sess_state_code".
func NewOptionParser(selector string) *OptionParser {
	return &OptionParser{selector: selector}
}

// ParseHtml implements Parser[models.Option].
func (p *OptionParser) ParseHtml(body io.Reader) ([]models.Option, error) {
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

	sel := doc.Find(p.selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("select %q not found in page", p.selector)
	}

	options := make([]models.Option, 0)
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		value := strings.TrimSpace(opt.AttrOr("value", ""))
		text := collapseSpace(opt.Text())
		if isPlaceholder(value, text) {
			return
		}
		options = append(options, models.Option{Value: value, Text: text})
	})

	logger.Debug().Str("selector", p.selector).Int("count", len(options)).Msg("Parsed select options")
	return options, nil
}

func isPlaceholder(value, text string) bool {
	if value == "" {
		return true
	}
	return value == "0" && strings.HasPrefix(strings.ToLower(text), "select")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
