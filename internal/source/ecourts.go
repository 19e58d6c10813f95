package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/models"
	"github.com/courtdesk/causelist/internal/parser"
)

// Page identifiers and <select> ids of the court site.
const (
	pageIndex      = "cause_list/index"
	pageDistricts  = "cause_list/fillDistrict"
	pageComplexes  = "cause_list/fillCourtComplex"
	pageCourts     = "cause_list/fillCauseList"
	pageCauseList  = "cause_list/submitCauseList"
	selectState    = "select#sess_state_code"
	selectDistrict = "select#sess_dist_code"
	selectComplex  = "select#court_complex_code"
	selectCourt    = "select#CL_court_no"
)

// statusError is returned for non-200 pages. 5xx and 429 are retried.
type statusError struct {
	Code int
	URL  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("page %s returned status %d", e.URL, e.Code)
}

func (e *statusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// ECourts scrapes an eCourts-style cause-list site. Every page fetch is
// retried with exponential backoff on network errors and retryable statuses.
type ECourts struct {
	baseURL         string
	httpClient      *http.Client
	retry           retrypolicy.RetryPolicy[[]byte]
	stateParser     parser.Parser[models.Option]
	districtParser  parser.Parser[models.Option]
	complexParser   parser.Parser[models.Option]
	courtParser     parser.Parser[models.Option]
	causeListParser parser.Parser[models.CaseEntry]
}

// NewECourts creates a scraper for the site rooted at baseURL.
func NewECourts(baseURL string, httpClient *http.Client) *ECourts {
	return newECourts(baseURL, httpClient, 250*time.Millisecond, 4*time.Second, 3)
}

func newECourts(baseURL string, httpClient *http.Client, minDelay, maxDelay time.Duration, maxRetries int) *ECourts {
	logger := config.GetLogger()
	retry := retrypolicy.NewBuilder[[]byte]().
		HandleIf(func(_ []byte, err error) bool {
			if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false
			}
			var se *statusError
			if errors.As(err, &se) {
				return se.retryable()
			}
			return true
		}).
		WithBackoff(minDelay, maxDelay).
		WithMaxRetries(maxRetries).
		OnRetry(func(e failsafe.ExecutionEvent[[]byte]) {
			logger.Warn().Err(e.LastError()).Int("attempt", e.Attempts()).Msg("Retrying court site request")
		}).
		Build()

	return &ECourts{
		baseURL:         strings.TrimRight(baseURL, "/"),
		httpClient:      httpClient,
		retry:           retry,
		stateParser:     parser.NewOptionParser(selectState),
		districtParser:  parser.NewOptionParser(selectDistrict),
		complexParser:   parser.NewOptionParser(selectComplex),
		courtParser:     parser.NewOptionParser(selectCourt),
		causeListParser: parser.NewCauseListParser(),
	}
}

func (e *ECourts) pageURL(page string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("p", page)
	return e.baseURL + "/?" + params.Encode()
}

func (e *ECourts) fetchOnce(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", config.GetUserAgent())

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{Code: resp.StatusCode, URL: pageURL}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (e *ECourts) fetch(ctx context.Context, page string, params url.Values) ([]byte, error) {
	pageURL := e.pageURL(page, params)
	body, err := failsafe.With(e.retry).WithContext(ctx).Get(func() ([]byte, error) {
		return e.fetchOnce(ctx, pageURL)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", page, err)
	}
	return body, nil
}

func (e *ECourts) options(ctx context.Context, page string, params url.Values, p parser.Parser[models.Option]) ([]models.Option, error) {
	body, err := e.fetch(ctx, page, params)
	if err != nil {
		return nil, err
	}
	return p.ParseHtml(bytes.NewReader(body))
}

func (e *ECourts) States(ctx context.Context) ([]models.Option, error) {
	return e.options(ctx, pageIndex, nil, e.stateParser)
}

func (e *ECourts) Districts(ctx context.Context, stateCode string) ([]models.Option, error) {
	return e.options(ctx, pageDistricts, url.Values{"state_code": {stateCode}}, e.districtParser)
}

func (e *ECourts) Complexes(ctx context.Context, stateCode, districtCode string) ([]models.Option, error) {
	params := url.Values{"state_code": {stateCode}, "dist_code": {districtCode}}
	return e.options(ctx, pageComplexes, params, e.complexParser)
}

func (e *ECourts) Courts(ctx context.Context, stateCode, districtCode, complexCode string) ([]models.Option, error) {
	params := url.Values{
		"state_code":         {stateCode},
		"dist_code":          {districtCode},
		"court_complex_code": {complexCode},
	}
	return e.options(ctx, pageCourts, params, e.courtParser)
}

func (e *ECourts) CauseList(ctx context.Context, court models.CourtRef, date time.Time) (*models.CauseList, error) {
	logger := config.GetLogger()
	params := url.Values{
		"state_code":         {court.StateCode},
		"dist_code":          {court.DistrictCode},
		"court_complex_code": {court.ComplexCode},
		"CL_court_no":        {court.CourtCode},
		"causelist_date":     {date.Format("02-01-2006")},
	}
	body, err := e.fetch(ctx, pageCauseList, params)
	if err != nil {
		return nil, err
	}
	cases, err := e.causeListParser.ParseHtml(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("court", court.CourtCode).
		Str("date", date.Format(models.DateLayout)).
		Int("cases", len(cases)).
		Msg("Scraped cause list")

	return &models.CauseList{
		Date:      date.Format(models.DateLayout),
		CourtCode: court.CourtCode,
		CourtName: court.CourtName,
		Cases:     cases,
	}, nil
}
