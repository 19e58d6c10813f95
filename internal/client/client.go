package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/courtdesk/causelist/internal/apperrors"
	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/models"
)

// API paths, relative to the base URL.
const (
	PathStates       = "/api/get-states"
	PathDistricts    = "/api/get-districts"
	PathComplexes    = "/api/get-court-complexes"
	PathCourts       = "/api/get-courts"
	PathDownload     = "/api/download-causelist"
	PathDownloadAll  = "/api/download-all-causelists"
	PathLookup       = "/api/lookup-case"
	PathDownloadFile = "/api/download-file/"
)

// Client talks to the cause-list REST API. Every method issues exactly one
// request; failures are returned as *apperrors.ErrApplication when the server
// answered success=false and *apperrors.ErrTransport otherwise.
type Client interface {
	GetStates(ctx context.Context) ([]models.Option, error)
	GetDistricts(ctx context.Context, stateCode string) ([]models.Option, error)
	GetCourtComplexes(ctx context.Context, stateCode, districtCode string) ([]models.Option, error)
	GetCourts(ctx context.Context, stateCode, districtCode, complexCode string) ([]models.Option, error)
	DownloadCauseList(ctx context.Context, req models.CauseListRequest) (*models.DownloadResult, error)
	DownloadAllCauseLists(ctx context.Context, req models.CauseListRequest) (*models.BulkDownloadResult, error)
	LookupCase(ctx context.Context, req models.LookupRequest) (*models.LookupResult, error)

	// DownloadFile streams a generated file into w and returns the number of bytes written.
	DownloadFile(ctx context.Context, filename string, w io.Writer) (int64, error)
	// FileURL is the absolute download link for a generated file.
	FileURL(filename string) string
}

type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// enveloped is implemented by every response type through the embedded models.Envelope.
type enveloped interface {
	Failure() (string, bool)
}

// NewClient creates an API client for cfg.APIBaseURL.
func NewClient(cfg *config.Config) Client {
	return NewClientWithHTTP(cfg.APIBaseURL, NewHTTPClient(cfg))
}

// NewClientWithHTTP creates an API client using the given http.Client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) Client {
	return &client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  config.GetUserAgent(),
	}
}

func (c *client) FileURL(filename string) string {
	return c.baseURL + PathDownloadFile + url.PathEscape(filename)
}

func (c *client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// call sends one request and decodes the JSON envelope into out. The HTTP
// status is not consulted: like a browser fetch, only a body that fails to
// parse is a transport error.
func (c *client) call(ctx context.Context, method, path string, body any, out enveloped) error {
	logger := config.GetLogger()

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return apperrors.NewTransportError(path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("API request failed")
		return apperrors.NewTransportError(path, fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewTransportError(path, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err))
	}

	if msg, failed := out.Failure(); failed {
		logger.Debug().Str("path", path).Str("error", msg).Msg("API reported failure")
		return apperrors.NewApplicationError(path, msg)
	}
	return nil
}

func (c *client) GetStates(ctx context.Context) ([]models.Option, error) {
	var out models.StatesResponse
	if err := c.call(ctx, http.MethodGet, PathStates, nil, &out); err != nil {
		return nil, err
	}
	return out.States, nil
}

func (c *client) GetDistricts(ctx context.Context, stateCode string) ([]models.Option, error) {
	var out models.DistrictsResponse
	body := models.LocationRequest{StateCode: stateCode}
	if err := c.call(ctx, http.MethodPost, PathDistricts, body, &out); err != nil {
		return nil, err
	}
	return out.Districts, nil
}

func (c *client) GetCourtComplexes(ctx context.Context, stateCode, districtCode string) ([]models.Option, error) {
	var out models.ComplexesResponse
	body := models.LocationRequest{StateCode: stateCode, DistrictCode: districtCode}
	if err := c.call(ctx, http.MethodPost, PathComplexes, body, &out); err != nil {
		return nil, err
	}
	return out.Complexes, nil
}

func (c *client) GetCourts(ctx context.Context, stateCode, districtCode, complexCode string) ([]models.Option, error) {
	var out models.CourtsResponse
	body := models.LocationRequest{StateCode: stateCode, DistrictCode: districtCode, ComplexCode: complexCode}
	if err := c.call(ctx, http.MethodPost, PathCourts, body, &out); err != nil {
		return nil, err
	}
	return out.Courts, nil
}

func (c *client) DownloadCauseList(ctx context.Context, req models.CauseListRequest) (*models.DownloadResult, error) {
	var out models.DownloadResponse
	if err := c.call(ctx, http.MethodPost, PathDownload, req, &out); err != nil {
		return nil, err
	}
	return &out.DownloadResult, nil
}

func (c *client) DownloadAllCauseLists(ctx context.Context, req models.CauseListRequest) (*models.BulkDownloadResult, error) {
	req.CourtCode = ""
	var out models.BulkDownloadResponse
	if err := c.call(ctx, http.MethodPost, PathDownloadAll, req, &out); err != nil {
		return nil, err
	}
	return &out.BulkDownloadResult, nil
}

func (c *client) LookupCase(ctx context.Context, req models.LookupRequest) (*models.LookupResult, error) {
	var out models.LookupResponse
	if err := c.call(ctx, http.MethodPost, PathLookup, req, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		return &models.LookupResult{}, nil
	}
	return out.Results, nil
}

func (c *client) DownloadFile(ctx context.Context, filename string, w io.Writer) (int64, error) {
	path := PathDownloadFile + url.PathEscape(filename)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, apperrors.NewTransportError(path, err)
	}
	req.Header.Del("Accept")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.NewTransportError(path, fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if resp.StatusCode != http.StatusOK || mediaType == "application/json" && resp.Header.Get("Content-Disposition") == "" {
		var env models.Envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return 0, apperrors.NewTransportError(path, fmt.Errorf("download returned status %d", resp.StatusCode))
		}
		msg, _ := env.Failure()
		return 0, apperrors.NewApplicationError(path, msg)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, apperrors.NewTransportError(path, fmt.Errorf("read body: %w", err))
	}
	return n, nil
}
