package client

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"

	"github.com/courtdesk/causelist/internal/config"
)

const acceptEncoding = "gzip, br, zstd"

// NewHTTPClient builds the http.Client shared by the API client and the
// court-site scraper: DefaultTransport settings, optional proxy, transparent
// response decompression and the configured timeout (none when empty).
func NewHTTPClient(cfg *config.Config) *http.Client {
	logger := config.GetLogger()

	var timeout time.Duration
	if cfg.ClientTimeout != "" {
		parsed, err := time.ParseDuration(cfg.ClientTimeout)
		if err != nil {
			logger.Warn().Err(err).Str("timeout", cfg.ClientTimeout).Msg("Invalid timeout duration, requests will not time out")
		} else {
			timeout = parsed
		}
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			base.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: newDecompressingTransport(base),
	}
}

// decompressingTransport advertises gzip, brotli and zstd and decodes the
// response body before handing it to the caller.
type decompressingTransport struct {
	next http.RoundTripper
}

func newDecompressingTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &decompressingTransport{next: next}
}

func (t *decompressingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}

	var decoded io.ReadCloser
	switch outermostEncoding(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		decoded = gz
	case "br":
		decoded = io.NopCloser(brotli.NewReader(resp.Body))
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		decoded = zr.IOReadCloser()
	default:
		return resp, nil
	}

	resp.Body = &decodedBody{decoded: decoded, raw: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return resp, nil
}

type decodedBody struct {
	decoded io.ReadCloser
	raw     io.ReadCloser
}

func (b *decodedBody) Read(p []byte) (int, error) { return b.decoded.Read(p) }

func (b *decodedBody) Close() error {
	decErr := b.decoded.Close()
	rawErr := b.raw.Close()
	if decErr != nil {
		return decErr
	}
	return rawErr
}

// outermostEncoding returns the last coding of a Content-Encoding list,
// which is the one that must be removed first.
func outermostEncoding(header string) string {
	parts := strings.Split(header, ",")
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
}
