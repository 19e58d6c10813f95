// Package api serves the JSON endpoints the cause-list forms talk to, plus
// file downloads, health and the OpenAPI document.
package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/courtdesk/causelist/internal/apperrors"
	"github.com/courtdesk/causelist/internal/client"
	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/metrics"
	"github.com/courtdesk/causelist/internal/models"
	"github.com/courtdesk/causelist/internal/services"
	"github.com/courtdesk/causelist/internal/source"
	"github.com/getkin/kin-openapi/openapi3"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
)

// Handler holds the services behind the endpoints.
type Handler struct {
	Source    source.Source
	Generator services.CauseListGenerator
	Lookup    services.CaseLookup
	Store     *services.FileStore
	OpenAPI   *openapi3.T
}

// NewRouter creates a router with the API routes and the shared middleware
// chain (Sentry, metrics, gzip). Other hosts may add routes to it.
func NewRouter(h *Handler) (*mux.Router, error) {
	r := mux.NewRouter()
	r.UseEncodedPath()

	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})
	r.Use(sentryHandler.Handle)
	r.Use(metricsMiddleware)
	gzip, err := gzhttp.NewWrapper()
	if err != nil {
		return nil, fmt.Errorf("gzip middleware: %w", err)
	}
	r.Use(func(next http.Handler) http.Handler { return gzip(next) })

	if err := h.Register(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds the API routes to r.
func (h *Handler) Register(r *mux.Router) error {
	r.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)

	if h.OpenAPI != nil {
		doc, err := openAPIJSON(h.OpenAPI)
		if err != nil {
			return err
		}
		r.HandleFunc("/api/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(doc)
		}).Methods(http.MethodGet)
	}

	r.HandleFunc(client.PathStates, h.GetStatesHandler).Methods(http.MethodGet)
	r.HandleFunc(client.PathDistricts, h.GetDistrictsHandler).Methods(http.MethodPost)
	r.HandleFunc(client.PathComplexes, h.GetCourtComplexesHandler).Methods(http.MethodPost)
	r.HandleFunc(client.PathCourts, h.GetCourtsHandler).Methods(http.MethodPost)
	r.HandleFunc(client.PathDownload, h.DownloadCauseListHandler).Methods(http.MethodPost)
	r.HandleFunc(client.PathDownloadAll, h.DownloadAllCauseListsHandler).Methods(http.MethodPost)
	r.HandleFunc(client.PathLookup, h.LookupCaseHandler).Methods(http.MethodPost)
	r.HandleFunc(client.PathDownloadFile+"{filename}", h.DownloadFileHandler).Methods(http.MethodGet)
	return nil
}

func healthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, `{"alive": true}`)
}

func (h *Handler) GetStatesHandler(w http.ResponseWriter, r *http.Request) {
	states, err := h.Source.States(r.Context())
	if err != nil {
		fail(w, r, err, msgStatesFailed)
		return
	}
	writeJSON(w, http.StatusOK, models.StatesResponse{Envelope: models.Envelope{Success: true}, States: states})
}

func (h *Handler) GetDistrictsHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LocationRequest
	if !decodeBody(w, r, &req) || !requireFields(w, [2]string{"state_code", req.StateCode}) {
		return
	}
	districts, err := h.Source.Districts(r.Context(), req.StateCode)
	if err != nil {
		fail(w, r, err, msgDistrictsFailed)
		return
	}
	writeJSON(w, http.StatusOK, models.DistrictsResponse{Envelope: models.Envelope{Success: true}, Districts: districts})
}

func (h *Handler) GetCourtComplexesHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LocationRequest
	if !decodeBody(w, r, &req) || !requireFields(w,
		[2]string{"state_code", req.StateCode},
		[2]string{"district_code", req.DistrictCode},
	) {
		return
	}
	complexes, err := h.Source.Complexes(r.Context(), req.StateCode, req.DistrictCode)
	if err != nil {
		fail(w, r, err, msgComplexesFailed)
		return
	}
	writeJSON(w, http.StatusOK, models.ComplexesResponse{Envelope: models.Envelope{Success: true}, Complexes: complexes})
}

func (h *Handler) GetCourtsHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LocationRequest
	if !decodeBody(w, r, &req) || !requireFields(w,
		[2]string{"state_code", req.StateCode},
		[2]string{"district_code", req.DistrictCode},
		[2]string{"complex_code", req.ComplexCode},
	) {
		return
	}
	courts, err := h.Source.Courts(r.Context(), req.StateCode, req.DistrictCode, req.ComplexCode)
	if err != nil {
		fail(w, r, err, msgCourtsFailed)
		return
	}
	writeJSON(w, http.StatusOK, models.CourtsResponse{Envelope: models.Envelope{Success: true}, Courts: courts})
}

func (h *Handler) DownloadCauseListHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CauseListRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.Generator.Generate(r.Context(), req)
	if err != nil {
		fail(w, r, err, msgGenerateFailed)
		return
	}
	writeJSON(w, http.StatusOK, models.DownloadResponse{Envelope: models.Envelope{Success: true}, DownloadResult: *res})
}

func (h *Handler) DownloadAllCauseListsHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CauseListRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.Generator.GenerateAll(r.Context(), req)
	if err != nil {
		fail(w, r, err, msgBulkFailed)
		return
	}
	writeJSON(w, http.StatusOK, models.BulkDownloadResponse{Envelope: models.Envelope{Success: true}, BulkDownloadResult: *res})
}

func (h *Handler) LookupCaseHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LookupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.Lookup.Lookup(r.Context(), req)
	if err != nil {
		var verr *apperrors.ErrValidation
		if !errors.As(err, &verr) {
			metrics.CaseLookupsTotal.WithLabelValues("error").Inc()
		}
		fail(w, r, err, msgLookupFailed)
		return
	}
	writeJSON(w, http.StatusOK, models.LookupResponse{Envelope: models.Envelope{Success: true}, Results: res})
}

// DownloadFileHandler streams a generated file as an attachment.
func (h *Handler) DownloadFileHandler(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(mux.Vars(r)["filename"])
	if err != nil {
		h.fileFailure(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	f, info, err := h.Store.Open(name)
	if err != nil {
		var invalid *apperrors.ErrInvalidFilename
		switch {
		case errors.As(err, &invalid) && invalid.Reason == apperrors.ReasonFileType:
			h.fileFailure(w, http.StatusBadRequest, "Invalid file type")
		case errors.As(err, &invalid):
			h.fileFailure(w, http.StatusBadRequest, "Invalid filename")
		case errors.Is(err, &apperrors.ErrAccessDenied{}):
			h.fileFailure(w, http.StatusForbidden, "Access denied")
		case errors.Is(err, &apperrors.ErrNotFound{}):
			h.fileFailure(w, http.StatusNotFound, "File not found")
		default:
			logger := config.GetLogger()
			logger.Error().Err(err).Str("file", name).Msg("Error downloading file")
			h.fileFailure(w, http.StatusInternalServerError, msgDownloadFailed)
		}
		return
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	metrics.FilesServedTotal.WithLabelValues(fmt.Sprintf("%dxx", http.StatusOK/100)).Inc()
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (h *Handler) fileFailure(w http.ResponseWriter, status int, msg string) {
	metrics.FilesServedTotal.WithLabelValues(fmt.Sprintf("%dxx", status/100)).Inc()
	writeFailure(w, status, msg)
}
