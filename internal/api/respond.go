package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/courtdesk/causelist/internal/apperrors"
	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/models"
	"github.com/getsentry/sentry-go"
)

// Generic failure messages returned in place of internal errors.
const (
	msgStatesFailed    = "Failed to load states. Please try again."
	msgDistrictsFailed = "Failed to load districts. Please try again."
	msgComplexesFailed = "Failed to load court complexes. Please try again."
	msgCourtsFailed    = "Failed to load courts. Please try again."
	msgGenerateFailed  = "Failed to generate cause list. Please try again."
	msgBulkFailed      = "Failed to generate cause lists. Please try again."
	msgLookupFailed    = "Failed to lookup case. Please try again."
	msgDownloadFailed  = "Failed to download file"
	msgInvalidBody     = "Invalid request body"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.Envelope{Success: false, Error: msg})
}

// fail answers a handler error. Validation errors are returned to the caller
// with status 400; anything else is logged, reported to Sentry and replaced
// by the generic message with status 200.
func fail(w http.ResponseWriter, r *http.Request, err error, generic string) {
	var verr *apperrors.ErrValidation
	if errors.As(err, &verr) {
		writeFailure(w, http.StatusBadRequest, verr.Message)
		return
	}

	logger := config.GetLogger()
	logger.Error().Err(err).Str("path", r.URL.Path).Msg(generic)
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	}
	writeFailure(w, http.StatusOK, generic)
}

// decodeBody reads a JSON request body into v. It writes the 400 response
// itself and returns false when the body is malformed.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		logger := config.GetLogger()
		logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected malformed request body")
		writeFailure(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

// requireFields writes a 400 naming the first empty field.
func requireFields(w http.ResponseWriter, fields ...[2]string) bool {
	for _, f := range fields {
		if f[1] == "" {
			writeFailure(w, http.StatusBadRequest, "Missing required field: "+f[0])
			return false
		}
	}
	return true
}
