// Package web serves the HTML forms. Every browser session drives its own
// controller; form posts run one controller operation and redirect back to
// the page.
package web

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/courtdesk/causelist/internal/apperrors"
	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/controller"
	"github.com/courtdesk/causelist/internal/render"
	"github.com/gorilla/mux"
)

// UI holds the HTML routes.
type UI struct {
	sessions *Sessions
}

func NewUI(sessions *Sessions) *UI {
	return &UI{sessions: sessions}
}

// Register adds the page and form routes to r.
func (u *UI) Register(r *mux.Router) {
	r.HandleFunc("/", u.PageHandler).Methods(http.MethodGet)

	ui := r.PathPrefix("/ui").Methods(http.MethodPost).Subrouter()
	ui.HandleFunc("/main/select/{level}", u.action(u.selectMain))
	ui.HandleFunc("/main/date", u.action(u.setDate))
	ui.HandleFunc("/main/download", u.action(func(r *http.Request, c *controller.Controller) error {
		return c.Download(r.Context())
	}))
	ui.HandleFunc("/main/download-all", u.action(func(r *http.Request, c *controller.Controller) error {
		return c.DownloadAll(r.Context())
	}))
	ui.HandleFunc("/lookup/state", u.action(func(r *http.Request, c *controller.Controller) error {
		return c.SelectLookupState(r.Context(), r.PostFormValue("value"))
	}))
	ui.HandleFunc("/lookup/submit", u.action(u.submitLookup))
}

// session returns the caller's controller, loading the state lists on first
// use.
func (u *UI) session(w http.ResponseWriter, r *http.Request) *controller.Controller {
	ctrl, created := u.sessions.Get(w, r)
	if created {
		// Failures end up in the view as a banner.
		_ = ctrl.Init(r.Context())
	}
	return ctrl
}

func (u *UI) PageHandler(w http.ResponseWriter, r *http.Request) {
	ctrl := u.session(w, r)

	var buf bytes.Buffer
	if err := render.Page(&buf, ctrl.Snapshot()); err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Msg("Failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// action wraps a form operation. The outcome is recorded in the controller's
// view, so every post redirects to the page.
func (u *UI) action(op func(*http.Request, *controller.Controller) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := u.session(w, r)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}
		if err := op(r, ctrl); err != nil {
			logger := config.GetLogger()
			var verr *apperrors.ErrValidation
			if errors.As(err, &verr) {
				logger.Debug().Str("path", r.URL.Path).Str("reason", verr.Message).Msg("Form rejected")
			} else {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Form action failed")
			}
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (u *UI) selectMain(r *http.Request, c *controller.Controller) error {
	level, err := controller.ParseLevel(mux.Vars(r)["level"])
	if err != nil {
		return err
	}
	return c.Select(r.Context(), level, r.PostFormValue("value"))
}

func (u *UI) setDate(r *http.Request, c *controller.Controller) error {
	return c.SetDate(r.PostFormValue("date"))
}

func (u *UI) submitLookup(r *http.Request, c *controller.Controller) error {
	c.SelectLookupDistrict(r.PostFormValue("district"))
	c.SetLookupFields(
		r.PostFormValue("cnr"),
		r.PostFormValue("case_type"),
		r.PostFormValue("case_number"),
		r.PostFormValue("case_year"),
	)
	return c.Lookup(r.Context())
}
