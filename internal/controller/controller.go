// Package controller holds the state machine behind the cause-list forms:
// the state, district, complex and court cascade, the download actions and
// the case lookup. Hosts (the web UI and the CLI) call its operations and
// draw from Snapshot.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/courtdesk/causelist/internal/apperrors"
	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/models"
)

const isoDate = "2006-01-02"

// Validation messages shown as warning banners. No request is sent when one
// of these is returned.
const (
	MsgSelectCourt      = "Please select all required fields including a court"
	MsgSelectComplex    = "Please select state, district, and court complex"
	MsgSelectDistrict   = "Please select state and district"
	MsgLookupIdentifier = "Please enter either CNR or Case Type/Number/Year"
	MsgInvalidDate      = "Please select a valid date"
)

// Backend is the subset of the API client the controller drives.
type Backend interface {
	GetStates(ctx context.Context) ([]models.Option, error)
	GetDistricts(ctx context.Context, stateCode string) ([]models.Option, error)
	GetCourtComplexes(ctx context.Context, stateCode, districtCode string) ([]models.Option, error)
	GetCourts(ctx context.Context, stateCode, districtCode, complexCode string) ([]models.Option, error)
	DownloadCauseList(ctx context.Context, req models.CauseListRequest) (*models.DownloadResult, error)
	DownloadAllCauseLists(ctx context.Context, req models.CauseListRequest) (*models.BulkDownloadResult, error)
	LookupCase(ctx context.Context, req models.LookupRequest) (*models.LookupResult, error)
}

// Controller is safe for concurrent use. Backend calls run without the lock
// held; every control carries a request token and a response is applied only
// if its token is still current.
type Controller struct {
	mu      sync.Mutex
	backend Backend
	view    View

	// options[l] guards the fetch that populates level l of the main form.
	options        [4]uint64
	mainAction     uint64
	lookupStates   uint64
	lookupDistrict uint64
	lookupAction   uint64

	mainInFlight   int
	lookupInFlight int
}

// New creates a controller with the date defaulted to today.
func New(backend Backend) *Controller {
	return NewWithClock(backend, time.Now)
}

// NewWithClock is New with an explicit clock for the default date.
func NewWithClock(backend Backend, now func() time.Time) *Controller {
	return &Controller{
		backend: backend,
		view:    newView(now().Format(isoDate)),
	}
}

// Snapshot returns a deep copy of the current view.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.clone()
}

// Init loads the state lists of both forms. A failure on the main form is
// shown as a banner; a failure on the lookup form is only logged.
func (c *Controller) Init(ctx context.Context) error {
	err := c.fetchOptions(ctx, LevelState, func(ctx context.Context) ([]models.Option, error) {
		return c.backend.GetStates(ctx)
	})

	c.mu.Lock()
	token := c.nextToken(&c.lookupStates)
	c.mu.Unlock()

	states, lerr := c.backend.GetStates(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.lookupStates {
		return err
	}
	if lerr != nil {
		logger := config.GetLogger()
		logger.Error().Err(lerr).Msg("Error loading states for lookup")
		return err
	}
	c.view.Lookup.State.Options = states
	c.view.Lookup.State.Enabled = true
	return err
}

// Select changes the value at level. Every level below it is cleared and
// disabled, as are both download actions; a non-empty value then loads the
// next level. Choosing a court only enables the single download.
func (c *Controller) Select(ctx context.Context, level Level, value string) error {
	if level < LevelState || level > LevelCourt {
		return fmt.Errorf("unknown level %d", int(level))
	}

	c.mu.Lock()
	form := &c.view.Main
	form.Selects[level].Value = value
	if level == LevelCourt {
		form.DownloadEnabled = value != ""
		c.mu.Unlock()
		return nil
	}
	for l := level + 1; l <= LevelCourt; l++ {
		form.Selects[l] = newSelect(levelPlaceholders[l], false)
		c.options[l]++
	}
	form.DownloadEnabled = false
	form.DownloadAllEnabled = false
	state := form.Selects[LevelState].Value
	district := form.Selects[LevelDistrict].Value
	complexCode := form.Selects[LevelComplex].Value
	c.mu.Unlock()

	if value == "" {
		return nil
	}

	next := level + 1
	return c.fetchOptions(ctx, next, func(ctx context.Context) ([]models.Option, error) {
		switch next {
		case LevelDistrict:
			return c.backend.GetDistricts(ctx, state)
		case LevelComplex:
			return c.backend.GetCourtComplexes(ctx, state, district)
		default:
			return c.backend.GetCourts(ctx, state, district, complexCode)
		}
	})
}

// fetchOptions loads the options of level through fetch and applies them if
// no newer request for that level was issued meanwhile.
func (c *Controller) fetchOptions(ctx context.Context, level Level, fetch func(context.Context) ([]models.Option, error)) error {
	c.mu.Lock()
	token := c.nextToken(&c.options[level])
	c.beginMain()
	c.mu.Unlock()

	opts, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.endMain()
	if token != c.options[level] {
		logger := config.GetLogger()
		logger.Debug().Str("level", level.String()).Msg("Discarding stale options response")
		return nil
	}
	if err != nil {
		c.view.Main.Result = bannerPanel(BannerDanger, errorMessage(err, levelThings[level]))
		return err
	}

	sel := &c.view.Main.Selects[level]
	sel.Options = opts
	sel.Enabled = true
	if level == LevelCourt {
		c.view.Main.DownloadAllEnabled = true
	}
	return nil
}

// SetDate sets the date input from an ISO (YYYY-MM-DD) value.
func (c *Controller) SetDate(iso string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	form := &c.view.Main
	if _, err := time.Parse(isoDate, iso); err != nil {
		form.Result = bannerPanel(BannerWarning, MsgInvalidDate)
		return apperrors.NewValidationError(MsgInvalidDate)
	}
	form.Date = iso
	if b := form.Result.Banner; b != nil && b.Message == MsgInvalidDate {
		form.Result = Panel{}
	}
	return nil
}

// Download generates the cause list of the selected court.
func (c *Controller) Download(ctx context.Context) error {
	c.mu.Lock()
	req, err := c.causeListRequest(true)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	token := c.startMainAction()
	c.mu.Unlock()

	res, err := c.backend.DownloadCauseList(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finishMainAction(token, err, Panel{Download: res})
}

// DownloadAll generates the cause lists of every court in the selected
// complex. The court selection is ignored.
func (c *Controller) DownloadAll(ctx context.Context) error {
	c.mu.Lock()
	req, err := c.causeListRequest(false)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	token := c.startMainAction()
	c.mu.Unlock()

	res, err := c.backend.DownloadAllCauseLists(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finishMainAction(token, err, Panel{Bulk: res})
}

// causeListRequest validates the main form and builds the request body.
// Must be called with c.mu held.
func (c *Controller) causeListRequest(single bool) (models.CauseListRequest, error) {
	form := &c.view.Main
	req := models.CauseListRequest{
		StateCode:    form.Selects[LevelState].Value,
		DistrictCode: form.Selects[LevelDistrict].Value,
		ComplexCode:  form.Selects[LevelComplex].Value,
	}

	msg := MsgSelectComplex
	missing := req.StateCode == "" || req.DistrictCode == "" || req.ComplexCode == ""
	if single {
		msg = MsgSelectCourt
		req.CourtCode = form.Selects[LevelCourt].Value
		missing = missing || req.CourtCode == ""
	}
	if missing {
		form.Result = bannerPanel(BannerWarning, msg)
		return req, apperrors.NewValidationError(msg)
	}

	date, err := time.Parse(isoDate, form.Date)
	if err != nil {
		form.Result = bannerPanel(BannerWarning, MsgInvalidDate)
		return req, apperrors.NewValidationError(MsgInvalidDate)
	}
	req.Date = date.Format(models.DateLayout)
	return req, nil
}

func (c *Controller) startMainAction() uint64 {
	token := c.nextToken(&c.mainAction)
	c.view.Main.Result = Panel{}
	c.beginMain()
	return token
}

func (c *Controller) finishMainAction(token uint64, err error, success Panel) error {
	c.endMain()
	if token != c.mainAction {
		return nil
	}
	if err != nil {
		c.view.Main.Result = bannerPanel(BannerDanger, errorMessage(err, ""))
		return err
	}
	c.view.Main.Result = success
	return nil
}

// SelectLookupState changes the lookup state and reloads its districts.
func (c *Controller) SelectLookupState(ctx context.Context, value string) error {
	c.mu.Lock()
	form := &c.view.Lookup
	form.State.Value = value
	form.District = newSelect(levelPlaceholders[LevelDistrict], false)
	token := c.nextToken(&c.lookupDistrict)
	if value == "" {
		c.mu.Unlock()
		return nil
	}
	c.lookupInFlight++
	form.Loading = true
	c.mu.Unlock()

	districts, err := c.backend.GetDistricts(ctx, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookupInFlight--
	form.Loading = c.lookupInFlight > 0
	if token != c.lookupDistrict {
		return nil
	}
	if err != nil {
		form.Result = bannerPanel(BannerDanger, errorMessage(err, levelThings[LevelDistrict]))
		return err
	}
	form.District.Options = districts
	form.District.Enabled = true
	return nil
}

// SelectLookupDistrict records the lookup district. It issues no request.
func (c *Controller) SelectLookupDistrict(value string) {
	c.mu.Lock()
	c.view.Lookup.District.Value = value
	c.mu.Unlock()
}

// SetLookupFields stores the case identifier inputs, trimmed.
func (c *Controller) SetLookupFields(cnr, caseType, caseNumber, caseYear string) {
	c.mu.Lock()
	form := &c.view.Lookup
	form.CNR = strings.TrimSpace(cnr)
	form.CaseType = strings.TrimSpace(caseType)
	form.CaseNumber = strings.TrimSpace(caseNumber)
	form.CaseYear = strings.TrimSpace(caseYear)
	c.mu.Unlock()
}

// Lookup asks whether the entered case is listed today or tomorrow.
func (c *Controller) Lookup(ctx context.Context) error {
	c.mu.Lock()
	form := &c.view.Lookup
	req := models.LookupRequest{
		StateCode:    form.State.Value,
		DistrictCode: form.District.Value,
		CNR:          form.CNR,
		CaseType:     form.CaseType,
		CaseNumber:   form.CaseNumber,
		CaseYear:     form.CaseYear,
	}
	if req.StateCode == "" || req.DistrictCode == "" {
		form.Result = bannerPanel(BannerWarning, MsgSelectDistrict)
		c.mu.Unlock()
		return apperrors.NewValidationError(MsgSelectDistrict)
	}
	if !req.HasIdentifier() {
		form.Result = bannerPanel(BannerWarning, MsgLookupIdentifier)
		c.mu.Unlock()
		return apperrors.NewValidationError(MsgLookupIdentifier)
	}
	token := c.nextToken(&c.lookupAction)
	form.Result = Panel{}
	c.lookupInFlight++
	form.Loading = true
	c.mu.Unlock()

	res, err := c.backend.LookupCase(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookupInFlight--
	form.Loading = c.lookupInFlight > 0
	if token != c.lookupAction {
		return nil
	}
	if err != nil {
		form.Result = bannerPanel(BannerDanger, errorMessage(err, ""))
		return err
	}
	if res == nil {
		res = &models.LookupResult{}
	}
	form.Result = Panel{Lookup: res}
	return nil
}

func (c *Controller) nextToken(counter *uint64) uint64 {
	*counter++
	return *counter
}

func (c *Controller) beginMain() {
	c.mainInFlight++
	c.view.Main.Loading = true
}

func (c *Controller) endMain() {
	c.mainInFlight--
	c.view.Main.Loading = c.mainInFlight > 0
}

// errorMessage formats a failed request for a danger banner. Application
// errors show the server message; anything else is a transport failure,
// described as "Error loading <thing>" when thing is set.
func errorMessage(err error, thing string) string {
	var app *apperrors.ErrApplication
	if errors.As(err, &app) {
		return "Error: " + app.Message
	}
	if thing != "" {
		return fmt.Sprintf("Error loading %s: %s", thing, err.Error())
	}
	return "Error: " + err.Error()
}
