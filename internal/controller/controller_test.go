package controller

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/courtdesk/causelist/internal/apperrors"
	"github.com/courtdesk/causelist/internal/models"
	"github.com/google/go-cmp/cmp"
)

type call struct {
	Method string
	Args   []string
}

// fakeBackend records every call and answers from its fields. A non-nil gate
// for a method blocks that method until the test sends on it.
type fakeBackend struct {
	mu    sync.Mutex
	calls []call

	states    []models.Option
	districts map[string][]models.Option
	complexes []models.Option
	courts    []models.Option
	download  *models.DownloadResult
	bulk      *models.BulkDownloadResult
	lookup    *models.LookupResult

	errs  map[string]error
	gates map[string]chan struct{}

	lastCauseListReq models.CauseListRequest
	lastLookupReq    models.LookupRequest
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		states: []models.Option{{Value: "17", Text: "Karnataka"}, {Value: "18", Text: "Kerala"}},
		districts: map[string][]models.Option{
			"17": {{Value: "1", Text: "Bengaluru Urban"}, {Value: "2", Text: "Mysuru"}},
			"18": {{Value: "9", Text: "Ernakulam"}},
		},
		complexes: []models.Option{{Value: "C1", Text: "City Civil Court"}},
		courts:    []models.Option{{Value: "7", Text: "Court 7"}, {Value: "8", Text: "Court 8"}},
		download:  &models.DownloadResult{Message: "ok", Filename: "causelist_7_05-03-2024.pdf", CasesFound: 8},
		bulk:      &models.BulkDownloadResult{Message: "Generated 2 PDF cause lists", TotalCases: 3, Files: []string{"a.pdf", "b.pdf"}},
		lookup:    &models.LookupResult{Today: &models.DayResult{Found: true, Date: "05/03/2024", SerialNumber: "12", CaseNumber: "CS/123/2024"}},
		errs:      map[string]error{},
		gates:     map[string]chan struct{}{},
	}
}

func (f *fakeBackend) record(ctx context.Context, method string, args ...string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{Method: method, Args: args})
	gate := f.gates[method]
	err := f.errs[method]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) GetStates(ctx context.Context) ([]models.Option, error) {
	if err := f.record(ctx, "GetStates"); err != nil {
		return nil, err
	}
	return f.states, nil
}

func (f *fakeBackend) GetDistricts(ctx context.Context, state string) ([]models.Option, error) {
	if err := f.record(ctx, "GetDistricts", state); err != nil {
		return nil, err
	}
	return f.districts[state], nil
}

func (f *fakeBackend) GetCourtComplexes(ctx context.Context, state, district string) ([]models.Option, error) {
	if err := f.record(ctx, "GetCourtComplexes", state, district); err != nil {
		return nil, err
	}
	return f.complexes, nil
}

func (f *fakeBackend) GetCourts(ctx context.Context, state, district, complexCode string) ([]models.Option, error) {
	if err := f.record(ctx, "GetCourts", state, district, complexCode); err != nil {
		return nil, err
	}
	return f.courts, nil
}

func (f *fakeBackend) DownloadCauseList(ctx context.Context, req models.CauseListRequest) (*models.DownloadResult, error) {
	f.mu.Lock()
	f.lastCauseListReq = req
	f.mu.Unlock()
	if err := f.record(ctx, "DownloadCauseList"); err != nil {
		return nil, err
	}
	return f.download, nil
}

func (f *fakeBackend) DownloadAllCauseLists(ctx context.Context, req models.CauseListRequest) (*models.BulkDownloadResult, error) {
	f.mu.Lock()
	f.lastCauseListReq = req
	f.mu.Unlock()
	if err := f.record(ctx, "DownloadAllCauseLists"); err != nil {
		return nil, err
	}
	return f.bulk, nil
}

func (f *fakeBackend) LookupCase(ctx context.Context, req models.LookupRequest) (*models.LookupResult, error) {
	f.mu.Lock()
	f.lastLookupReq = req
	f.mu.Unlock()
	if err := f.record(ctx, "LookupCase"); err != nil {
		return nil, err
	}
	return f.lookup, nil
}

var testClock = func() time.Time { return time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC) }

func newTestController(t *testing.T, b *fakeBackend) *Controller {
	t.Helper()
	c := NewWithClock(b, testClock)
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return c
}

// selectThrough selects values[i] at level i, top down.
func selectThrough(t *testing.T, c *Controller, values ...string) {
	t.Helper()
	for i, v := range values {
		if err := c.Select(context.Background(), Level(i), v); err != nil {
			t.Fatalf("Select(%s, %q): %v", Level(i), v, err)
		}
	}
}

func TestInit_PopulatesBothStateLists(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(t, b)
	v := c.Snapshot()

	if diff := cmp.Diff(b.states, v.Main.Selects[LevelState].Options); diff != "" {
		t.Errorf("main states mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(b.states, v.Lookup.State.Options); diff != "" {
		t.Errorf("lookup states mismatch (-want +got):\n%s", diff)
	}
	if v.Main.Date != "2024-03-05" {
		t.Errorf("Expected date to default to today, got %q", v.Main.Date)
	}
	for l := LevelDistrict; l <= LevelCourt; l++ {
		if v.Main.Selects[l].Enabled {
			t.Errorf("%s must start disabled", l)
		}
	}
	if v.Main.Loading || v.Lookup.Loading {
		t.Error("Loading indicators must be hidden after Init")
	}
}

func TestInit_Failures(t *testing.T) {
	b := newFakeBackend()
	b.errs["GetStates"] = apperrors.NewApplicationError("/api/get-states", "Upstream down")
	c := NewWithClock(b, testClock)

	if err := c.Init(context.Background()); err == nil {
		t.Fatal("Expected Init to report the main form failure")
	}
	v := c.Snapshot()
	if v.Main.Result.Banner == nil || v.Main.Result.Banner.Kind != BannerDanger || v.Main.Result.Banner.Message != "Error: Upstream down" {
		t.Errorf("Unexpected main banner %+v", v.Main.Result.Banner)
	}
	if !v.Lookup.Result.Empty() {
		t.Errorf("Lookup state failure must only be logged, got %+v", v.Lookup.Result)
	}
	if len(v.Lookup.State.Options) != 0 {
		t.Error("Lookup states must stay unpopulated")
	}
}

func TestInit_TransportFailureMessage(t *testing.T) {
	b := newFakeBackend()
	b.errs["GetStates"] = apperrors.NewTransportError("/api/get-states", io.ErrUnexpectedEOF)
	c := NewWithClock(b, testClock)
	_ = c.Init(context.Background())

	banner := c.Snapshot().Main.Result.Banner
	if banner == nil || banner.Message != "Error loading states: unexpected EOF" {
		t.Errorf("Unexpected banner %+v", banner)
	}
}

func TestSelect_CascadePopulatesNextLevel(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(t, b)

	selectThrough(t, c, "17")
	v := c.Snapshot()
	if diff := cmp.Diff(b.districts["17"], v.Main.Selects[LevelDistrict].Options); diff != "" {
		t.Errorf("districts mismatch (-want +got):\n%s", diff)
	}
	enabled := []bool{true, true, false, false}
	for l, want := range enabled {
		if got := v.Main.Selects[l].Enabled; got != want {
			t.Errorf("%s enabled=%v, want %v", Level(l), got, want)
		}
	}

	selectThrough(t, c, "17", "1", "C1")
	v = c.Snapshot()
	if !v.Main.Selects[LevelCourt].Enabled || !v.Main.DownloadAllEnabled {
		t.Error("Selecting a complex must enable courts and download all")
	}
	if v.Main.DownloadEnabled {
		t.Error("Single download requires a court")
	}

	if err := c.Select(context.Background(), LevelCourt, "7"); err != nil {
		t.Fatalf("Select court: %v", err)
	}
	v = c.Snapshot()
	if !v.Main.DownloadEnabled || !v.Main.DownloadAllEnabled {
		t.Error("Selecting a court must enable both downloads")
	}

	b.mu.Lock()
	last := b.calls[len(b.calls)-1]
	b.mu.Unlock()
	want := call{Method: "GetCourts", Args: []string{"17", "1", "C1"}}
	if diff := cmp.Diff(want, last); diff != "" {
		t.Errorf("Last backend call mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_UpstreamResetClearsDownstream(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(t, b)
	selectThrough(t, c, "17", "1", "C1", "7")

	calls := b.callCount()
	if err := c.Select(context.Background(), LevelState, ""); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if b.callCount() != calls {
		t.Error("Empty value must not issue a request")
	}

	v := c.Snapshot()
	for l := LevelDistrict; l <= LevelCourt; l++ {
		s := v.Main.Selects[l]
		if s.Enabled || s.Value != "" || len(s.Options) != 0 {
			t.Errorf("%s not reset: %+v", l, s)
		}
	}
	if v.Main.DownloadEnabled || v.Main.DownloadAllEnabled {
		t.Error("Both downloads must be disabled after an upstream reset")
	}
}

func TestSelect_SingleDistrictScenario(t *testing.T) {
	b := newFakeBackend()
	b.districts["17"] = []models.Option{{Value: "5", Text: "Only District"}}
	c := newTestController(t, b)

	selectThrough(t, c, "17")
	s := c.Snapshot().Main.Selects[LevelDistrict]
	if len(s.Options) != 1 || s.Options[0].Text != "Only District" || !s.Enabled {
		t.Errorf("Unexpected district select %+v", s)
	}
	if s.Value != "" {
		t.Error("The single district must not be auto-selected")
	}
}

func TestSelect_ApplicationErrorBanner(t *testing.T) {
	b := newFakeBackend()
	b.errs["GetCourtComplexes"] = apperrors.NewApplicationError("/api/get-court-complexes", "District <b>closed</b>")
	c := newTestController(t, b)

	selectThrough(t, c, "17")
	if err := c.Select(context.Background(), LevelDistrict, "1"); err == nil {
		t.Fatal("Expected error")
	}
	v := c.Snapshot()
	if v.Main.Result.Banner == nil || !strings.Contains(v.Main.Result.Banner.Message, "District <b>closed</b>") {
		t.Errorf("Expected danger banner with server text, got %+v", v.Main.Result.Banner)
	}
	if v.Main.Selects[LevelComplex].Enabled {
		t.Error("Complex select must stay disabled after a failed fetch")
	}
}

func TestSelect_StaleResponseDiscarded(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(t, b)

	gate := make(chan struct{})
	b.mu.Lock()
	b.gates["GetDistricts"] = gate
	b.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- c.Select(context.Background(), LevelState, "17") }()

	// Wait until the first request is in flight.
	for b.callCount() < 3 {
		time.Sleep(time.Millisecond)
	}
	if !c.Snapshot().Main.Loading {
		t.Error("Expected loading indicator while the request is in flight")
	}

	b.mu.Lock()
	delete(b.gates, "GetDistricts")
	b.mu.Unlock()
	if err := c.Select(context.Background(), LevelState, "18"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("stale Select: %v", err)
	}

	v := c.Snapshot()
	if diff := cmp.Diff(b.districts["18"], v.Main.Selects[LevelDistrict].Options); diff != "" {
		t.Errorf("Stale response overwrote the newer one (-want +got):\n%s", diff)
	}
	if v.Main.Loading {
		t.Error("Loading must be hidden once all requests finished")
	}
}

func TestDownload_Validation(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		single bool
		want   string
	}{
		{"single without court", []string{"17", "1", "C1"}, true, MsgSelectCourt},
		{"single without complex", []string{"17", "1"}, true, MsgSelectCourt},
		{"bulk without complex", []string{"17", "1"}, false, MsgSelectComplex},
		{"bulk without anything", nil, false, MsgSelectComplex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			c := newTestController(t, b)
			selectThrough(t, c, tt.values...)
			calls := b.callCount()

			var err error
			if tt.single {
				err = c.Download(context.Background())
			} else {
				err = c.DownloadAll(context.Background())
			}

			if !errors.Is(err, &apperrors.ErrValidation{}) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if b.callCount() != calls {
				t.Error("Validation failure must not call the backend")
			}
			banner := c.Snapshot().Main.Result.Banner
			if banner == nil || banner.Kind != BannerWarning || banner.Message != tt.want {
				t.Errorf("Unexpected banner %+v", banner)
			}
		})
	}
}

func TestDownload_Success(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(t, b)
	selectThrough(t, c, "17", "1", "C1", "7")
	if err := c.SetDate("2024-12-25"); err != nil {
		t.Fatalf("SetDate: %v", err)
	}

	if err := c.Download(context.Background()); err != nil {
		t.Fatalf("Download: %v", err)
	}

	want := models.CauseListRequest{StateCode: "17", DistrictCode: "1", ComplexCode: "C1", CourtCode: "7", Date: "25/12/2024"}
	if diff := cmp.Diff(want, b.lastCauseListReq); diff != "" {
		t.Errorf("Request mismatch (-want +got):\n%s", diff)
	}
	v := c.Snapshot()
	if v.Main.Result.Download == nil || v.Main.Result.Download.Filename != b.download.Filename {
		t.Errorf("Expected download panel, got %+v", v.Main.Result)
	}
}

func TestDownloadAll_IgnoresCourtAndSendsDate(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(t, b)
	selectThrough(t, c, "17", "1", "C1", "7")

	if err := c.DownloadAll(context.Background()); err != nil {
		t.Fatalf("DownloadAll: %v", err)
	}
	if b.lastCauseListReq.CourtCode != "" {
		t.Errorf("Bulk request must not carry a court, got %q", b.lastCauseListReq.CourtCode)
	}
	if b.lastCauseListReq.Date != "05/03/2024" {
		t.Errorf("Expected DD/MM/YYYY date, got %q", b.lastCauseListReq.Date)
	}
	if bulk := c.Snapshot().Main.Result.Bulk; bulk == nil || len(bulk.Files) != 2 {
		t.Errorf("Expected bulk panel, got %+v", bulk)
	}
}

func TestDownload_ErrorBanners(t *testing.T) {
	tests := []struct {
		name   string
		method string
		run    func(*Controller, context.Context) error
		err    error
		want   string
	}{
		{
			name:   "download application",
			method: "DownloadCauseList",
			run:    (*Controller).Download,
			err:    apperrors.NewApplicationError("/api/download-causelist", "Failed to generate cause list. Please try again."),
			want:   "Error: Failed to generate cause list. Please try again.",
		},
		{
			name:   "download transport",
			method: "DownloadCauseList",
			run:    (*Controller).Download,
			err:    apperrors.NewTransportError("/api/download-causelist", errors.New("connection refused")),
			want:   "Error: connection refused",
		},
		{
			name:   "download all application",
			method: "DownloadAllCauseLists",
			run:    (*Controller).DownloadAll,
			err:    apperrors.NewApplicationError("/api/download-all-causelists", "No courts found for this complex"),
			want:   "Error: No courts found for this complex",
		},
		{
			name:   "download all transport",
			method: "DownloadAllCauseLists",
			run:    (*Controller).DownloadAll,
			err:    apperrors.NewTransportError("/api/download-all-causelists", errors.New("connection reset by peer")),
			want:   "Error: connection reset by peer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			b.errs[tt.method] = tt.err
			c := newTestController(t, b)
			selectThrough(t, c, "17", "1", "C1", "7")

			if err := tt.run(c, context.Background()); err == nil {
				t.Fatal("Expected error")
			}
			v := c.Snapshot()
			if v.Main.Result.Banner == nil || v.Main.Result.Banner.Kind != BannerDanger || v.Main.Result.Banner.Message != tt.want {
				t.Errorf("Unexpected banner %+v", v.Main.Result.Banner)
			}
			if v.Main.Result.Download != nil || v.Main.Result.Bulk != nil {
				t.Error("A failed action must not show a result")
			}
			if v.Main.Loading {
				t.Error("Loading must be hidden after the response")
			}
		})
	}
}

func TestSetDate_RejectsInvalid(t *testing.T) {
	c := newTestController(t, newFakeBackend())
	if err := c.SetDate("05/03/2024"); !errors.Is(err, &apperrors.ErrValidation{}) {
		t.Fatalf("Expected validation error for non-ISO date, got %v", err)
	}
	v := c.Snapshot()
	if v.Main.Date != "2024-03-05" {
		t.Error("Invalid date must not replace the current one")
	}
	if b := v.Main.Result.Banner; b == nil || b.Kind != BannerWarning || b.Message != MsgInvalidDate {
		t.Errorf("Unexpected banner %+v", b)
	}

	if err := c.SetDate("2024-03-06"); err != nil {
		t.Fatalf("SetDate: %v", err)
	}
	v = c.Snapshot()
	if v.Main.Date != "2024-03-06" {
		t.Errorf("Date = %q", v.Main.Date)
	}
	if !v.Main.Result.Empty() {
		t.Errorf("A valid date must clear the warning, got %+v", v.Main.Result)
	}
}

func TestLookup_ValidationWithoutCalls(t *testing.T) {
	tests := []struct {
		name     string
		state    string
		district string
		fields   [4]string
		want     string
	}{
		{"no state", "", "", [4]string{"KAHC01", "", "", ""}, MsgSelectDistrict},
		{"no district", "17", "", [4]string{"KAHC01", "", "", ""}, MsgSelectDistrict},
		{"partial triple", "17", "1", [4]string{"", "CS", "123", ""}, MsgLookupIdentifier},
		{"whitespace only", "17", "1", [4]string{"   ", " ", " ", " "}, MsgLookupIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			c := newTestController(t, b)
			if tt.state != "" {
				if err := c.SelectLookupState(context.Background(), tt.state); err != nil {
					t.Fatalf("SelectLookupState: %v", err)
				}
			}
			c.SelectLookupDistrict(tt.district)
			c.SetLookupFields(tt.fields[0], tt.fields[1], tt.fields[2], tt.fields[3])
			calls := b.callCount()

			if err := c.Lookup(context.Background()); !errors.Is(err, &apperrors.ErrValidation{}) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if b.callCount() != calls {
				t.Error("Validation failure must not call the backend")
			}
			banner := c.Snapshot().Lookup.Result.Banner
			if banner == nil || banner.Kind != BannerWarning || banner.Message != tt.want {
				t.Errorf("Unexpected banner %+v", banner)
			}
		})
	}
}

func TestLookup_ErrorBanners(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"application", apperrors.NewApplicationError("/api/lookup-case", "Lookup failed. Please try again."), "Error: Lookup failed. Please try again."},
		{"transport", apperrors.NewTransportError("/api/lookup-case", errors.New("connection refused")), "Error: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			b.errs["LookupCase"] = tt.err
			c := newTestController(t, b)
			if err := c.SelectLookupState(context.Background(), "17"); err != nil {
				t.Fatalf("SelectLookupState: %v", err)
			}
			c.SelectLookupDistrict("1")
			c.SetLookupFields("KAHC01", "", "", "")

			if err := c.Lookup(context.Background()); err == nil {
				t.Fatal("Expected error")
			}
			v := c.Snapshot()
			banner := v.Lookup.Result.Banner
			if banner == nil || banner.Kind != BannerDanger || banner.Message != tt.want {
				t.Errorf("Unexpected banner %+v", banner)
			}
			if v.Lookup.Result.Lookup != nil {
				t.Error("A failed lookup must not show a result")
			}
			if v.Lookup.Loading {
				t.Error("Loading must be hidden after the response")
			}
			if !v.Main.Result.Empty() {
				t.Error("Lookup errors must stay in the lookup form")
			}
		})
	}
}

func TestLookup_SendsTrimmedRequest(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(t, b)
	if err := c.SelectLookupState(context.Background(), "17"); err != nil {
		t.Fatalf("SelectLookupState: %v", err)
	}
	if !c.Snapshot().Lookup.District.Enabled {
		t.Fatal("Lookup district must be enabled after loading")
	}
	c.SelectLookupDistrict("2")
	c.SetLookupFields("  ", " CS ", "123 ", " 2024")

	if err := c.Lookup(context.Background()); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	want := models.LookupRequest{StateCode: "17", DistrictCode: "2", CaseType: "CS", CaseNumber: "123", CaseYear: "2024"}
	if diff := cmp.Diff(want, b.lastLookupReq); diff != "" {
		t.Errorf("Request mismatch (-want +got):\n%s", diff)
	}
	res := c.Snapshot().Lookup.Result.Lookup
	if res == nil || !res.Today.Listed() || res.Tomorrow.Listed() {
		t.Errorf("Unexpected lookup panel %+v", res)
	}
}

func TestSelectLookupState_ResetsDistrict(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(t, b)
	_ = c.SelectLookupState(context.Background(), "17")
	c.SelectLookupDistrict("1")

	b.errs["GetDistricts"] = apperrors.NewTransportError("/api/get-districts", errors.New("dial tcp: refused"))
	if err := c.SelectLookupState(context.Background(), "18"); err == nil {
		t.Fatal("Expected error")
	}
	v := c.Snapshot().Lookup
	if v.District.Enabled || v.District.Value != "" || len(v.District.Options) != 0 {
		t.Errorf("District not reset: %+v", v.District)
	}
	if v.Result.Banner == nil || v.Result.Banner.Message != "Error loading districts: dial tcp: refused" {
		t.Errorf("Unexpected banner %+v", v.Result.Banner)
	}
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	c := newTestController(t, newFakeBackend())
	v := c.Snapshot()
	v.Main.Selects[LevelState].Options[0].Text = "mutated"

	if c.Snapshot().Main.Selects[LevelState].Options[0].Text == "mutated" {
		t.Error("Snapshot must not share option slices with the controller")
	}
}

func TestParseLevel(t *testing.T) {
	for i, name := range []string{"state", "district", "complex", "court"} {
		l, err := ParseLevel(name)
		if err != nil || l != Level(i) || l.String() != name {
			t.Errorf("ParseLevel(%q) = %v, %v", name, l, err)
		}
	}
	if _, err := ParseLevel("judge"); err == nil {
		t.Error("Expected error for unknown level")
	}
}
