package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/courtdesk/causelist/internal/cache"
	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/models"
	"github.com/courtdesk/causelist/internal/testutil"
)

func TestDemo_Lists(t *testing.T) {
	d := NewDemo()
	ctx := context.Background()

	states, _ := d.States(ctx)
	if len(states) != 37 || states[16].Text != "Karnataka" {
		t.Fatalf("Unexpected demo states: %d entries", len(states))
	}
	districts, _ := d.Districts(ctx, "17")
	if len(districts) != 5 {
		t.Errorf("Expected 5 districts, got %d", len(districts))
	}
	complexes, _ := d.Complexes(ctx, "17", "1")
	if len(complexes) != 3 {
		t.Errorf("Expected 3 complexes, got %d", len(complexes))
	}
	courts, _ := d.Courts(ctx, "17", "1", "1")
	if len(courts) != 5 {
		t.Errorf("Expected 5 courts, got %d", len(courts))
	}

	// Callers must not be able to mutate the shared lists.
	states[0].Text = "changed"
	again, _ := d.States(ctx)
	if again[0].Text == "changed" {
		t.Error("Demo.States returned a shared slice")
	}
}

func TestDemo_CauseList(t *testing.T) {
	date := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	list, err := NewDemo().CauseList(context.Background(), models.CourtRef{CourtCode: "3"}, date)
	if err != nil {
		t.Fatalf("CauseList: %v", err)
	}
	if list.Date != "05/01/2024" {
		t.Errorf("Expected DD/MM/YYYY date, got %q", list.Date)
	}
	if list.CourtName != "Court 3" {
		t.Errorf("Expected fallback court name, got %q", list.CourtName)
	}
	if len(list.Cases) != 8 {
		t.Errorf("Expected 8 demo cases, got %d", len(list.Cases))
	}
}

func TestDemo_BulkCauseList(t *testing.T) {
	date := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	list, err := BulkCauseList(ctx, NewDemo(), models.CourtRef{CourtCode: "2", CourtName: "Court Two"}, date)
	if err != nil {
		t.Fatalf("BulkCauseList: %v", err)
	}
	want := []string{"CS/102/2024", "CR/202/2024", "FIR/302/2024"}
	if len(list.Cases) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(list.Cases))
	}
	for i, w := range want {
		if list.Cases[i].CaseNo != w {
			t.Errorf("Row %d case = %q, want %q", i, list.Cases[i].CaseNo, w)
		}
	}

	// The cache decorator keeps the bulk variant of the wrapped source.
	mem, err := cache.New("memory", cache.ProviderConfig{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	cached := NewCached(NewDemo(), mem)
	list, err = BulkCauseList(ctx, cached, models.CourtRef{CourtCode: "5"}, date)
	if err != nil {
		t.Fatalf("cached BulkCauseList: %v", err)
	}
	if len(list.Cases) != 3 || list.Cases[0].CaseNo != "CS/105/2024" {
		t.Errorf("Unexpected cached bulk list %+v", list.Cases)
	}
}

func newCourtSite(t *testing.T, failuresBeforeSuccess int32) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= failuresBeforeSuccess {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		q := r.URL.Query()
		switch q.Get("p") {
		case pageIndex:
			_, _ = w.Write([]byte(testutil.GenerateSelectPage("sess_state_code", []models.Option{{Value: "3", Text: "Karnataka"}})))
		case pageDistricts:
			if q.Get("state_code") != "3" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(testutil.GenerateSelectPage("sess_dist_code", []models.Option{{Value: "1", Text: "Bengaluru"}})))
		case pageComplexes:
			_, _ = w.Write([]byte(testutil.GenerateSelectPage("court_complex_code", []models.Option{{Value: "1010", Text: "City Civil Court"}})))
		case pageCourts:
			_, _ = w.Write([]byte(testutil.GenerateSelectPage("CL_court_no", []models.Option{{Value: "7", Text: "Court Hall 7"}})))
		case pageCauseList:
			if q.Get("causelist_date") != "05-01-2024" {
				t.Errorf("Unexpected causelist_date %q", q.Get("causelist_date"))
			}
			_, _ = w.Write([]byte(testutil.GenerateCauseListPage("Court Hall 7", testutil.SampleCases())))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestECourts_Hierarchy(t *testing.T) {
	server, _ := newCourtSite(t, 0)
	src := newECourts(server.URL, server.Client(), time.Millisecond, 5*time.Millisecond, 2)
	ctx := context.Background()

	states, err := src.States(ctx)
	if err != nil {
		t.Fatalf("States: %v", err)
	}
	if diff := cmp.Diff([]models.Option{{Value: "3", Text: "Karnataka"}}, states); diff != "" {
		t.Errorf("states mismatch (-want +got):\n%s", diff)
	}

	districts, err := src.Districts(ctx, "3")
	if err != nil || len(districts) != 1 || districts[0].Text != "Bengaluru" {
		t.Fatalf("Districts: %v %+v", err, districts)
	}
	complexes, err := src.Complexes(ctx, "3", "1")
	if err != nil || len(complexes) != 1 {
		t.Fatalf("Complexes: %v %+v", err, complexes)
	}
	courts, err := src.Courts(ctx, "3", "1", "1010")
	if err != nil || len(courts) != 1 || courts[0].Value != "7" {
		t.Fatalf("Courts: %v %+v", err, courts)
	}

	date := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	list, err := src.CauseList(ctx, models.CourtRef{StateCode: "3", DistrictCode: "1", ComplexCode: "1010", CourtCode: "7", CourtName: "Court Hall 7"}, date)
	if err != nil {
		t.Fatalf("CauseList: %v", err)
	}
	if diff := cmp.Diff(testutil.SampleCases(), list.Cases); diff != "" {
		t.Errorf("cases mismatch (-want +got):\n%s", diff)
	}
	if list.Date != "05/01/2024" || list.CourtName != "Court Hall 7" {
		t.Errorf("Unexpected list header %+v", list)
	}
}

func TestECourts_RetriesServerErrors(t *testing.T) {
	server, calls := newCourtSite(t, 2)
	src := newECourts(server.URL, server.Client(), time.Millisecond, 5*time.Millisecond, 3)

	states, err := src.States(context.Background())
	if err != nil {
		t.Fatalf("States after retries: %v", err)
	}
	if len(states) != 1 {
		t.Errorf("Expected 1 state, got %d", len(states))
	}
	if got := atomic.LoadInt32(calls); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestECourts_DoesNotRetryClientErrors(t *testing.T) {
	server, calls := newCourtSite(t, 0)
	src := newECourts(server.URL, server.Client(), time.Millisecond, 5*time.Millisecond, 3)

	_, err := src.Districts(context.Background(), "unknown")
	if err == nil {
		t.Fatal("Expected error for 400 page")
	}
	var se *statusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		t.Errorf("Expected statusError 400, got %v", err)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Errorf("Expected a single attempt, got %d", got)
	}
}

// countingSource counts calls to the wrapped demo source.
type countingSource struct {
	*Demo
	states     int
	causeLists int
	fail       bool
}

func (c *countingSource) States(ctx context.Context) ([]models.Option, error) {
	c.states++
	if c.fail {
		return nil, errors.New("site down")
	}
	return c.Demo.States(ctx)
}

func (c *countingSource) CauseList(ctx context.Context, court models.CourtRef, date time.Time) (*models.CauseList, error) {
	c.causeLists++
	return c.Demo.CauseList(ctx, court, date)
}

func TestCached_MemoisesSuccessOnly(t *testing.T) {
	mem, err := cache.New("memory", cache.ProviderConfig{Size: 50, TTL: time.Hour})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	inner := &countingSource{Demo: NewDemo(), fail: true}
	src := NewCached(inner, mem)
	ctx := context.Background()

	if _, err := src.States(ctx); err == nil {
		t.Fatal("Expected error from failing inner source")
	}
	inner.fail = false
	for i := 0; i < 3; i++ {
		if _, err := src.States(ctx); err != nil {
			t.Fatalf("States: %v", err)
		}
	}
	if inner.states != 2 {
		t.Errorf("Expected 2 inner calls (1 failure + 1 fill), got %d", inner.states)
	}

	date := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	court := models.CourtRef{StateCode: "1", DistrictCode: "1", ComplexCode: "1", CourtCode: "2"}
	first, _ := src.CauseList(ctx, court, date)
	second, _ := src.CauseList(ctx, court, date)
	if inner.causeLists != 1 {
		t.Errorf("Expected cause list to be cached, inner calls %d", inner.causeLists)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached cause list differs (-first +second):\n%s", diff)
	}
}

func TestNew_SelectsSource(t *testing.T) {
	src, err := New(&config.Config{Source: "demo"}, nil)
	if err != nil {
		t.Fatalf("New demo: %v", err)
	}
	if _, ok := src.(*Demo); !ok {
		t.Errorf("Expected *Demo, got %T", src)
	}

	mem, _ := cache.New("memory", cache.ProviderConfig{Size: 1, TTL: time.Minute})
	src, err = New(&config.Config{Source: "ecourts", ECourtsDomain: "http://example.invalid"}, mem)
	if err != nil {
		t.Fatalf("New ecourts: %v", err)
	}
	if _, ok := src.(*Cached); !ok {
		t.Errorf("Expected *Cached wrapper, got %T", src)
	}

	if _, err := New(&config.Config{Source: "carrier-pigeon"}, nil); err == nil {
		t.Error("Expected error for unknown source")
	}
}
