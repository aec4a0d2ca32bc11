package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/username/holiday-density/internal/holiday"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *OpenHolidaysSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenHolidaysSource(OpenHolidaysConfig{
		BaseURL:    server.URL,
		Language:   "en",
		Timeout:    time.Second,
		Retries:    3,
		RetryDelay: time.Millisecond,
	}, zap.NewNop())
}

func TestOpenHolidaysSource_PublicHolidays(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/PublicHolidays" {
			t.Errorf("path = %s, want /PublicHolidays", r.URL.Path)
		}
		q := r.URL.Query()
		want := map[string]string{
			"countryIsoCode":  "DE",
			"validFrom":       "2024-01-01",
			"validTo":         "2024-12-31",
			"languageIsoCode": "EN",
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("query %s = %q, want %q", k, got, v)
			}
		}

		fmt.Fprint(w, `[{"id":"a1","startDate":"2024-10-03","endDate":"2024-10-03","type":"Public",
			"name":[{"language":"EN","text":"German Unity Day"}],"nationwide":true}]`)
	})

	records, err := src.PublicHolidays(context.Background(), "DE", 2024)
	if err != nil {
		t.Fatalf("PublicHolidays() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Label() != "German Unity Day" || !records[0].Nationwide {
		t.Errorf("record = %+v", records[0])
	}
}

func TestOpenHolidaysSource_Regions(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Subdivisions":
			fmt.Fprint(w, `[{"code":"DE-BW","shortName":"BW","name":[{"language":"EN","text":"Baden-Württemberg"}]}]`)
		case "/Groups":
			fmt.Fprint(w, `[{"code":"DE-XG","name":[{"language":"EN","text":"Group"}]}]`)
		default:
			http.NotFound(w, r)
		}
	})

	regions, err := src.Regions(context.Background(), "DE")
	if err != nil {
		t.Fatalf("Regions() error = %v", err)
	}
	if len(regions) != 2 || regions[0].Code != "DE-BW" || regions[1].Code != "DE-XG" {
		t.Errorf("Regions() = %+v, want subdivisions then groups", regions)
	}
}

func TestOpenHolidaysSource_Retries(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantErr   bool
		wantCalls int32
		notFound  bool
	}{
		{"recovers after server errors", []int{500, 503, 200}, false, 3, false},
		{"gives up after max retries", []int{500, 500, 500}, true, 3, false},
		{"client error is not retried", []int{400}, true, 1, false},
		{"not found is not retried", []int{404}, true, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				status := tt.statuses[int(n)-1]
				if status != http.StatusOK {
					w.WriteHeader(status)
					return
				}
				fmt.Fprint(w, `[]`)
			})

			_, err := src.SchoolHolidays(context.Background(), "AT", 2025)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SchoolHolidays() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := atomic.LoadInt32(&calls); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
			if tt.notFound && !errors.Is(err, ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestFileSource_RoundTrip(t *testing.T) {
	fs := NewFileSource(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	records := []holiday.Record{{ID: "s1", StartDate: "2024-10-28", EndDate: "2024-11-01",
		Subdivisions: []holiday.RegionRef{{Code: "DE-BW"}}}}
	if err := fs.WriteHolidays(holiday.KindSchool, "DE", 2024, records); err != nil {
		t.Fatalf("WriteHolidays() error = %v", err)
	}
	if err := fs.WriteHolidays(holiday.KindPublic, "DE", 2024, nil); err != nil {
		t.Fatalf("WriteHolidays() error = %v", err)
	}
	if err := fs.WriteRegions("DE", []holiday.Region{{Code: "DE-BW"}}); err != nil {
		t.Fatalf("WriteRegions() error = %v", err)
	}

	school, err := fs.SchoolHolidays(ctx, "DE", 2024)
	if err != nil {
		t.Fatalf("SchoolHolidays() error = %v", err)
	}
	if len(school) != 1 || school[0].Subdivisions[0].Code != "DE-BW" {
		t.Errorf("SchoolHolidays() = %+v", school)
	}

	public, err := fs.PublicHolidays(ctx, "DE", 2024)
	if err != nil {
		t.Fatalf("PublicHolidays() error = %v", err)
	}
	if public == nil || len(public) != 0 {
		t.Errorf("PublicHolidays() = %v, want empty list", public)
	}

	regions, err := fs.Regions(ctx, "DE")
	if err != nil || len(regions) != 1 {
		t.Errorf("Regions() = %v, %v", regions, err)
	}

	if _, err := fs.SchoolHolidays(ctx, "DE", 2025); !errors.Is(err, ErrNotFound) {
		t.Errorf("SchoolHolidays(2025) error = %v, want ErrNotFound", err)
	}
}

func TestOfflineSource(t *testing.T) {
	src := NewOfflineSource(zap.NewNop())
	ctx := context.Background()

	records, err := src.PublicHolidays(ctx, "DE", 2024)
	if err != nil {
		t.Fatalf("PublicHolidays() error = %v", err)
	}

	days := make(map[string]bool)
	for _, r := range records {
		if !r.Nationwide {
			t.Errorf("record %s is not nationwide", r.ID)
		}
		days[r.StartDate] = true
	}
	for _, want := range []string{"2024-01-01", "2024-05-01", "2024-10-03", "2024-12-25"} {
		if !days[want] {
			t.Errorf("offline DE 2024 lacks %s", want)
		}
	}

	school, err := src.SchoolHolidays(ctx, "DE", 2024)
	if err != nil || len(school) != 0 {
		t.Errorf("SchoolHolidays() = %v, %v, want empty", school, err)
	}

	if _, err := src.PublicHolidays(ctx, "CH", 2024); !errors.Is(err, ErrNotFound) {
		t.Errorf("PublicHolidays(CH) error = %v, want ErrNotFound", err)
	}
}

// fakeSource counts fetches and fails for the configured countries
type fakeSource struct {
	mu      sync.Mutex
	calls   map[string]int
	failFor map[string]bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{calls: make(map[string]int), failFor: make(map[string]bool)}
}

func (f *fakeSource) record(what string, country string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[what]++
	if f.failFor[country] {
		return fmt.Errorf("fake failure for %s", country)
	}
	return nil
}

func (f *fakeSource) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeSource) PublicHolidays(ctx context.Context, country string, year int) ([]holiday.Record, error) {
	if err := f.record(fmt.Sprintf("public/%s-%d", country, year), country); err != nil {
		return nil, err
	}
	return []holiday.Record{{ID: fmt.Sprintf("p-%s-%d", country, year)}}, nil
}

func (f *fakeSource) SchoolHolidays(ctx context.Context, country string, year int) ([]holiday.Record, error) {
	if err := f.record(fmt.Sprintf("school/%s-%d", country, year), country); err != nil {
		return nil, err
	}
	return []holiday.Record{{ID: fmt.Sprintf("s-%s-%d", country, year)}}, nil
}

func (f *fakeSource) Regions(ctx context.Context, country string) ([]holiday.Region, error) {
	if err := f.record("regions/"+country, country); err != nil {
		return nil, err
	}
	return []holiday.Region{{Code: country + "-1"}}, nil
}

func TestStore_Ensure(t *testing.T) {
	src := newFakeSource()
	store := NewStore(src, time.Hour, zap.NewNop())
	ctx := context.Background()

	if err := store.Ensure(ctx, []string{"DE", "AT"}, []int{2024, 2025}); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	// per country: regions + 2 years * 2 kinds
	if got := src.total(); got != 10 {
		t.Errorf("fetches = %d, want 10", got)
	}

	records, ok := store.Holidays(holiday.KindSchool, "AT", 2025)
	if !ok || len(records) != 1 || records[0].ID != "s-AT-2025" {
		t.Errorf("Holidays(school, AT, 2025) = %v, %v", records, ok)
	}
	if regions, ok := store.Regions("DE"); !ok || regions[0].Code != "DE-1" {
		t.Errorf("Regions(DE) = %v, %v", regions, ok)
	}
	if _, ok := store.Holidays(holiday.KindPublic, "FR", 2024); ok {
		t.Error("Holidays(public, FR, 2024) found, want missing")
	}

	if err := store.Ensure(ctx, []string{"DE", "AT"}, []int{2025}); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if got := src.total(); got != 10 {
		t.Errorf("fetches after cached Ensure = %d, want 10", got)
	}
}

func TestStore_EnsureRefetchesExpired(t *testing.T) {
	src := newFakeSource()
	store := NewStore(src, time.Hour, zap.NewNop())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Ensure(context.Background(), []string{"DE"}, []int{2025}); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	now = now.Add(2 * time.Hour)
	if err := store.Ensure(context.Background(), []string{"DE"}, []int{2025}); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if got := src.total(); got != 6 {
		t.Errorf("fetches = %d, want 6 (everything refetched after expiry)", got)
	}
}

func TestStore_EnsureFailsBatch(t *testing.T) {
	src := newFakeSource()
	src.failFor["AT"] = true
	store := NewStore(src, time.Hour, zap.NewNop())

	err := store.Ensure(context.Background(), []string{"DE", "AT"}, []int{2024})
	if err == nil {
		t.Fatal("Ensure() expected error, got nil")
	}
	if got := err.Error(); !strings.Contains(got, "AT") {
		t.Errorf("Ensure() error = %q, want country in message", got)
	}
}

func TestCompositeSource_FallsBack(t *testing.T) {
	primary := newFakeSource()
	primary.failFor["DE"] = true
	fallback := NewOfflineSource(zap.NewNop())

	cs := NewCompositeSource(primary, fallback, zap.NewNop())

	records, err := cs.PublicHolidays(context.Background(), "DE", 2024)
	if err != nil {
		t.Fatalf("PublicHolidays() error = %v", err)
	}
	if len(records) == 0 || !strings.HasPrefix(records[0].ID, "offline-DE-") {
		t.Errorf("PublicHolidays() = %v, want offline records", records)
	}

	records, err = cs.PublicHolidays(context.Background(), "AT", 2024)
	if err != nil || len(records) != 1 || records[0].ID != "p-AT-2024" {
		t.Errorf("PublicHolidays(AT) = %v, %v, want primary records", records, err)
	}
}
