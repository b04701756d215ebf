package insights

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpay-engine/internal/cache"
	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/events"
	"jobpay-engine/internal/filter"
	"jobpay-engine/internal/normalize"
	"jobpay-engine/internal/source"
	"jobpay-engine/internal/store"
)

type fakeSource struct {
	recs  []domain.RawRecord
	err   error
	calls atomic.Int32
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchAll(context.Context) ([]domain.RawRecord, error) {
	f.calls.Add(1)
	return f.recs, f.err
}

func raw(title, loc, salary string) domain.RawRecord {
	r := domain.RawRecord{Title: domain.StringPtr(title), Company: "Acme"}
	if loc != "" {
		r.Location = domain.StringPtr(loc)
	}
	if salary != "" {
		r.Salary = domain.StringPtr(salary)
	}
	return r
}

func sampleRaws() []domain.RawRecord {
	return []domain.RawRecord{
		raw("Forklift Operator", "Edison Township, NJ", "$18.50 - $20.50 an hour"),
		raw("Picker", "Newark, NJ", "$41,600 a year"),
		raw("Unpaid Intern", "Newark, NJ", "Competitive"),
		raw("Driver", "", "$900 a week"),
	}
}

func newService(src source.Source) *Service {
	return NewService(src, cache.New(cache.Config{TTL: time.Minute}), normalize.New(nil, 1))
}

func TestLoad(t *testing.T) {
	src := &fakeSource{recs: sampleRaws()}
	svc := newService(src)

	ds, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fake", ds.Source)
	assert.Equal(t, 4, ds.RawCount)
	assert.Equal(t, 1, ds.Dropped())
	require.Len(t, ds.Records, 3)

	assert.Equal(t, "Edison", ds.Records[0].City)
	assert.Equal(t, domain.PayPeriodHourly, ds.Records[0].PayPeriod)
	assert.InDelta(t, 19.5, ds.Records[0].HourlyRate, 1e-9)
	assert.Equal(t, domain.PayPeriodAnnual, ds.Records[1].PayPeriod)
	assert.InDelta(t, 20.0, ds.Records[1].HourlyRate, 1e-9)
	assert.Equal(t, "Unknown", ds.Records[2].City)
	assert.InDelta(t, 22.5, ds.Records[2].HourlyRate, 1e-9)

	// served from cache and memo
	_, err = svc.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestLoad_SourceUnavailable(t *testing.T) {
	down := errors.New("dial tcp: connection refused")
	svc := newService(&fakeSource{err: down})

	ds, err := svc.Load(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, down)
	assert.NotNil(t, ds.Records)
	assert.Empty(t, ds.Records)
}

func TestLoad_NoUsableData(t *testing.T) {
	tests := []struct {
		name string
		recs []domain.RawRecord
	}{
		{"empty source", nil},
		{"nothing parses", []domain.RawRecord{raw("A", "", "DOE"), raw("B", "", "")}},
		{"zero pay", []domain.RawRecord{raw("C", "", "$0 an hour")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := newService(&fakeSource{recs: tt.recs}).Load(context.Background())
			assert.ErrorIs(t, err, ErrNoUsableData)
			assert.NotErrorIs(t, err, ErrSourceUnavailable)
			assert.Empty(t, ds.Records)
			assert.Equal(t, len(tt.recs), ds.RawCount)
		})
	}
}

func TestRefresh_Refetches(t *testing.T) {
	src := &fakeSource{recs: sampleRaws()}
	svc := newService(src)
	ctx := context.Background()

	_, err := svc.Load(ctx)
	require.NoError(t, err)

	src.recs = sampleRaws()[:1]
	ds, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, ds.Records, 1)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestView(t *testing.T) {
	ds, err := newService(&fakeSource{recs: sampleRaws()}).Load(context.Background())
	require.NoError(t, err)

	all := ds.View(ds.Defaults())
	assert.False(t, all.Empty)
	assert.Len(t, all.Records, 3)

	c := ds.Defaults()
	c.City = "Newark"
	v := ds.View(c)
	require.Len(t, v.Records, 1)
	assert.Equal(t, "Picker", *v.Records[0].Title)

	c.Keyword = "forklift"
	v = ds.View(c)
	assert.True(t, v.Empty)
	assert.NotNil(t, v.Records)

	opts := ds.Options()
	assert.Equal(t, []string{"Edison", "Newark", "Unknown"}, opts.Cities)
	assert.InDelta(t, 19.5, opts.MinRate, 1e-9)
	assert.InDelta(t, 22.5, opts.MaxRate, 1e-9)

	assert.Equal(t, filter.AllCities, ds.Defaults().City)
}

func TestRefresher(t *testing.T) {
	src := &fakeSource{recs: sampleRaws()}
	hub := events.NewHub()
	ch := hub.Subscribe()
	r := NewRefresher(newService(src), hub)

	ds, err := r.RunOnce(context.Background(), "req-9")
	require.NoError(t, err)
	assert.Len(t, ds.Records, 3)

	st := r.Status()
	assert.False(t, st.Running)
	assert.Equal(t, 3, st.LastCount)
	assert.Equal(t, 1, st.LastDropped)
	assert.NotEmpty(t, st.LastOkAt)
	assert.Empty(t, st.LastError)

	var e events.Event
	require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
	assert.Equal(t, events.TypeDatasetRefreshed, e.Type)
	assert.Equal(t, "req-9", e.RequestID)

	src.err = errors.New("gone")
	_, err = r.RunOnce(context.Background(), "")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	st = r.Status()
	assert.Contains(t, st.LastError, "gone")
	assert.Equal(t, 0, st.LastCount)

	require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
	assert.Equal(t, events.TypeRefreshFailed, e.Type)
}

func TestRefresher_SingleFlight(t *testing.T) {
	r := NewRefresher(newService(&fakeSource{recs: sampleRaws()}), nil)
	r.running.Store(true)
	_, err := r.RunOnce(context.Background(), "")
	assert.ErrorIs(t, err, ErrRefreshRunning)
}

func TestStartRefresher(t *testing.T) {
	src := &fakeSource{recs: sampleRaws()}
	r := NewRefresher(newService(src), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartRefresher(ctx, r, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return src.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return r.Status().LastOkAt != "" }, time.Second, 5*time.Millisecond)
}

func TestImporter(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "jobpay.db"))
	require.NoError(t, err)
	defer db.Close()

	src := source.NewSQLite("sqlite:test", db, false)
	svc := newService(src)
	hub := events.NewHub()
	ch := hub.Subscribe()
	im := NewImporter(db, svc, hub)
	ctx := context.Background()

	_, err = svc.Load(ctx)
	assert.ErrorIs(t, err, ErrNoUsableData)

	added, err := im.Import(ctx, []map[string]any{
		{"title": "Loader", "location": "Jersey City, NJ", "salary": "$3,000 a month", "url": "https://j/1"},
		{"title": "Loader", "url": "https://j/1"},
	}, "req-1")
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	var e events.Event
	require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
	assert.Equal(t, events.TypePostingsImported, e.Type)

	ds, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, domain.PayPeriodMonthly, ds.Records[0].PayPeriod)
	assert.Equal(t, "Jersey City", ds.Records[0].City)

	im.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	n, err := im.Cleanup(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = svc.Load(ctx)
	assert.ErrorIs(t, err, ErrNoUsableData)

	var nilImporter *Importer
	_, err = nilImporter.Import(ctx, nil, "")
	assert.ErrorIs(t, err, ErrNoStore)
}
