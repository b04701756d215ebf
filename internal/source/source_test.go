package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpay-engine/internal/config"
	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/store"
)

const postingsJSON = `[
  {"title": "Forklift Operator", "company": "Acme", "location": "Edison, NJ", "salary": "$18 per hour", "benefits": ["Dental"], "url": "https://jobs.example.com/1"},
  {"title": "Picker", "company": "Beta", "salary": 17},
  "not an object"
]`

const postingsYAML = `
postings:
  - title: Loader
    company: Gamma
    location: Newark, NJ
    salary: "$40,000 a year"
  - title: Driver
    salary: ["$20"]
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestFileSource_JSON(t *testing.T) {
	p := writeFile(t, "postings.json", postingsJSON)

	recs, err := NewFile("f", p).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "Forklift Operator", *recs[0].Title)
	assert.Equal(t, []string{"Dental"}, recs[0].Benefits)
	assert.Equal(t, "https://jobs.example.com/1", recs[0].URL)
	assert.Nil(t, recs[1].Salary, "numeric salary is not text")
	assert.Nil(t, recs[1].Benefits)
}

func TestFileSource_YAML(t *testing.T) {
	p := writeFile(t, "postings.yml", postingsYAML)

	recs, err := NewFile("f", p).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "$40,000 a year", *recs[0].Salary)
	assert.Nil(t, recs[1].Salary)
	assert.Equal(t, "", recs[1].Company)
}

func TestFileSource_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewFile("f", filepath.Join(t.TempDir(), "nope.json")).FetchAll(ctx)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewFile("f", writeFile(t, "bad.json", `{"title":`)).FetchAll(ctx)
	assert.Error(t, err)

	_, err = NewFile("f", writeFile(t, "obj.json", `{"title":"x"}`)).FetchAll(ctx)
	assert.Error(t, err)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewFile("f", writeFile(t, "ok.json", `[]`)).FetchAll(cctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteSource(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "jobpay.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	_, err = store.InsertPostings(ctx, db.Pool, []store.Document{
		{"title": "A", "salary": "$20/hr"},
		{"title": "B", "salary": "$900 a week"},
	}, time.Now())
	require.NoError(t, err)

	src, err := New(config.Source{Kind: "sqlite"}, Options{Store: db})
	require.NoError(t, err)
	assert.Equal(t, "sqlite:jobpay.db", src.Name())

	recs, err := src.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "A", *recs[0].Title)
	assert.Equal(t, "B", *recs[1].Title)

	// shared store is not closed by the source
	require.NoError(t, Close(src))
	assert.NoError(t, db.Pool.Ping())
}

func TestNew_SQLiteOpensDataDir(t *testing.T) {
	dir := t.TempDir()
	src, err := New(config.Source{Kind: "sqlite", Name: "local"}, Options{DataDir: dir})
	require.NoError(t, err)
	defer Close(src)

	assert.Equal(t, "local", src.Name())
	_, err = os.Stat(filepath.Join(dir, DefaultDBName))
	assert.NoError(t, err)

	recs, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(postingsJSON))
		case "/wrapped":
			_, _ = w.Write([]byte(`{"postings":[{"title":"X"}]}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	recs, err := NewHTTP("h", srv.URL+"/feed", time.Second, 0).FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = NewHTTP("h", srv.URL+"/wrapped", time.Second, 0).FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = NewHTTP("h", srv.URL+"/down", time.Second, 0).FetchAll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed status 500")
}

func TestHTMLSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<ul>
<li class="card"><a href="/j/1"><b>Packer</b></a><i>Secaucus, NJ</i><em>$17 - $19 an hour</em></li>
<li class="card"><a href="/j/2"><b>Lead</b></a><i>Newark, NJ</i></li>
</ul>`))
	}))
	defer srv.Close()

	src, err := New(config.Source{
		Kind: "html",
		URL:  srv.URL + "/list",
		HTML: config.HTMLSelectors{Card: ".card", Title: "b", Location: "i", Salary: "em"},
	}, Options{})
	require.NoError(t, err)

	recs, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Packer", *recs[0].Title)
	assert.Equal(t, "$17 - $19 an hour", *recs[0].Salary)
	assert.Equal(t, srv.URL+"/j/1", recs[0].URL)
	assert.Nil(t, recs[1].Salary)
}

type fakeSource struct {
	name  string
	recs  []domain.RawRecord
	err   error
	delay time.Duration
}

func (f fakeSource) Name() string { return f.name }

func (f fakeSource) FetchAll(ctx context.Context) ([]domain.RawRecord, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.recs, f.err
}

func titled(ts ...string) []domain.RawRecord {
	out := make([]domain.RawRecord, 0, len(ts))
	for _, t := range ts {
		out = append(out, domain.RawRecord{Title: domain.StringPtr(t)})
	}
	return out
}

func TestMultiSource_KeepsChildOrder(t *testing.T) {
	m := NewMulti("m",
		fakeSource{name: "slow", recs: titled("a", "b"), delay: 20 * time.Millisecond},
		fakeSource{name: "fast", recs: titled("c")},
	)

	recs, err := m.FetchAll(context.Background())
	require.NoError(t, err)
	var got []string
	for _, r := range recs {
		got = append(got, *r.Title)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestMultiSource_FailsWhole(t *testing.T) {
	boom := errors.New("boom")
	m := NewMulti("m",
		fakeSource{name: "ok", recs: titled("a"), delay: time.Second},
		fakeSource{name: "bad", err: boom},
	)

	recs, err := m.FetchAll(context.Background())
	assert.Nil(t, recs)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad: boom")
}

func TestNew_Kinds(t *testing.T) {
	_, err := New(config.Source{Kind: "ftp"}, Options{})
	assert.ErrorIs(t, err, ErrUnknownKind)

	src, err := New(config.Source{Kind: "FILE", Path: "x.yml"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "file:x.yml", src.Name())

	src, err = New(config.Source{Kind: "multi", Sources: []config.Source{
		{Kind: "file", Path: "a.json"},
		{Kind: "http", URL: "http://127.0.0.1:1/feed"},
	}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "multi", src.Name())
	assert.NoError(t, Close(src))

	_, err = New(config.Source{Kind: "multi", Sources: []config.Source{{Kind: "multi"}}}, Options{})
	assert.Error(t, err)

	_, err = New(config.Source{Kind: "multi", Sources: []config.Source{{Kind: "nope"}}}, Options{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}
