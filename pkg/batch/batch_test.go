package batch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/headsmith/internal/config"
	"github.com/amosWeiskopf/headsmith/internal/models"
	"github.com/amosWeiskopf/headsmith/pkg/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.ResultsDir = filepath.Join(dir, "results")
	cfg.Paths.FaviconsDir = filepath.Join(dir, "favicons")
	return cfg
}

// newSite serves a seed page with headlines, one same-host link and
// optionally a favicon.
func newSite(t *testing.T, withFavicon bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><body>
			<h2>First Headline</h2>
			<h2>Second Headline</h2>
			<a href="/a">A</a>
			<a href="http://other.com/b">B</a>
			<a href="/a">A again</a>
			</body></html>`))
	})
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Sub Title</title></head></html>`))
	})
	if withFavicon {
		mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ICO"))
		})
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestReadURLs(t *testing.T) {
	input := "http://a.example\n\n   \n  http://b.example  \r\nhttp://c.example"

	urls, err := ReadURLs(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.example", "http://b.example", "http://c.example"}, urls)
}

func TestReadURLFileMissing(t *testing.T) {
	_, err := ReadURLFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadURLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("http://one.example\n\nhttp://two.example\n"), 0644))

	urls, err := ReadURLFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://one.example", "http://two.example"}, urls)
}

func TestRunWritesAllArtifacts(t *testing.T) {
	site := newSite(t, true)
	cfg := testConfig(t)
	var out bytes.Buffer

	report := New(cfg, WithOutput(&out)).Run(context.Background(), []string{site.URL})

	require.Len(t, report.Outcomes, 3)
	assert.Empty(t, report.Failed())
	assert.Equal(t, 3, report.Succeeded())

	store := storage.New(cfg.Paths.ResultsDir, cfg.Paths.FaviconsDir)

	hp, err := store.HeadlinesPath(site.URL)
	require.NoError(t, err)
	assert.Equal(t, "First Headline\nSecond Headline", readFile(t, hp))

	sp, err := store.SubpagesPath(site.URL)
	require.NoError(t, err)
	assert.Equal(t, site.URL+"/a\tSub Title", readFile(t, sp))

	fp, err := store.FaviconPath(site.URL)
	require.NoError(t, err)
	assert.Equal(t, "ICO", readFile(t, fp))

	assert.Equal(t, site.URL+"\n1. First Headline\n2. Second Headline\n", out.String())

	byOp := map[models.Operation]models.Outcome{}
	for _, o := range report.Outcomes {
		byOp[o.Operation] = o
	}
	assert.Equal(t, 2, byOp[models.OpHeadlines].Count)
	assert.Equal(t, 3, byOp[models.OpFavicon].Count)
	assert.Equal(t, 1, byOp[models.OpSubpages].Count)
	assert.Equal(t, hp, byOp[models.OpHeadlines].Path)
}

func TestRunFaviconFailureIsIsolated(t *testing.T) {
	good := newSite(t, true)
	bad := newSite(t, false)
	cfg := testConfig(t)

	report := New(cfg).Run(context.Background(), []string{bad.URL, good.URL})

	require.Len(t, report.Outcomes, 6)
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, bad.URL, failed[0].URL)
	assert.Equal(t, models.OpFavicon, failed[0].Operation)
	assert.NotEmpty(t, failed[0].Error)
	assert.Empty(t, failed[0].Path)

	store := storage.New(cfg.Paths.ResultsDir, cfg.Paths.FaviconsDir)
	for _, seed := range []string{bad.URL, good.URL} {
		hp, _ := store.HeadlinesPath(seed)
		assert.FileExists(t, hp)
		sp, _ := store.SubpagesPath(seed)
		assert.FileExists(t, sp)
	}

	badIcon, _ := store.FaviconPath(bad.URL)
	assert.NoFileExists(t, badIcon)
	goodIcon, _ := store.FaviconPath(good.URL)
	assert.FileExists(t, goodIcon)
}

func TestRunUnreachableSeed(t *testing.T) {
	good := newSite(t, true)
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	report := New(testConfig(t)).Run(context.Background(), []string{downURL, good.URL})

	require.Len(t, report.Outcomes, 6)
	assert.Len(t, report.Failed(), 3)
	for _, o := range report.Failed() {
		assert.Equal(t, downURL, o.URL)
	}
}

func TestRunNoHeadlines(t *testing.T) {
	site := newSite(t, true)
	cfg := testConfig(t)
	cfg.Scrape.Selector = "h1.nothing"
	var out bytes.Buffer

	report := New(cfg, WithOutput(&out)).Run(context.Background(), []string{site.URL})
	assert.Empty(t, report.Failed())
	assert.Contains(t, out.String(), NoHeadlinesMessage)

	hp, err := storage.New(cfg.Paths.ResultsDir, cfg.Paths.FaviconsDir).HeadlinesPath(site.URL)
	require.NoError(t, err)
	assert.Equal(t, "", readFile(t, hp))
}

type recordingProgress struct {
	started []string
	stopped int
}

func (p *recordingProgress) Start(url string) { p.started = append(p.started, url) }
func (p *recordingProgress) Stop()            { p.stopped++ }

func TestRunReportsProgress(t *testing.T) {
	site := newSite(t, true)
	p := &recordingProgress{}

	New(testConfig(t), WithProgress(p)).Run(context.Background(), []string{site.URL, site.URL})

	assert.Equal(t, []string{site.URL, site.URL}, p.started)
	assert.Equal(t, 2, p.stopped)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	site := newSite(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := New(testConfig(t)).Run(ctx, []string{site.URL})
	assert.Empty(t, report.Outcomes)
}

func TestPrintHeadlines(t *testing.T) {
	var buf bytes.Buffer
	PrintHeadlines(&buf, "http://example.com", []string{"One", "Two"})
	assert.Equal(t, "http://example.com\n1. One\n2. Two\n", buf.String())

	buf.Reset()
	PrintHeadlines(&buf, "http://example.com", nil)
	assert.Equal(t, "http://example.com\n"+NoHeadlinesMessage+"\n", buf.String())
}
