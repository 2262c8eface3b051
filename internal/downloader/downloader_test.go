package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dorkwright/pkg/errors"
)

func newTestDownloader(t *testing.T, status StatusFunc) (*Downloader, string) {
	t.Helper()
	dir := t.TempDir()
	d, err := New(Options{
		Directory:      dir,
		RequestTimeout: 5 * time.Second,
		Status:         status,
	})
	require.NoError(t, err)
	return d, dir
}

func TestDownloadSingleFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 test content"))
	}))
	defer server.Close()

	d, dir := newTestDownloader(t, nil)
	stats := d.Download(context.Background(), []string{server.URL + "/report.pdf"})

	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, int64(21), stats.TotalBytes)
	assert.Equal(t, map[string]int{".pdf": 1}, stats.ByExtension)

	content, err := os.ReadFile(filepath.Join(dir, "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test content", string(content))
}

func TestDownloadRenamesDynamicEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="report.aspx"`)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("pdf bytes"))
	}))
	defer server.Close()

	d, dir := newTestDownloader(t, nil)
	stats := d.Download(context.Background(), []string{server.URL + "/get"})

	assert.Equal(t, 1, stats.Succeeded)
	_, err := os.Stat(filepath.Join(dir, "report.pdf"))
	assert.NoError(t, err, "extension must follow the content type, not the endpoint")
}

func TestDownloadCollidingNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("payload for " + r.URL.Path))
	}))
	defer server.Close()

	d, dir := newTestDownloader(t, nil)
	stats := d.Download(context.Background(), []string{
		server.URL + "/a/data.csv",
		server.URL + "/b/data.csv",
	})

	assert.Equal(t, 2, stats.Succeeded)

	first, err := os.ReadFile(filepath.Join(dir, "data.csv"))
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(dir, "data_1.csv"))
	require.NoError(t, err)

	assert.Equal(t, "payload for /a/data.csv", string(first))
	assert.Equal(t, "payload for /b/data.csv", string(second))
	assert.Equal(t, map[string]int{".csv": 2}, stats.ByExtension)
}

func TestDownloadCountsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	var failures []errors.Kind
	status := func(name string, size int64, failure errors.Kind) {
		if failure != "" {
			failures = append(failures, failure)
		}
	}

	d, _ := newTestDownloader(t, status)
	stats := d.Download(context.Background(), []string{
		server.URL + "/good.pdf",
		server.URL + "/missing.pdf",
	})

	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, []errors.Kind{errors.KindRequest}, failures)
}

func TestDownloadUnreachableHost(t *testing.T) {
	d, _ := newTestDownloader(t, nil)
	stats := d.Download(context.Background(), []string{
		"http://127.0.0.1:1/nothing.pdf",
	})

	assert.Equal(t, 0, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
}

func TestDownloadContinuesAfterFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("fine"))
	}))
	defer server.Close()

	d, dir := newTestDownloader(t, nil)
	stats := d.Download(context.Background(), []string{
		"http://127.0.0.1:1/broken.txt",
		server.URL + "/after.txt",
	})

	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
	_, err := os.Stat(filepath.Join(dir, "after.txt"))
	assert.NoError(t, err, "a failure must not stop later downloads")
}

func TestDownloadSynthesizesFilename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write([]byte("zipzip"))
	}))
	defer server.Close()

	d, dir := newTestDownloader(t, nil)
	stats := d.Download(context.Background(), []string{server.URL + "/"})

	assert.Equal(t, 1, stats.Succeeded)
	_, err := os.Stat(filepath.Join(dir, "file_1.zip"))
	assert.NoError(t, err)
}

func TestStatsAverageSpeed(t *testing.T) {
	s := &Stats{TotalBytes: 1024, Elapsed: 2 * time.Second}
	assert.Equal(t, 512.0, s.AverageSpeed())

	zero := &Stats{TotalBytes: 1024}
	assert.Equal(t, 0.0, zero.AverageSpeed())
}

func TestStatsExtensionsByCount(t *testing.T) {
	s := &Stats{ByExtension: map[string]int{
		".pdf": 3, ".csv": 1, ".doc": 3,
	}}

	got := s.ExtensionsByCount()
	assert.Equal(t, []ExtensionCount{
		{Extension: ".doc", Count: 3},
		{Extension: ".pdf", Count: 3},
		{Extension: ".csv", Count: 1},
	}, got)
}
