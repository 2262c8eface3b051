// Package downloader retrieves file URLs to local storage, one at a
// time, and accumulates run statistics.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dorkwright/pkg/errors"
	"dorkwright/pkg/filename"
	"dorkwright/pkg/logger"
)

// Progress receives incremental byte counts for display. A nil
// Progress disables reporting.
type Progress interface {
	Start(name string, total int64)
	Add(n int)
	Finish()
}

// StatusFunc receives one line-worth of outcome per URL: the resolved
// name (or the URL when resolution never happened), the final size,
// and the failure category for failed tasks.
type StatusFunc func(name string, size int64, failure errors.Kind)

// Downloader fetches URLs sequentially into one output directory.
type Downloader struct {
	client   *http.Client
	resolver *filename.Resolver
	dir      string
	progress Progress
	status   StatusFunc
	logger   logger.Logger
}

// Options configures a Downloader.
type Options struct {
	Directory      string
	RequestTimeout time.Duration
	Progress       Progress
	Status         StatusFunc
	Logger         logger.Logger
}

// New creates the output directory and a downloader writing into it.
func New(opts Options) (*Downloader, error) {
	if err := os.MkdirAll(opts.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	return &Downloader{
		client:   &http.Client{Timeout: opts.RequestTimeout},
		resolver: filename.NewResolver(opts.Directory),
		dir:      opts.Directory,
		progress: opts.Progress,
		status:   opts.Status,
		logger:   log,
	}, nil
}

// Download fetches the URLs strictly in input order, one at a time,
// with a single attempt each. Failures are counted and never abort
// the remaining URLs.
func (d *Downloader) Download(ctx context.Context, urls []string) *Stats {
	stats := newStats()
	stats.Total = len(urls)
	start := time.Now()

	for i, url := range urls {
		select {
		case <-ctx.Done():
			stats.Failed += len(urls) - i
			stats.Elapsed = time.Since(start)
			return stats
		default:
		}

		name, size, err := d.fetch(ctx, url, i+1)
		if err != nil {
			kind := errors.KindOf(err)
			stats.Failed++
			d.logger.WithError(err).WithFields(map[string]interface{}{
				"url":      url,
				"category": string(kind),
			}).Error("download failed")
			d.report(displayName(name, url), 0, kind)
			continue
		}

		stats.Succeeded++
		stats.TotalBytes += size
		if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
			stats.ByExtension[ext]++
		}
		d.logger.WithFields(map[string]interface{}{
			"file": name,
			"size": size,
		}).Debug("download complete")
		d.report(name, size, "")
	}

	stats.Elapsed = time.Since(start)
	return stats
}

// fetch retrieves one URL. It returns the resolved filename and the
// authoritative on-disk size.
func (d *Downloader) fetch(ctx context.Context, url string, ordinal int) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, errors.Wrap(errors.KindRequest, "invalid URL", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", 0, errors.Wrap(errors.KindRequest, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", 0, errors.New(errors.KindRequest, fmt.Sprintf("server returned %s", resp.Status))
	}

	name := d.resolver.Resolve(url, resp.Header, ordinal)
	path := filepath.Join(d.dir, name)

	size, err := d.write(path, name, resp)
	if err != nil {
		return name, 0, errors.Wrap(errors.KindLocal, "failed to store file", err)
	}

	return name, size, nil
}

// write streams the body to disk and returns the size read back from
// the filesystem, independent of any declared content length.
func (d *Downloader) write(path, name string, resp *http.Response) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	var dst io.Writer = out
	if d.progress != nil {
		d.progress.Start(name, resp.ContentLength)
		dst = io.MultiWriter(out, progressWriter{d.progress})
		defer d.progress.Finish()
	}

	_, copyErr := io.Copy(dst, resp.Body)
	closeErr := out.Close()

	if copyErr != nil {
		os.Remove(path)
		return 0, copyErr
	}
	if closeErr != nil {
		os.Remove(path)
		return 0, closeErr
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (d *Downloader) report(name string, size int64, failure errors.Kind) {
	if d.status != nil {
		d.status(name, size, failure)
	}
}

func displayName(name, url string) string {
	if name != "" {
		return name
	}
	if len(url) > 50 {
		return url[:50]
	}
	return url
}

type progressWriter struct {
	progress Progress
}

func (w progressWriter) Write(p []byte) (int, error) {
	w.progress.Add(len(p))
	return len(p), nil
}
