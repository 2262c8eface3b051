package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dorkwright/internal/downloader"
	"dorkwright/pkg/errors"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00 B"},
		{512, "512.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in))
	}
}

func TestPrintTaskStatus(t *testing.T) {
	var buf bytes.Buffer

	PrintTaskStatus(&buf, "report.pdf", 2048, "")
	assert.Contains(t, buf.String(), "report.pdf")
	assert.Contains(t, buf.String(), "2.00 KB")

	buf.Reset()
	PrintTaskStatus(&buf, "missing.pdf", 0, errors.KindRequest)
	assert.Contains(t, buf.String(), "FAILED")

	buf.Reset()
	PrintTaskStatus(&buf, "broken.pdf", 0, errors.KindLocal)
	assert.Contains(t, buf.String(), "ERROR")
}

func TestPrintStatsReport(t *testing.T) {
	stats := &downloader.Stats{
		Total:      3,
		Succeeded:  2,
		Failed:     1,
		TotalBytes: 4096,
		Elapsed:    2 * time.Second,
		ByExtension: map[string]int{
			".pdf": 2,
		},
	}

	var buf bytes.Buffer
	PrintStatsReport(&buf, stats)

	out := buf.String()
	assert.Contains(t, out, "Total files processed:     3")
	assert.Contains(t, out, "Successfully downloaded:   2")
	assert.Contains(t, out, "Failed downloads:          1")
	assert.Contains(t, out, "4.00 KB")
	assert.Contains(t, out, "2.00 KB/s")
	assert.Contains(t, out, ".pdf")
	assert.Contains(t, out, "2 files")
}
