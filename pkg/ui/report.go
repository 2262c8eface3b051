package ui

import (
	"fmt"
	"io"
	"strings"

	"dorkwright/internal/downloader"
	"dorkwright/pkg/errors"
)

// PrintTaskStatus writes the per-item outcome line the downloader
// reports for every URL.
func PrintTaskStatus(w io.Writer, name string, size int64, failure errors.Kind) {
	switch failure {
	case "":
		fmt.Fprintf(w, "  %s  %-50s  %10s\n", Green("✓"), name, FormatBytes(float64(size)))
	case errors.KindRequest:
		fmt.Fprintf(w, "  %s  %-50s  %10s\n", Red("✗"), name, "FAILED")
	default:
		fmt.Fprintf(w, "  %s  %-50s  %10s\n", Red("✗"), name, "ERROR")
	}
}

// PrintStatsReport writes the end-of-run statistics block.
func PrintStatsReport(w io.Writer, stats *downloader.Stats) {
	rule := strings.Repeat("=", 80)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%*s\n", (80+len("DOWNLOAD STATISTICS"))/2, "DOWNLOAD STATISTICS")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Total files processed:     %d\n", stats.Total)
	fmt.Fprintf(w, "  Successfully downloaded:   %d\n", stats.Succeeded)
	fmt.Fprintf(w, "  Failed downloads:          %d\n", stats.Failed)
	fmt.Fprintf(w, "  Total size:                %s\n", FormatBytes(float64(stats.TotalBytes)))
	fmt.Fprintf(w, "  Time elapsed:              %.2fs\n", stats.Elapsed.Seconds())
	fmt.Fprintf(w, "  Average speed:             %s/s\n", FormatBytes(stats.AverageSpeed()))

	if len(stats.ByExtension) > 0 {
		fmt.Fprintln(w, "\n  File types downloaded:")
		for _, row := range stats.ExtensionsByCount() {
			plural := ""
			if row.Count != 1 {
				plural = "s"
			}
			fmt.Fprintf(w, "    %-10s : %3d file%s\n", row.Extension, row.Count, plural)
		}
	}

	fmt.Fprintln(w, rule)
}
