package ui

import (
	"github.com/schollz/progressbar/v3"
)

const maxDescriptionLength = 35

// DownloadProgress renders a byte-level progress bar for the file
// currently being downloaded. It implements the downloader's
// Progress interface.
type DownloadProgress struct {
	bar *progressbar.ProgressBar
}

// NewDownloadProgress creates an idle progress display.
func NewDownloadProgress() *DownloadProgress {
	return &DownloadProgress{}
}

// Start begins a bar for one file. A negative total renders a spinner
// for servers that do not advertise a content length.
func (p *DownloadProgress) Start(name string, total int64) {
	desc := name
	if len(desc) > maxDescriptionLength {
		desc = desc[:maxDescriptionLength]
	}

	p.bar = progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription("Downloading "+desc),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Add advances the current bar by n bytes.
func (p *DownloadProgress) Add(n int) {
	if p.bar != nil {
		_ = p.bar.Add(n)
	}
}

// Finish clears the current bar.
func (p *DownloadProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
