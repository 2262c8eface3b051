package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dorkwright/internal/downloader"
	"dorkwright/pkg/config"
	"dorkwright/pkg/errors"
	"dorkwright/pkg/links"
	"dorkwright/pkg/logger"
	"dorkwright/pkg/ui"
)

var targetDir string

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download <link-file>",
	Short: "Download every URL from a line-delimited link list",
	Long: `Read a line-delimited list of URLs (one per line, blank lines
ignored) and download each file into the target directory.

Filenames are taken from the server's Content-Disposition header when
present, otherwise from the URL; extensions are corrected against the
declared content type and collisions get a numeric suffix.`,
	Example: `  # Download everything from a previous search
  dorkwright download file_links.txt

  # Download into a specific directory
  dorkwright download file_links.txt --dir my_files`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runDownload(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&targetDir, "dir", "", "directory to save downloaded files (default: downloads)")
}

func runDownload(cmd *cobra.Command, args []string) {
	flags := map[string]interface{}{}
	if targetDir != "" {
		flags["download-dir"] = targetDir
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}

	urls, err := links.ReadFile(args[0])
	if err != nil {
		logger.GetLogger().WithError(err).Error("cannot read URL list")
		ui.PrintError("Cannot read URL list", err.Error())
		os.Exit(1)
	}

	ui.PrintInfo("URLs to download", fmt.Sprintf("%d", len(urls)))
	ui.PrintInfo("Saving to directory", cfg.Download.Directory)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runDownloads(ctx, cfg, urls)
}

// runDownloads is shared by the download command and the search
// command's --download flag.
func runDownloads(ctx context.Context, cfg *config.Config, urls []string) {
	log := logger.GetLogger()

	d, err := downloader.New(downloader.Options{
		Directory:      cfg.Download.Directory,
		RequestTimeout: cfg.Download.RequestTimeout,
		Progress:       ui.NewDownloadProgress(),
		Status: func(name string, size int64, failure errors.Kind) {
			ui.PrintTaskStatus(os.Stdout, name, size, failure)
		},
		Logger: log,
	})
	if err != nil {
		log.WithError(err).Error("downloader setup failed")
		ui.PrintError("Failed to prepare download directory", err.Error())
		os.Exit(1)
	}

	stats := d.Download(ctx, urls)

	fmt.Println()
	ui.PrintStatsReport(os.Stdout, stats)
}
