package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dorkwright/pkg/browser"
	"dorkwright/pkg/config"
	"dorkwright/pkg/crawler"
	"dorkwright/pkg/links"
	"dorkwright/pkg/logger"
	"dorkwright/pkg/ui"
)

var (
	// Search command flags
	maxPages    int
	delay       int
	outputFile  string
	download    bool
	downloadDir string
	headless    bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Crawl search result pages and extract direct file links",
	Long: `Crawl search result pages for a dork query, extract every direct
file link, and save them to a line-delimited text file.

A real browser window is opened so that anti-automation challenges can
be solved by hand: when one is detected the crawl pauses and waits for
ENTER. Use --headless only when challenges are unlikely.`,
	Example: `  # Collect document links from one site
  dorkwright search "site:example.com filetype:doc OR filetype:docx"

  # Limit to 5 result pages and use a custom output file
  dorkwright search "site:example.com filetype:pdf" --pages 5 --output results.txt

  # Search and download immediately
  dorkwright search "site:example.com filetype:pdf" --download --download-dir files`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runSearch(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&maxPages, "pages", "p", 10, "maximum number of result pages to scrape")
	searchCmd.Flags().IntVarP(&delay, "delay", "d", 3, "delay in seconds between page requests")
	searchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file for extracted links (default: file_links.txt)")
	searchCmd.Flags().BoolVar(&download, "download", false, "download files after extracting links")
	searchCmd.Flags().StringVar(&downloadDir, "download-dir", "", "directory to save downloaded files (default: downloads)")
	searchCmd.Flags().BoolVar(&headless, "headless", false, "run the browser without a visible window")
}

func runSearch(cmd *cobra.Command, args []string) {
	query := strings.TrimSpace(args[0])

	flags := map[string]interface{}{}
	if cmd.Flags().Changed("pages") {
		flags["pages"] = maxPages
	}
	if cmd.Flags().Changed("delay") {
		flags["delay"] = delay
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = headless
	}
	if outputFile != "" {
		flags["output"] = outputFile
	}
	if downloadDir != "" {
		flags["download-dir"] = downloadDir
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
	log := logger.GetLogger()

	ui.PrintInfo("Query", query)
	ui.PrintInfo("Max pages", fmt.Sprintf("%d", cfg.Search.MaxPages))
	ui.PrintInfo("Delay between pages", cfg.Search.InterPageDelay.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := browser.NewSession(ctx, browser.Options{
		Headless:  cfg.Search.Headless,
		UserAgent: cfg.Search.UserAgent,
		Width:     1600,
		Height:    900,
		Locale:    "en-US",
	})
	if err != nil {
		log.WithError(err).Error("browser startup failed")
		ui.PrintError("Failed to start browser", err.Error())
		os.Exit(1)
	}

	c := crawler.New(session, &crawler.StdinGate{In: os.Stdin, Out: os.Stdout}, crawler.Config{
		MaxPages:       cfg.Search.MaxPages,
		InterPageDelay: cfg.Search.InterPageDelay,
		PageTimeout:    cfg.Search.PageTimeout,
	}, log)
	c.OnLink = func(u string) {
		if !ui.IsQuietMode() {
			fmt.Printf("  Found: %s\n", u)
		}
	}

	found, reason, err := c.Crawl(ctx, query)
	if err != nil {
		log.WithError(err).Warn("crawl ended early")
	}
	log.WithFields(map[string]interface{}{
		"links":  len(found),
		"reason": string(reason),
	}).Info("crawl finished")

	fmt.Println()
	ui.PrintInfo("Unique file links found", fmt.Sprintf("%d", len(found)))
	for _, link := range found {
		fmt.Println(link)
	}

	if len(found) == 0 {
		ui.PrintWarning("No file links found.")
		return
	}

	if err := links.WriteFile(cfg.Search.LinksFile, found); err != nil {
		ui.PrintError("Failed to save links", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess(fmt.Sprintf("Saved %d links to %s", len(found), cfg.Search.LinksFile))

	if download {
		fmt.Println("\nStarting downloads...")
		runDownloads(ctx, cfg, found)
		return
	}

	fmt.Println("\nYou can download all files with:")
	fmt.Printf("  dorkwright download %s --dir %s\n", cfg.Search.LinksFile, cfg.Download.Directory)
	fmt.Println("Or with wget:")
	fmt.Printf("  wget -i %s\n", cfg.Search.LinksFile)
}
