package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tiktracker/pkg/collector"
	"tiktracker/pkg/config"
	"tiktracker/pkg/extract"
	"tiktracker/pkg/input"
	"tiktracker/pkg/logger"
	"tiktracker/pkg/models"
	"tiktracker/pkg/report"
	"tiktracker/pkg/session"
)

var (
	inputFile  string
	reportsDir string
	batchSize  int
	maxRetries int
)

// trackCmd runs one full collection cycle
var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Collect metrics for every tracked profile and write a report",
	Long: `Run one collection cycle: fetch every username from the input list in
concurrency-bounded batches, reconcile suspicious regressions against the
previous report, and persist a new timestamped JSON report with totals,
per-metric rankings and deltas.`,
	Example: `  # Track the profiles listed in usernames.txt
  tiktracker track

  # Custom input list and reports directory
  tiktracker track --input my-profiles.txt --reports ./out

  # Smaller batches against a slow connection
  tiktracker track --batch-size 2`,
	Args: cobra.NoArgs,
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)

	trackCmd.Flags().StringVarP(&inputFile, "input", "i", "", "username list file (one username per line)")
	trackCmd.Flags().StringVar(&reportsDir, "reports", "", "directory for persisted reports")
	trackCmd.Flags().IntVar(&batchSize, "batch-size", 0, "concurrent fetches per batch")
	trackCmd.Flags().IntVar(&maxRetries, "retries", 0, "fetch attempts per profile")
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg := config.Load(configFile, logger.GetLogger())
	mergeTrackFlags(cfg)

	if err := logger.Initialize(logger.Options{Level: cfg.Logging.Level, File: cfg.Logging.File}); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	log := logger.GetLogger()

	usernames, err := input.ReadUsernames(cfg.Input.File)
	if err != nil {
		return fmt.Errorf("read username list: %w", err)
	}
	if len(usernames) == 0 {
		return fmt.Errorf("username list %q is empty, nothing to track", cfg.Input.File)
	}

	browser := extract.NewBrowser(cfg.Extractor, log)
	if err := browser.Start(); err != nil {
		return fmt.Errorf("start extraction browser: %w", err)
	}
	defer browser.Close()

	sessions, err := session.NewManager(sessionDir())
	if err != nil {
		log.WithError(err).Warn("session store unavailable, cookies will not persist")
	} else if cookies, err := sessions.Load(); err == nil {
		if err := browser.SetCookies(cookies); err != nil {
			log.WithError(err).Warn("could not restore session cookies")
		} else {
			log.Debug("session cookies restored")
		}
	}

	store := report.NewStore(cfg.Reports.Directory, log)
	runner := collector.NewRunner(cfg, browser, store, log, quiet)

	rep, err := runner.Run(cmd.Context(), usernames)
	if err != nil {
		return err
	}

	path, err := store.Save(rep)
	if err != nil {
		return fmt.Errorf("persist report: %w", err)
	}

	if sessions != nil {
		if err := sessions.Save(browser.Cookies()); err != nil {
			log.WithError(err).Warn("could not persist session cookies")
		}
	}

	printSummary(rep, path)
	return nil
}

func mergeTrackFlags(cfg *config.Config) {
	if inputFile != "" {
		cfg.Input.File = inputFile
	}
	if reportsDir != "" {
		cfg.Reports.Directory = reportsDir
	}
	if batchSize > 0 {
		cfg.Collector.BatchSize = batchSize
	}
	if maxRetries > 0 {
		cfg.Collector.Retries = maxRetries
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}

func sessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tiktracker"
	}
	return filepath.Join(home, ".config", "tiktracker")
}

func printSummary(rep *models.Report, path string) {
	fmt.Printf("\nReport written to %s\n", path)
	fmt.Printf("  profiles:  %d\n", rep.Totals.TotalUsers)
	fmt.Printf("  followers: %d\n", rep.Totals.TotalFollowers)
	fmt.Printf("  likes:     %d\n", rep.Totals.TotalLikes)
	fmt.Printf("  views:     %d\n", rep.Totals.TotalViews)
	fmt.Printf("  videos:    %d\n", rep.Totals.TotalVideos)
	if rep.Deltas != nil {
		fmt.Printf("  change since last run: %+d followers, %+d likes, %+d views, %+d videos\n",
			rep.Deltas.TotalFollowers, rep.Deltas.TotalLikes, rep.Deltas.TotalViews, rep.Deltas.TotalVideos)
	} else {
		fmt.Println("  first run, no previous report to compare against")
	}
}
