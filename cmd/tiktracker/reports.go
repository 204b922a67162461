package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tiktracker/pkg/config"
	"tiktracker/pkg/logger"
	"tiktracker/pkg/report"
)

// reportsCmd lists persisted reports
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List persisted reports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load(configFile, logger.GetLogger())
		if reportsDir != "" {
			cfg.Reports.Directory = reportsDir
		}

		store := report.NewStore(cfg.Reports.Directory, logger.GetLogger())
		names, err := store.List()
		if err != nil {
			return fmt.Errorf("list reports: %w", err)
		}
		if len(names) == 0 {
			fmt.Println("no reports found")
			return nil
		}

		for _, name := range names {
			rep, err := store.Load(name)
			if err != nil {
				fmt.Printf("%s  (unreadable: %v)\n", name, err)
				continue
			}
			fmt.Printf("%s  %s  profiles=%d followers=%d views=%d\n",
				name, rep.Timestamp, rep.Totals.TotalUsers, rep.Totals.TotalFollowers, rep.Totals.TotalViews)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.Flags().StringVar(&reportsDir, "reports", "", "directory for persisted reports")
}
