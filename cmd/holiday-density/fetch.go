package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/holiday-density/internal/calendar"
	"github.com/username/holiday-density/internal/config"
)

func fetchCmd() *cobra.Command {
	var rangeStr string
	var countries []string
	var dir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Mirror holiday data into a local directory",
		Long:  "Download public holidays, school holidays and regions of the selection and store them in the layout read by fallback.mirror_dir.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if dir == "" {
				dir = cfg.Fallback.MirrorDir
			}
			if dir == "" {
				return fmt.Errorf("--dir or fallback.mirror_dir must be specified")
			}

			rng, err := resolveRange(rangeStr, cfg.Selection.Range)
			if err != nil {
				return err
			}
			if len(countries) == 0 {
				countries = cfg.Selection.Countries
			}

			m, err := initializeManager(cfg)
			if err != nil {
				return err
			}

			selected, err := m.Select(countries)
			if err != nil {
				return err
			}
			years := rng.Years()

			logger.Info("Starting fetch",
				zap.String("range", rng.String()),
				zap.Strings("countries", selected),
				zap.String("dir", dir),
				zap.Bool("dry_run", dryRun))

			store := m.Store()
			if err := store.Ensure(cmd.Context(), selected, years); err != nil {
				return err
			}

			mirror := calendar.NewFileSource(dir, logger)
			files, records := 0, 0

			printf("\nFetch Summary (%s, %v):\n", rng, years)
			printLine("═══════════════════════════════════════════════════════")
			for _, country := range selected {
				regions, _ := store.Regions(country)
				if !dryRun {
					if err := mirror.WriteRegions(country, regions); err != nil {
						return err
					}
				}
				files++
				printf("  %s  regions          %4d\n", country, len(regions))

				for _, year := range years {
					for _, kind := range calendar.Kinds {
						recs, _ := store.Holidays(kind, country, year)
						if !dryRun {
							if err := mirror.WriteHolidays(kind, country, year, recs); err != nil {
								return err
							}
						}
						files++
						records += len(recs)
						printf("  %s  %-6s %d      %4d\n", country, kind, year, len(recs))
					}
				}
			}

			if dryRun {
				printf("\n[DRY RUN] %d files with %d holidays would be written to %s\n", files, records, dir)
			} else {
				printf("\nWrote %d files with %d holidays to %s\n", files, records, dir)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&rangeStr, "range", "", "Month range YYYY-MM~YYYY-MM (default: config selection or current year)")
	cmd.Flags().StringSliceVar(&countries, "countries", nil, "Countries to fetch, e.g. DE,AT (default: config selection)")
	cmd.Flags().StringVar(&dir, "dir", "", "Mirror directory (default: fallback.mirror_dir)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Fetch and report without writing files")

	return cmd
}
