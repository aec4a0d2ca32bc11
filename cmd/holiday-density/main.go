package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/holiday-density/internal/calendar"
	"github.com/username/holiday-density/internal/config"
	"github.com/username/holiday-density/internal/daemon"
	"github.com/username/holiday-density/internal/density"
	"github.com/username/holiday-density/internal/grid"
	"github.com/username/holiday-density/internal/manager"
	"github.com/username/holiday-density/internal/population"
	"github.com/username/holiday-density/pkg/dateutil"
)

var (
	configPath string
	logger     *zap.Logger
	out        io.Writer = os.Stdout
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "holiday-density",
		Short: "Holiday density calendar",
		Long:  "Show which share of the population of the selected countries has public or school holidays on each day",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger("info") // Fallback to console
				}
			} else if err == nil {
				initLogger(cfg.Log.Level)
			} else {
				initLogger("info")
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ./config.yaml)")

	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(daemonCmd())
	rootCmd.AddCommand(countriesCmd())
	rootCmd.AddCommand(rangesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func calendarCmd() *cobra.Command {
	var rangeStr string
	var countries []string
	var jsonOutput string
	var dayStr string
	var noSummary bool

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Compute and print the holiday density calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
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

			report, err := m.Compute(cmd.Context(), rng, countries)
			if err != nil {
				return err
			}

			if jsonOutput != "" {
				if err := manager.NewSnapshotWriter(jsonOutput, logger).Save(report); err != nil {
					return err
				}
			}

			msgs := m.Messages()

			if dayStr != "" {
				return printDay(report, dayStr, msgs)
			}

			printf("%s  %s\n", report.Range, strings.Join(countryNames(report.Countries, msgs), ", "))
			printf("%s\n\n", msgs.FormatPopulation(report.TotalPopulation))

			err = grid.Render(out, report.Months, grid.RenderOptions{
				MonthTitle: func(month grid.Month) string {
					return msgs.MonthTitle(month.Month, month.Year)
				},
				Weekdays: msgs.Weekdays,
				Summary:  !noSummary,
			})
			if err != nil {
				return fmt.Errorf("failed to render calendar: %w", err)
			}

			printLine("\nLegend: '*' = Sunday or national public holiday, '~' = incomplete data")
			printSources(report.Sources, msgs)
			return nil
		},
	}

	cmd.Flags().StringVar(&rangeStr, "range", "", "Month range YYYY-MM~YYYY-MM (default: config selection or current year)")
	cmd.Flags().StringSliceVar(&countries, "countries", nil, "Countries to include, e.g. DE,AT (default: config selection)")
	cmd.Flags().StringVar(&jsonOutput, "json", "", "Also write the report as JSON to this file")
	cmd.Flags().StringVar(&dayStr, "day", "", "Print the breakdown of a single day (YYYY-MM-DD) instead of the grid")
	cmd.Flags().BoolVar(&noSummary, "no-summary", false, "Omit the per-month summary lines")

	return cmd
}

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Recompute the configured selection periodically and write the snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			m, err := initializeManager(cfg)
			if err != nil {
				return err
			}

			d := daemon.NewDaemon(
				m,
				manager.NewSnapshotWriter(cfg.Output.File, logger),
				daemon.Selection{
					Range:     cfg.Selection.Range,
					Countries: cfg.Selection.Countries,
				},
				cfg.Daemon.GetInterval(),
				logger,
			)

			return d.Start(cmd.Context())
		},
	}
}

func countriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the supported countries with their population",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			pop, err := population.Load(cfg.Population.File)
			if err != nil {
				return err
			}
			msgs := density.NewMessages(cfg.Locale)

			printLine("Countries")
			printLine("═══════════════════════════════════════════════════════")
			for _, code := range cfg.Countries {
				if !pop.Has(code) {
					printf("  %s  %-20s  no population data\n", code, msgs.CountryName(code))
					continue
				}
				regions, _ := pop.Regions(code)
				printf("  %s  %-20s  %s  (%d regions, %s)\n",
					code,
					msgs.CountryName(code),
					msgs.FormatPopulation(pop.Total(code)),
					len(regions),
					pop.Kind(code))
			}

			printSources(append([]population.Attribution{manager.HolidaySource}, pop.Attributions(cfg.Countries)...), msgs)
			return nil
		},
	}
}

func rangesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ranges",
		Short: "List the preset calendar and school year ranges",
		Run: func(cmd *cobra.Command, args []string) {
			now := dateutil.Today()
			def := density.DefaultRange(now)
			for _, p := range density.PresetRanges(now) {
				marker := " "
				if p.Range.String() == def.String() {
					marker = "*"
				}
				printf("%s %-8s %s\n", marker, p.Label, p.Range)
			}
		},
	}
}

// resolveRange prefers the flag, then the configured range, then the current calendar or school year
func resolveRange(flag, configured string) (density.Range, error) {
	value := flag
	if value == "" {
		value = configured
	}
	if value == "" {
		return density.DefaultRange(dateutil.Today()), nil
	}
	return density.ParseRange(value)
}

func printDay(report *manager.Report, dayStr string, msgs *density.Messages) error {
	day, err := dateutil.ParseDate(dayStr)
	if err != nil {
		return fmt.Errorf("invalid day: %w", err)
	}

	stat, ok := report.Days[dateutil.DayKey(day)]
	if !ok {
		return fmt.Errorf("%s is outside the range %s", dateutil.DayKey(day), report.Range)
	}

	printf("%s  %.0f%%\n", stat.Key(), stat.Fraction*100)
	printLine("═══════════════════════════════════════════════════════")
	printLine(stat.Tooltip)
	printSources(report.Sources, msgs)
	return nil
}

func printSources(sources []population.Attribution, msgs *density.Messages) {
	printf("\n%s:\n", msgs.DataSources)
	for _, s := range sources {
		printf("  %s  %s\n", s.Source, s.URL)
	}
}

func countryNames(codes []string, msgs *density.Messages) []string {
	names := make([]string, len(codes))
	for i, code := range codes {
		names[i] = msgs.CountryName(code)
	}
	return names
}

func printf(format string, a ...interface{}) {
	fmt.Fprintf(out, format, a...)
}

func printLine(a ...interface{}) {
	fmt.Fprintln(out, a...)
}

func initializeManager(cfg *config.Config) (*manager.Manager, error) {
	pop, err := population.Load(cfg.Population.File)
	if err != nil {
		return nil, err
	}

	store := calendar.NewStore(newSource(cfg), cfg.API.GetCacheTTL(), logger)
	msgs := density.NewMessages(cfg.Locale)

	return manager.NewManager(pop, store, msgs, cfg.Countries, logger), nil
}

// newSource wraps the API with the configured fallbacks: mirror directory first, then offline public holidays
func newSource(cfg *config.Config) calendar.Source {
	var source calendar.Source = calendar.NewOpenHolidaysSource(calendar.OpenHolidaysConfig{
		BaseURL:  cfg.API.BaseURL,
		Language: cfg.Locale,
		Timeout:  cfg.API.GetTimeout(),
		Retries:  cfg.API.Retries,
	}, logger)

	if cfg.Fallback.MirrorDir != "" {
		logger.Info("Using mirror directory as fallback", zap.String("dir", cfg.Fallback.MirrorDir))
		source = calendar.NewCompositeSource(source, calendar.NewFileSource(cfg.Fallback.MirrorDir, logger), logger)
	}

	if cfg.Fallback.OfflinePublicHolidays {
		logger.Info("Using offline public holidays as fallback", zap.Strings("countries", calendar.OfflineCountries()))
		source = calendar.NewCompositeSource(source, calendar.NewOfflineSource(logger), logger)
	}

	return source
}

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err == nil {
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	// Create core with lumberjack writer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
