// Package cli provides the command-line interface for the revenue comparison report.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"revcompare/internal/config"
	"revcompare/internal/logging"
	"revcompare/internal/marketdata"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-01"
)

// skipConfig marks commands that must run even when the config file is broken.
const skipConfig = "skip-config"

// ProviderFactory builds the market data provider for a run.
type ProviderFactory func(cfg config.FetchConfig, logger zerolog.Logger) (marketdata.Provider, error)

// App holds the application dependencies.
type App struct {
	ConfigDir   string
	Config      *config.Config
	Logger      zerolog.Logger
	NewProvider ProviderFactory
}

// YahooProviderFactory is the production ProviderFactory.
func YahooProviderFactory(cfg config.FetchConfig, logger zerolog.Logger) (marketdata.Provider, error) {
	return marketdata.NewYahooProvider(marketdata.YahooConfig{
		BaseURL:           cfg.BaseURL,
		SessionURL:        cfg.SessionURL,
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		HistoryYears:      cfg.HistoryYears,
	}, logger)
}

// NewRootCmd creates the root command for the CLI. Configuration is loaded
// once flags are parsed, so --config can point at another directory.
func NewRootCmd(app *App) *cobra.Command {
	if app.NewProvider == nil {
		app.NewProvider = YahooProviderFactory
	}

	rootCmd := &cobra.Command{
		Use:   "revcompare",
		Short: "Compare quarterly revenue and P/E of two companies",
		Long: `revcompare fetches quarterly income statements and trailing P/E ratios
for two companies, aligns the last quarters of revenue on one timeline and
draws a two-panel chart: revenue over time above a P/E bar comparison.

Running 'revcompare' with no command is the same as 'revcompare chart'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dir, _ := cmd.Flags().GetString("config"); dir != "" {
				app.ConfigDir = dir
			}
			if cmd.Annotations[skipConfig] == "" {
				if err := app.loadConfig(); err != nil {
					return err
				}
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/revcompare)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	chartCmd := newChartCmd(app)
	rootCmd.Flags().AddFlagSet(chartCmd.Flags())
	rootCmd.RunE = chartCmd.RunE

	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(newTableCmd(app))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))

	return rootCmd
}

// loadConfig reads config.toml from ConfigDir and rebuilds the logger
// from its [logging] section.
func (a *App) loadConfig() error {
	cfg, err := config.Load(a.ConfigDir)
	if err != nil {
		return err
	}
	a.Config = cfg
	a.Logger = logging.NewLoggerWithConfig(cfg.Logging)
	a.Logger.Debug().Str("config_dir", a.configDir()).Msg("Configuration loaded")
	return nil
}

func (a *App) configDir() string {
	if a.ConfigDir != "" {
		return a.ConfigDir
	}
	return config.DefaultConfigDir()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("revcompare v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:         "path",
		Short:       "Show configuration file path",
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			path := config.ConfigPath(app.configDir())
			if output.IsJSON() {
				output.JSON(map[string]string{"path": path})
			} else {
				output.Println(path)
			}
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented config.toml template",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path, err := config.WriteTemplate(app.configDir(), force)
			if err != nil {
				return err
			}
			output.Success("✓ Wrote %s", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.AddCommand(initCmd)

	cmd.AddCommand(&cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration file",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.loadConfig(); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Companies")
	for _, e := range cfg.Entities {
		output.Printf("  %-10s %-6s %s\n", e.Name, e.Symbol, output.Paint(EntityColor(e.Color), e.Color))
	}
	output.Printf("  Window:          %d quarters\n", cfg.Window)
	output.Println()

	output.Bold("Fetch")
	output.Printf("  Base URL:        %s\n", cfg.Fetch.BaseURL)
	output.Printf("  Timeout:         %s\n", cfg.Fetch.Timeout)
	output.Printf("  Requests/sec:    %s\n", formatRate(cfg.Fetch.RequestsPerSecond))
	output.Printf("  Concurrent:      %v\n", cfg.Fetch.Concurrent)
	output.Printf("  History:         %d years\n", cfg.Fetch.HistoryYears)
	output.Println()

	output.Bold("Chart")
	output.Printf("  Size:            %.0fx%.0f in\n", cfg.Chart.Width, cfg.Chart.Height)
	output.Printf("  Font:            %s\n", cfg.Chart.FontVariant)
	output.Printf("  Output:          %s\n", orDefault(cfg.Chart.Output, "viewer"))
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  File:            %v\n", cfg.Logging.File)
}

func formatRate(rps float64) string {
	if rps <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%.1f", rps)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
