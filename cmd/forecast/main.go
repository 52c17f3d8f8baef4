package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fincast/retirement-forecast/internal/calculation"
	"github.com/fincast/retirement-forecast/internal/config"
	"github.com/fincast/retirement-forecast/internal/output"
)

var (
	configFile string
	format     string
	outFile    string
	verbose    bool
)

// zerologAdapter bridges the engine's Logger seam to zerolog.
type zerologAdapter struct {
	log zerolog.Logger
}

func (z zerologAdapter) Debugf(format string, args ...any) { z.log.Debug().Msgf(format, args...) }
func (z zerologAdapter) Infof(format string, args ...any)  { z.log.Info().Msgf(format, args...) }
func (z zerologAdapter) Warnf(format string, args ...any)  { z.log.Warn().Msgf(format, args...) }
func (z zerologAdapter) Errorf(format string, args ...any) { z.log.Error().Msgf(format, args...) }

func newLogger() calculation.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return zerologAdapter{log: log}
}

func writeResult(data []byte) error {
	if outFile == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outFile, data, 0o644)
}

func newCalculateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calculate",
		Short: "Run the deterministic year-by-year forecast",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(configFile)
			if err != nil {
				return err
			}

			engine, err := calculation.NewForecastEngine(cfg)
			if err != nil {
				return err
			}
			engine.SetLogger(newLogger())

			result := engine.Run()

			formatter, err := output.NewFormatter(format)
			if err != nil {
				return err
			}
			data, err := formatter.Format(result)
			if err != nil {
				return fmt.Errorf("failed to format result: %w", err)
			}
			return writeResult(data)
		},
	}
}

func newMonteCarloCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "montecarlo",
		Short: "Run the forecast with randomized investment returns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(configFile)
			if err != nil {
				return err
			}

			engine, err := calculation.NewForecastEngine(cfg)
			if err != nil {
				return err
			}
			engine.SetLogger(newLogger())
			result := engine.Run()

			simulator := calculation.NewMonteCarloSimulator(cfg)
			simulator.SetLogger(newLogger())
			mc, err := simulator.Run()
			if err != nil {
				return err
			}
			result.MonteCarlo = mc

			formatter, err := output.NewFormatter(format)
			if err != nil {
				return err
			}
			data, err := formatter.Format(result)
			if err != nil {
				return fmt.Errorf("failed to format result: %w", err)
			}
			return writeResult(data)
		},
	}
}

func newExampleConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example-config",
		Short: "Write an example configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewInputParser().ExampleConfiguration()
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal example configuration: %w", err)
			}
			return writeResult(data)
		},
	}
}

func main() {
	root := &cobra.Command{
		Use:   "forecast",
		Short: "Household retirement wealth forecasting",
		Long: "Projects a household's investment wealth year by year, integrating income,\n" +
			"taxes, and expenses against a multi-account portfolio with tax-efficient\n" +
			"withdrawal ordering, plus a Monte Carlo variant with randomized returns.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "forecast.yaml", "configuration file (YAML or TOML)")
	root.PersistentFlags().StringVarP(&format, "format", "f", "json", "output format (csv or json)")
	root.PersistentFlags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newCalculateCmd(), newMonteCarloCmd(), newExampleConfigCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
