package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"company_historicals/pkg/core/config"
	"company_historicals/pkg/core/registry"
	"company_historicals/pkg/logger"
)

var (
	tuningPath string
	logLevel   string

	appCfg config.AppConfig
	tuning config.Config
	reg    *registry.Registry
)

var rootCmd = &cobra.Command{
	Use:   "historicals",
	Short: "Historical financial statements and KPIs by company type",
	Long: `historicals builds income statements, balance sheets, cash flow
statements and company-type KPIs from historical data.

Company types:
  service  - professional services (utilization, billable hours)
  retail   - store-based retail (inventory turnover, sales density)
  saas     - subscription software (churn, ARPU, CAC, LTV)

Input files are JSON or Hjson: {"data": {...}, "assumptions": {...}}.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tuningPath, "config", "", "Company type tuning file (default: $HISTORICALS_CONFIG or "+config.DefaultTuningPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (default: $LOG_LEVEL or info)")
}

func setup(cmd *cobra.Command, args []string) error {
	appCfg = config.LoadEnv()
	if tuningPath != "" {
		appCfg.TuningPath = tuningPath
	}
	if logLevel != "" {
		appCfg.LogLevel = logLevel
	}
	// Logs go to stderr so command output can be piped.
	logger.InitWithWriter(appCfg.LogLevel, cmd.ErrOrStderr())

	var err error
	tuning, err = config.Load(appCfg.TuningPath)
	if err != nil {
		return err
	}
	reg, err = registry.Default(tuning)
	return err
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes to outPath, or to the command's stdout when it is empty.
func writeOutput(cmd *cobra.Command, outPath string, data []byte) error {
	if outPath == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", outPath)
	return nil
}

func printJSON(cmd *cobra.Command, outPath string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(cmd, outPath, append(data, '\n'))
}
