package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"company_historicals/pkg/core/companies/service"
	"company_historicals/pkg/core/historical"
	"company_historicals/pkg/core/legacy"
	"company_historicals/pkg/core/payload"
	"company_historicals/pkg/core/registry"
	"company_historicals/pkg/core/report"
	"company_historicals/pkg/core/store"
)

var (
	calcLegacy bool
	calcSave   bool
	calcOut    string

	reportHTML bool
	reportOut  string
	reportRun  string
)

var validateCmd = &cobra.Command{
	Use:   "validate <company-type> <file>",
	Short: "Validate historical data without calculating",
	Long: `Validates historical data against the company type's required fields.

Errors make the data unusable; warnings flag implausible values.
The command fails when the data is invalid.

Examples:
  historicals validate service data.json
  cat data.hjson | historicals validate saas -`,
	Args: cobra.ExactArgs(2),
	RunE: runValidate,
}

var calculateCmd = &cobra.Command{
	Use:   "calculate <company-type> <file>",
	Short: "Calculate statements, metrics and projections",
	Long: `Calculates historical statements and KPIs and prints the result as JSON.
Undefined metrics (zero denominators) are printed as null.

Examples:
  historicals calculate retail data.json
  historicals calculate service legacy.json --legacy
  historicals calculate saas data.json --save`,
	Args: cobra.ExactArgs(2),
	RunE: runCalculate,
}

var reportCmd = &cobra.Command{
	Use:   "report [<company-type> <file>]",
	Short: "Render a calculation as Markdown or HTML",
	Long: `Renders statements and metrics as Markdown tables (or HTML with --html).
Undefined values are shown as N/A.

Examples:
  historicals report service data.json
  historicals report --run 5b0f4f3e-3c1c-4a5e-9c1e-2f1d8b2a9e10 --html --out run.html`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(reportCmd)

	calculateCmd.Flags().BoolVar(&calcLegacy, "legacy", false, "Input is a legacy service payload (historicalServices/historicalExpenses)")
	calculateCmd.Flags().BoolVar(&calcSave, "save", false, "Store the run (Postgres when DATABASE_URL is set, files otherwise)")
	calculateCmd.Flags().StringVarP(&calcOut, "out", "o", "", "Write output to a file")

	reportCmd.Flags().BoolVar(&reportHTML, "html", false, "Render HTML instead of Markdown")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Write output to a file")
	reportCmd.Flags().StringVar(&reportRun, "run", "", "Render a stored run instead of calculating")
}

func runValidate(cmd *cobra.Command, args []string) error {
	input, err := readInput(cmd, args[1])
	if err != nil {
		return err
	}
	req, _, err := payload.DecodeRequest(input)
	if err != nil {
		return err
	}
	outcome, err := reg.ValidateHistoricalData(args[0], req.Data)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, e := range outcome.Errors {
		fmt.Fprintf(out, "ERROR    %s\n", e)
	}
	for _, w := range outcome.Warnings {
		fmt.Fprintf(out, "WARNING  %s\n", w)
	}
	if !outcome.Valid {
		return fmt.Errorf("%d validation errors", len(outcome.Errors))
	}
	fmt.Fprintln(out, "OK")
	return nil
}

// calculate runs the input through the registry, or the legacy adapter when asked.
func calculate(cmd *cobra.Command, companyType, path string, useLegacy bool) (historical.CalculationResult, error) {
	input, err := readInput(cmd, path)
	if err != nil {
		return historical.CalculationResult{}, err
	}

	var res historical.CalculationResult
	if useLegacy {
		if companyType != service.Key {
			return historical.CalculationResult{}, fmt.Errorf("legacy payloads are service payloads, got company type %q", companyType)
		}
		p, err := legacy.Parse(input)
		if err != nil {
			return historical.CalculationResult{}, err
		}
		hours := tuning.For(service.Key).Get("standard_hours_per_period", service.DefaultStandardHours)
		res, err = legacy.Calculate(reg, p, hours)
		if err != nil {
			return historical.CalculationResult{}, explain(cmd, err)
		}
		return res, nil
	}

	req, _, err := payload.DecodeRequest(input)
	if err != nil {
		return historical.CalculationResult{}, err
	}
	res, err = reg.CalculateHistoricalStatements(companyType, req.Data, req.Assumptions)
	if err != nil {
		return historical.CalculationResult{}, explain(cmd, err)
	}
	return res, nil
}

// explain prints every validation error before returning err.
func explain(cmd *cobra.Command, err error) error {
	var invalid *registry.InvalidHistoricalDataError
	if errors.As(err, &invalid) {
		for _, e := range invalid.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "ERROR    %s\n", e)
		}
	}
	return err
}

func runCalculate(cmd *cobra.Command, args []string) error {
	res, err := calculate(cmd, args[0], args[1], calcLegacy)
	if err != nil {
		return err
	}

	if calcSave {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		runs, err := store.Open(ctx, appCfg.DatabaseURL, appCfg.ResultsDir)
		if err != nil {
			return err
		}
		defer runs.Close()
		run, err := runs.Save(ctx, res.Metadata.CompanyType, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved run %s (%s)\n", run.ID, runs.Backend())
	}

	return printJSON(cmd, calcOut, res)
}

func runReport(cmd *cobra.Command, args []string) error {
	var res historical.CalculationResult

	switch {
	case reportRun != "":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		runs, err := store.Open(ctx, appCfg.DatabaseURL, appCfg.ResultsDir)
		if err != nil {
			return err
		}
		defer runs.Close()
		run, err := runs.Get(ctx, reportRun)
		if err != nil {
			return err
		}
		res = run.Result
	case len(args) == 2:
		var err error
		res, err = calculate(cmd, args[0], args[1], false)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("report needs <company-type> <file> or --run <id>")
	}

	desc, err := reg.GetCompanyTypeInfo(res.Metadata.CompanyType)
	if err != nil {
		return err
	}

	markdown := report.Markdown(desc, res)
	if !reportHTML {
		return writeOutput(cmd, reportOut, []byte(markdown))
	}
	html, err := report.HTML(markdown)
	if err != nil {
		return err
	}
	return writeOutput(cmd, reportOut, []byte(html))
}
