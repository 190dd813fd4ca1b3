package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List supported company types",
	RunE:  runTypes,
}

var infoCmd = &cobra.Command{
	Use:   "info <company-type>",
	Short: "Show required fields, metrics and assumptions for a company type",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var infoJSON bool

func init() {
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Print the descriptor as JSON")
}

func runTypes(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, d := range reg.ListCompanyTypes() {
		fmt.Fprintf(out, "%-10s %s\n", d.Key, d.Label)
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	desc, err := reg.GetCompanyTypeInfo(args[0])
	if err != nil {
		return err
	}
	if infoJSON {
		return printJSON(cmd, "", desc)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", desc.Label, desc.Key)
	fmt.Fprintf(out, "%s\n\n", desc.Description)
	fmt.Fprintf(out, "Required fields:  %s\n", strings.Join(desc.RequiredFields, ", "))
	fmt.Fprintf(out, "Optional fields:  %s\n", strings.Join(desc.OptionalFields, ", "))
	fmt.Fprintf(out, "Metrics:          %s\n", strings.Join(desc.SupportedMetrics, ", "))
	fmt.Fprintf(out, "Assumptions:      %s\n", strings.Join(desc.Assumptions, ", "))
	return nil
}
