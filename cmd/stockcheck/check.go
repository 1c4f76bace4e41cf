package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aluiziolira/go-stock-locator/orchestrator"
	"github.com/aluiziolira/go-stock-locator/output"
)

var checkCmd = &cobra.Command{
	Use:   "check <product-url>",
	Short: "Check stock for one product without prompting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, _ := cmd.Flags().GetInt("variant")
		postcode, _ := cmd.Flags().GetString("postcode")
		outFile, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")

		// Fail on a bad format before any page is rendered.
		if outFile != "" {
			if err := output.ValidateFormat(format); err != nil {
				return err
			}
		}

		return withApp(cmd, func(a *app) error {
			report, err := a.orchestrator.Check(cmd.Context(), orchestrator.Request{
				URL:        args[0],
				Variant:    variant,
				PostalCode: postcode,
			})
			if err != nil {
				return err
			}

			orchestrator.PrintReport(cmd.OutOrStdout(), report)
			if outFile == "" {
				return nil
			}
			if err := output.Export(format, outFile, report); err != nil {
				return err
			}
			zap.L().Info("report exported", zap.String("file", outFile), zap.String("format", format))
			return nil
		})
	},
}

func init() {
	checkCmd.Flags().Int("variant", 0, "1-based variant number (required when the product has several)")
	checkCmd.Flags().String("postcode", "", "4-digit postal code filter")
	checkCmd.Flags().String("output", "", "export the report to this file")
	checkCmd.Flags().String("format", "csv", "export format: csv, json or yaml")
	rootCmd.AddCommand(checkCmd)
}
