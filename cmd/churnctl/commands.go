package main

import (
	"fmt"
	"os"

	"churn-prediction-service/internal/adapters/primary/http/dto"
	"churn-prediction-service/internal/core/domain"

	"github.com/spf13/cobra"
)

var topN int

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List the customers with the highest churn probability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		top, err := predictions.TopRisk(ctx, topN)
		if err != nil {
			return err
		}
		table, err := predictions.All(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), dto.ToPredictionResponses(table, top))
		}
		printPredictionTable(cmd.OutOrStdout(), top)
		return nil
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <customer-id>",
	Short: "Show the prediction for one customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rec, found, err := predictions.Lookup(ctx, args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %s", domain.ErrCustomerNotFound, args[0])
		}
		table, err := predictions.All(ctx)
		if err != nil {
			return err
		}

		resp := dto.ToPredictionResponse(table, *rec)
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		printPrediction(cmd.OutOrStdout(), table, resp)
		return nil
	},
}

var (
	exportEncoding string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the predictions with their churn label as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := predictions.Export(cmd.Context(), exportEncoding)
		if err != nil {
			return err
		}
		if exportOut == "" || exportOut == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", exportOut, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", len(data), exportOut)
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the churn probability distribution",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := predictions.Summary(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), summary)
		}
		printSummary(cmd.OutOrStdout(), summary)
		return nil
	},
}

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Show the loaded classifier's metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		artifact, err := artifacts.Get(cmd.Context())
		if err != nil {
			return err
		}
		resp := dto.ToModelArtifactResponse(artifact)
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		printModel(cmd.OutOrStdout(), resp)
		return nil
	},
}

func init() {
	topCmd.Flags().IntVarP(&topN, "n", "n", 10, "number of customers to list")
	exportCmd.Flags().StringVar(&exportEncoding, "encoding", "utf-8", "character encoding of the CSV")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
}
