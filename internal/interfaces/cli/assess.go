package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/complyhub/gst-sentinel/pkg/client"
)

func newAssessCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "assess [client-id]",
		Short: "Run a compliance risk assessment",
		Long: "Assess one client by ID, or every active client with --all.\n" +
			"The command talks to a running API server (see --server).",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			if all == (len(args) == 1) {
				return fmt.Errorf("provide exactly one of: a client-id argument, or --all")
			}

			api, err := cliCtx.apiClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			if all {
				job, err := api.Risk().RunBatch(ctx)
				if err != nil {
					return err
				}
				if strings.ToLower(cliCtx.OutputFormat) == "json" {
					return printJSON(cmd, job)
				}
				return printText(cmd, fmt.Sprintf(
					"batch %s: %s (processed=%d successful=%d failed=%d)",
					job.ID, job.Status, job.ProcessedCount, job.SuccessfulCount, job.FailedCount))
			}

			clientID := args[0]
			if _, err := uuid.Parse(clientID); err != nil {
				return fmt.Errorf("client-id must be a valid UUID: %s", clientID)
			}

			record, err := api.Risk().Assess(ctx, clientID)
			if err != nil {
				return err
			}
			if strings.ToLower(cliCtx.OutputFormat) == "json" {
				return printJSON(cmd, record)
			}
			return printText(cmd, formatRiskRecord(record))
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "assess every active client (batch run)")
	return cmd
}

// formatRiskRecord renders a risk record for terminal output.
func formatRiskRecord(r *client.RiskRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "client %s: score=%d status=%s\n", r.ClientID, r.RiskScore, r.ComplianceStatus)
	fmt.Fprintf(&sb, "  filing_trend=%d document_compliance=%d itc_compliance=%d\n",
		r.FilingTrendScore, r.DocumentComplianceScore, r.ITCComplianceScore)
	if r.PreviousRiskScore != nil {
		change := ""
		if r.ScoreChangePercentage != nil {
			change = fmt.Sprintf(" (%+.1f%%)", *r.ScoreChangePercentage)
		}
		fmt.Fprintf(&sb, "  previous_score=%d%s\n", *r.PreviousRiskScore, change)
	}
	for _, action := range r.RecommendedActions {
		fmt.Fprintf(&sb, "  - %s\n", action)
	}
	return strings.TrimRight(sb.String(), "\n")
}
