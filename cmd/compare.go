package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geo-cli/internal/model"
)

var compareQuery string

var compareCmd = &cobra.Command{
	Use:   "compare <brand-domain> <competitor-domain>...",
	Short: "Compare visibility of a brand against competitors",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		req := model.AnalysisRequest{
			Query:       compareQuery,
			BrandDomain: args[0],
			Competitors: args[1:],
		}

		result, err := buildOrchestrator().Execute(ctx, req)
		if err != nil {
			return eris.Wrap(err, "compare")
		}
		saveHistory(st, result)

		formatComparison(os.Stdout, result)
		return nil
	},
}

// formatComparison prints the brand row first, then competitors in their
// ranked order with the gap relative to the brand.
func formatComparison(w io.Writer, result *model.Result) {
	fmt.Fprintf(w, "Run %s  query=%q  status=%s\n\n", result.ID, result.Request.Query, result.Status)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DOMAIN\tMENTIONS\tRATE\tGAP VS BRAND")

	brand := result.Comparison.BrandScore
	fmt.Fprintf(tw, "%s (brand)\t%d\t%.2f\t-\n", brand.Domain, brand.TotalMentions, brand.MentionRate)
	for _, cs := range result.Comparison.CompetitorScores {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%+.2f\n", cs.Domain, cs.TotalMentions, cs.MentionRate, cs.MentionRate-brand.MentionRate)
	}
	tw.Flush() //nolint:errcheck

	fmt.Fprintf(w, "\n%s\n", result.Summary)
}

func init() {
	compareCmd.Flags().StringVar(&compareQuery, "query", "", "target query (required)")
	_ = compareCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(compareCmd)
}
