package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geo-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect analysis run history",
	Long:  "Commands for listing, viewing, and searching stored analysis runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analysis runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		brand, _ := cmd.Flags().GetString("brand")
		limit, _ := cmd.Flags().GetInt("limit")

		summaries, err := st.ListRecent(ctx, brand, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(summaries) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, summaries)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the full result of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		result, err := st.GetResult(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// -- runs search --

var runsSearchCmd = &cobra.Command{
	Use:   "search <text>...",
	Short: "Find runs similar to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")

		hits, err := st.Search(ctx, strings.Join(args, " "), limit)
		if err != nil {
			return eris.Wrap(err, "runs search")
		}

		if len(hits) == 0 {
			fmt.Fprintln(os.Stderr, "No similar runs found.")
			return nil
		}

		formatSearchHits(os.Stdout, hits)
		return nil
	},
}

// -- runs clear --

var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Clear(ctx); err != nil {
			return eris.Wrap(err, "runs clear")
		}
		fmt.Fprintln(os.Stderr, "History cleared.")
		return nil
	},
}

func formatRunsList(w io.Writer, summaries []store.RunSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tQUERY\tBRAND\tVISIBILITY\tHYPOTHESES\tRECS\tCREATED")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d\t%d\t%s\n",
			s.ID, s.Query, s.Brand, s.VisibilityRate, s.Hypotheses, s.Recommendations,
			s.CreatedAt.Format(time.RFC3339),
		)
	}
	tw.Flush() //nolint:errcheck
}

func formatSearchHits(w io.Writer, hits []store.SearchHit) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tID\tQUERY\tBRAND\tCREATED")
	for _, h := range hits {
		fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\t%s\n",
			h.Score, h.ID, h.Query, h.Brand, h.CreatedAt.Format(time.RFC3339),
		)
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	runsListCmd.Flags().String("brand", "", "filter by brand domain")
	runsListCmd.Flags().Int("limit", 0, "max rows (default 20)")
	runsSearchCmd.Flags().Int("limit", 0, "max hits (default 20)")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsSearchCmd, runsClearCmd)
	rootCmd.AddCommand(runsCmd)
}
