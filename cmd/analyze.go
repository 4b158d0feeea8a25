package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geo-cli/internal/model"
)

var (
	analyzeQuery       string
	analyzeBrand       string
	analyzeCompetitors []string
	analyzePlatforms   []string
	analyzeNumQueries  int
	analyzeNoSave      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a visibility analysis for one brand",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		req := model.AnalysisRequest{
			Query:       analyzeQuery,
			BrandDomain: analyzeBrand,
			Competitors: analyzeCompetitors,
			NumQueries:  analyzeNumQueries,
		}
		for _, p := range analyzePlatforms {
			req.Platforms = append(req.Platforms, model.Platform(p))
		}

		result, err := buildOrchestrator().Execute(ctx, req)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		if !analyzeNoSave {
			saveHistory(st, result)
		}

		zap.L().Info("analysis complete",
			zap.String("run_id", result.ID),
			zap.Float64("visibility_rate", result.Comparison.BrandScore.MentionRate),
			zap.Int("observations", len(result.Observations)),
			zap.String("status", string(result.Status)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeQuery, "query", "", "target query, e.g. \"best crm software\" (required)")
	analyzeCmd.Flags().StringVar(&analyzeBrand, "brand", "", "brand domain, e.g. acme.com (required)")
	analyzeCmd.Flags().StringSliceVar(&analyzeCompetitors, "competitors", nil, "competitor domains")
	analyzeCmd.Flags().StringSliceVar(&analyzePlatforms, "platforms", nil, "platforms to query (default all)")
	analyzeCmd.Flags().IntVar(&analyzeNumQueries, "num-queries", 0, "max query variations (default 5)")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "skip saving the run to history")
	_ = analyzeCmd.MarkFlagRequired("query")
	_ = analyzeCmd.MarkFlagRequired("brand")
	rootCmd.AddCommand(analyzeCmd)
}
