package orchestrator

import (
	"strings"

	"github.com/sells-group/geo-cli/internal/model"
)

// maxVariations caps the query expansion regardless of NumQueries.
const maxVariations = 5

// plan is the output of the planning stage.
type plan struct {
	variations []string
	platforms  []model.Platform
	narrative  string
}

// queryVariations expands the original query deterministically. The original
// query always comes first; prefix transforms are skipped when the query
// already starts with them.
func queryVariations(query string) []string {
	variations := []string{query}

	lower := strings.ToLower(query)
	if !strings.HasPrefix(lower, "best") {
		variations = append(variations, "best "+query)
	}
	if !strings.HasPrefix(lower, "top") {
		variations = append(variations, "top "+query)
	}
	variations = append(variations, query+" comparison")
	variations = append(variations, query+" for businesses")

	if len(variations) > maxVariations {
		variations = variations[:maxVariations]
	}
	return variations
}
