// Package insights turns analyzer output into a narrative assessment of a
// repository. Two generators implement the same contract: RuleBased derives
// everything from the metrics, Assisted asks a generative model and falls
// back to the rule-based answers when the model cannot help.
package insights

import (
	"context"

	"github.com/0unveiled/github-analyzer/internal/types"
)

// Input bundles everything a generator may draw on
type Input struct {
	Repository *types.Repository
	Code       *types.CodeMetrics
	Quality    *types.QualityMetrics
	Security   *types.SecurityMetrics
	Stack      *types.TechStack
	Files      []types.FileInfo
}

// Generator produces the insight block of an analysis. Implementations never
// return an error: a generator that cannot do better degrades to rule-based
// content instead of failing the analysis.
type Generator interface {
	Generate(ctx context.Context, in Input) types.Insights
}

// overallQualityScore blends maintainability, architecture and security
func overallQualityScore(in Input) float64 {
	return in.Code.MaintainabilityIndex*0.4 +
		in.Quality.ArchitectureScore*0.3 +
		in.Security.SecurityScore*0.3
}
