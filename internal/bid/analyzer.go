package bid

import (
	"context"
	"fmt"
)

// ActivityRecorder persists audit entries. The store implementations
// satisfy it; the narrow interface keeps the comparator free of a
// store dependency.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, entry ActivityEntry) error
}

// Analyzer runs the rate comparison stage and records its audit trail.
type Analyzer struct {
	recorder ActivityRecorder
}

func NewAnalyzer(recorder ActivityRecorder) *Analyzer {
	return &Analyzer{recorder: recorder}
}

// Analyze compares the submission's rates, decides the next action and
// writes one activity entry carrying the full comparison set and the
// decision reasoning before returning.
func (a *Analyzer) Analyze(ctx context.Context, sub Submission) (Analysis, error) {
	comparisons := Compare(sub.SupplierRates, sub.ExpectedRates)
	result := Decide(comparisons, sub.CurrentRound, sub.MaxRounds)

	entry := NewActivityEntry(sub.BidID, AgentRateComparison,
		fmt.Sprintf("Rate analysis completed - Decision: %s", result.Decision),
		map[string]any{
			"rateComparisons": comparisons,
			"decision":        result.Decision,
			"reasoning":       result.Reasoning,
			"round":           sub.CurrentRound,
			"summary":         Summarize(comparisons),
		})
	if err := a.recorder.RecordActivity(ctx, entry); err != nil {
		return Analysis{}, fmt.Errorf("record rate comparison activity: %w", err)
	}

	return Analysis{
		BidID:       sub.BidID,
		Decision:    result.Decision,
		Reasoning:   result.Reasoning,
		Comparisons: comparisons,
		NextAgent:   result.NextAgent,
	}, nil
}
