package bid

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Compare evaluates supplier rates against the buyer's expected rates,
// one comparison per room type present in both sets. Room types missing
// from either set produce no comparison: they are neither accepted nor
// blocked. Percentage difference is rounded to two decimal places.
func Compare(supplierRates []RoomRate, expectedRates []ExpectedRate) []RateComparison {
	byRoom := make(map[string]RoomRate, len(supplierRates))
	for _, r := range supplierRates {
		byRoom[r.RoomType] = r
	}

	comparisons := make([]RateComparison, 0, len(expectedRates))
	for _, expected := range expectedRates {
		supplier, ok := byRoom[expected.RoomType]
		if !ok {
			continue
		}

		difference := supplier.Rate.Sub(expected.ExpectedRate)
		percentage := decimal.Zero
		if !expected.ExpectedRate.IsZero() {
			percentage = difference.Div(expected.ExpectedRate).Mul(hundred).Round(2)
		}

		comparisons = append(comparisons, RateComparison{
			RoomType:             expected.RoomType,
			SupplierRate:         supplier.Rate,
			ExpectedRate:         expected.ExpectedRate,
			Difference:           difference,
			PercentageDifference: percentage,
			MeetsExpectation:     supplier.Rate.LessThanOrEqual(expected.ExpectedRate),
		})
	}
	return comparisons
}

// DecisionResult pairs a decision with its reasoning and routing.
type DecisionResult struct {
	Decision  Decision
	Reasoning string
	NextAgent NextAgent
}

// Decide applies the disposition rules, in order:
//  1. every comparison meets expectation (vacuously true when empty): auto-accept
//  2. failures remain and rounds remain: negotiate
//  3. failures remain and rounds are exhausted: decline
func Decide(comparisons []RateComparison, currentRound, maxRounds int) DecisionResult {
	var failing []RateComparison
	for _, c := range comparisons {
		if !c.MeetsExpectation {
			failing = append(failing, c)
		}
	}

	if len(failing) == 0 {
		return DecisionResult{
			Decision:  DecisionAutoAccept,
			Reasoning: "All submitted rates meet or beat buyer expectations. Triggering automatic acceptance.",
			NextAgent: NextAgentDisposition,
		}
	}

	if currentRound < maxRounds {
		rooms := make([]string, len(failing))
		for i, c := range failing {
			rooms[i] = fmt.Sprintf("%s (%s%% above)", c.RoomType, c.PercentageDifference.StringFixed(2))
		}
		return DecisionResult{
			Decision: DecisionNegotiate,
			Reasoning: fmt.Sprintf("Rates above expectation for: %s. Initiating negotiation (Round %d/%d).",
				strings.Join(rooms, ", "), currentRound+1, maxRounds),
			NextAgent: NextAgentNegotiation,
		}
	}

	return DecisionResult{
		Decision: DecisionDecline,
		Reasoning: fmt.Sprintf("Maximum negotiation rounds (%d) reached. Rates still above expectation. Declining bid.",
			maxRounds),
		NextAgent: NextAgentDisposition,
	}
}

// Summarize aggregates a comparison set for reporting.
func Summarize(comparisons []RateComparison) RateSummary {
	summary := RateSummary{TotalRooms: len(comparisons)}
	if len(comparisons) == 0 {
		return summary
	}

	percentageSum := decimal.Zero
	savings := decimal.Zero
	for _, c := range comparisons {
		if c.MeetsExpectation {
			summary.RoomsMeetingExpectation++
		}
		percentageSum = percentageSum.Add(c.PercentageDifference)
		if c.Difference.IsNegative() {
			savings = savings.Add(c.Difference.Abs())
		}
	}
	summary.AveragePercentageDifference = percentageSum.Div(decimal.NewFromInt(int64(len(comparisons)))).Round(2)
	summary.TotalPotentialSavings = savings.Round(2)
	return summary
}
