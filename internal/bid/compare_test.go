package bid

import (
	"strings"
	"testing"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		supplier []RoomRate
		expected []ExpectedRate
		want     []RateComparison
	}{
		{
			name:     "rate above expectation",
			supplier: []RoomRate{{RoomType: "Standard", Rate: dec("160")}},
			expected: []ExpectedRate{{RoomType: "Standard", ExpectedRate: dec("150")}},
			want: []RateComparison{{
				RoomType:             "Standard",
				SupplierRate:         dec("160"),
				ExpectedRate:         dec("150"),
				Difference:           dec("10"),
				PercentageDifference: dec("6.67"),
				MeetsExpectation:     false,
			}},
		},
		{
			name:     "rate below expectation",
			supplier: []RoomRate{{RoomType: "Suite", Rate: dec("140")}},
			expected: []ExpectedRate{{RoomType: "Suite", ExpectedRate: dec("150")}},
			want: []RateComparison{{
				RoomType:             "Suite",
				SupplierRate:         dec("140"),
				ExpectedRate:         dec("150"),
				Difference:           dec("-10"),
				PercentageDifference: dec("-6.67"),
				MeetsExpectation:     true,
			}},
		},
		{
			name:     "rate at expectation",
			supplier: []RoomRate{{RoomType: "Standard", Rate: dec("150")}},
			expected: []ExpectedRate{{RoomType: "Standard", ExpectedRate: dec("150")}},
			want: []RateComparison{{
				RoomType:             "Standard",
				SupplierRate:         dec("150"),
				ExpectedRate:         dec("150"),
				Difference:           dec("0"),
				PercentageDifference: dec("0"),
				MeetsExpectation:     true,
			}},
		},
		{
			name:     "expected room without supplier rate is skipped",
			supplier: []RoomRate{{RoomType: "Standard", Rate: dec("100")}},
			expected: []ExpectedRate{
				{RoomType: "Standard", ExpectedRate: dec("120")},
				{RoomType: "Suite", ExpectedRate: dec("200")},
			},
			want: []RateComparison{{
				RoomType:             "Standard",
				SupplierRate:         dec("100"),
				ExpectedRate:         dec("120"),
				Difference:           dec("-20"),
				PercentageDifference: dec("-16.67"),
				MeetsExpectation:     true,
			}},
		},
		{
			name:     "supplier room without expected rate is ignored",
			supplier: []RoomRate{
				{RoomType: "Penthouse", Rate: dec("900")},
				{RoomType: "Standard", Rate: dec("100")},
			},
			expected: []ExpectedRate{{RoomType: "Standard", ExpectedRate: dec("100")}},
			want: []RateComparison{{
				RoomType:             "Standard",
				SupplierRate:         dec("100"),
				ExpectedRate:         dec("100"),
				Difference:           dec("0"),
				PercentageDifference: dec("0"),
				MeetsExpectation:     true,
			}},
		},
		{
			name:     "no overlap yields empty comparison set",
			supplier: []RoomRate{{RoomType: "Penthouse", Rate: dec("900")}},
			expected: []ExpectedRate{{RoomType: "Standard", ExpectedRate: dec("100")}},
			want:     []RateComparison{},
		},
		{
			name:     "zero expected rate does not divide",
			supplier: []RoomRate{{RoomType: "Standard", Rate: dec("50")}},
			expected: []ExpectedRate{{RoomType: "Standard", ExpectedRate: dec("0")}},
			want: []RateComparison{{
				RoomType:             "Standard",
				SupplierRate:         dec("50"),
				ExpectedRate:         dec("0"),
				Difference:           dec("50"),
				PercentageDifference: dec("0"),
				MeetsExpectation:     false,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.supplier, tt.expected)
			check.Equal(t, tt.want, got)
		})
	}
}

func TestComparePure(t *testing.T) {
	supplier := []RoomRate{
		{RoomType: "Standard", Rate: dec("160")},
		{RoomType: "Suite", Rate: dec("210")},
	}
	expected := []ExpectedRate{
		{RoomType: "Standard", ExpectedRate: dec("150")},
		{RoomType: "Suite", ExpectedRate: dec("220")},
	}

	first := Compare(supplier, expected)
	second := Compare(supplier, expected)
	check.Equal(t, first, second)
}

func TestDecide(t *testing.T) {
	meets := RateComparison{RoomType: "Standard", PercentageDifference: dec("-2.00"), MeetsExpectation: true}
	fails := RateComparison{RoomType: "Suite", PercentageDifference: dec("6.67"), MeetsExpectation: false}

	tests := []struct {
		name          string
		comparisons   []RateComparison
		currentRound  int
		maxRounds     int
		wantDecision  Decision
		wantNextAgent NextAgent
	}{
		{
			name:          "all rates meet expectation",
			comparisons:   []RateComparison{meets, {RoomType: "Suite", MeetsExpectation: true}},
			currentRound:  0,
			maxRounds:     3,
			wantDecision:  DecisionAutoAccept,
			wantNextAgent: NextAgentDisposition,
		},
		{
			name:          "empty comparison set is vacuously accepted",
			comparisons:   nil,
			currentRound:  0,
			maxRounds:     3,
			wantDecision:  DecisionAutoAccept,
			wantNextAgent: NextAgentDisposition,
		},
		{
			name:          "failing rate with rounds remaining",
			comparisons:   []RateComparison{meets, fails},
			currentRound:  0,
			maxRounds:     3,
			wantDecision:  DecisionNegotiate,
			wantNextAgent: NextAgentNegotiation,
		},
		{
			name:          "failing rate on last available round",
			comparisons:   []RateComparison{fails},
			currentRound:  2,
			maxRounds:     3,
			wantDecision:  DecisionNegotiate,
			wantNextAgent: NextAgentNegotiation,
		},
		{
			name:          "failing rate with rounds exhausted",
			comparisons:   []RateComparison{fails},
			currentRound:  3,
			maxRounds:     3,
			wantDecision:  DecisionDecline,
			wantNextAgent: NextAgentDisposition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.comparisons, tt.currentRound, tt.maxRounds)
			check.Equal(t, tt.wantDecision, got.Decision)
			check.Equal(t, tt.wantNextAgent, got.NextAgent)
			check.NotEqual(t, "", got.Reasoning)
		})
	}
}

func TestDecideReasoningListsFailingRooms(t *testing.T) {
	comparisons := []RateComparison{
		{RoomType: "Standard", PercentageDifference: dec("6.67"), MeetsExpectation: false},
		{RoomType: "Suite", PercentageDifference: dec("-1.00"), MeetsExpectation: true},
		{RoomType: "Deluxe", PercentageDifference: dec("12.50"), MeetsExpectation: false},
	}

	got := Decide(comparisons, 0, 3)
	check.Equal(t, DecisionNegotiate, got.Decision)
	check.True(t, strings.Contains(got.Reasoning, "Standard (6.67% above)"))
	check.True(t, strings.Contains(got.Reasoning, "Deluxe (12.50% above)"))
	check.True(t, strings.Contains(got.Reasoning, "Round 1/3"))
	check.False(t, strings.Contains(got.Reasoning, "Suite"))
}

func TestSummarize(t *testing.T) {
	comparisons := []RateComparison{
		{RoomType: "Standard", Difference: dec("10"), PercentageDifference: dec("6.67"), MeetsExpectation: false},
		{RoomType: "Suite", Difference: dec("-20"), PercentageDifference: dec("-9.09"), MeetsExpectation: true},
	}

	got := Summarize(comparisons)
	check.Equal(t, 2, got.TotalRooms)
	check.Equal(t, 1, got.RoomsMeetingExpectation)
	check.Equal(t, dec("-1.21"), got.AveragePercentageDifference)
	check.Equal(t, dec("20"), got.TotalPotentialSavings)
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	check.Equal(t, 0, got.TotalRooms)
	check.Equal(t, 0, got.RoomsMeetingExpectation)
}
