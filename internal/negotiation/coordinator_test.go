package negotiation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"

	"github.com/stayforge/bidflow/internal/bid"
	"github.com/stayforge/bidflow/internal/notify"
	"github.com/stayforge/bidflow/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type failingStore struct {
	*store.Memory
	recordErr error
}

func (f *failingStore) RecordActivity(ctx context.Context, entry bid.ActivityEntry) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	return f.Memory.RecordActivity(ctx, entry)
}

func initiateRequest() InitiateRequest {
	return InitiateRequest{
		BidID:        "bid-1",
		RFPID:        "rfp-1",
		SupplierID:   "supplier-1",
		CurrentRound: 0,
		MaxRounds:    3,
		Comparisons: []bid.RateComparison{
			{
				RoomType:             "Standard",
				SupplierRate:         dec("160"),
				ExpectedRate:         dec("150"),
				Difference:           dec("10"),
				PercentageDifference: dec("6.67"),
				MeetsExpectation:     false,
			},
			{
				RoomType:             "Suite",
				SupplierRate:         dec("200"),
				ExpectedRate:         dec("220"),
				Difference:           dec("-20"),
				PercentageDifference: dec("-9.09"),
				MeetsExpectation:     true,
			},
		},
	}
}

func TestInitiate(t *testing.T) {
	st := store.NewMemory()
	recorder := notify.NewRecorder()
	coordinator := NewCoordinator(st, recorder)

	outcome, err := coordinator.Initiate(context.Background(), initiateRequest())
	assert.NoError(t, err)

	check.Equal(t, "bid-1", outcome.BidID)
	check.Equal(t, 1, outcome.NewRound)

	// Counter-proposal covers failing rooms only
	assert.Equal(t, 1, len(outcome.CounterProposal))
	check.Equal(t, "Standard", outcome.CounterProposal[0].RoomType)
	check.Equal(t, dec("150"), outcome.CounterProposal[0].TargetRate)
	check.Equal(t, dec("160"), outcome.CounterProposal[0].CurrentRate)

	check.True(t, strings.Contains(outcome.Message, "Standard: $160.00 (6.67% above target)"))
	check.True(t, strings.Contains(outcome.Message, "round 1 of 3"))
	check.False(t, strings.Contains(outcome.Message, "final negotiation round"))
	check.False(t, strings.Contains(outcome.Message, "Suite"))

	// One activity entry and one outbound notification
	entries, err := st.ListActivities(context.Background(), "bid-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))
	check.Equal(t, bid.AgentNegotiation, entries[0].AgentType)

	messages := recorder.Messages()
	assert.Equal(t, 1, len(messages))
	check.Equal(t, "supplier-1", messages[0].TargetID)
	check.True(t, strings.Contains(messages[0].Body, outcome.Message))
	check.True(t, strings.Contains(messages[0].Body, "COUNTER-PROPOSAL"))

	status, _, ok := st.BidStatus("bid-1")
	check.True(t, ok)
	check.Equal(t, bid.StatusNegotiating, status)
}

func TestInitiateFinalRoundNotice(t *testing.T) {
	st := store.NewMemory()
	coordinator := NewCoordinator(st, notify.NewRecorder())

	req := initiateRequest()
	req.CurrentRound = 2

	outcome, err := coordinator.Initiate(context.Background(), req)
	assert.NoError(t, err)
	check.Equal(t, 3, outcome.NewRound)
	check.True(t, strings.Contains(outcome.Message, "final negotiation round"))
}

func TestInitiateNotificationFailureIsNonFatal(t *testing.T) {
	st := store.NewMemory()
	recorder := notify.NewRecorder()
	recorder.Err = errors.New("smtp unreachable")
	coordinator := NewCoordinator(st, recorder)

	outcome, err := coordinator.Initiate(context.Background(), initiateRequest())
	assert.NoError(t, err)
	check.Equal(t, 1, outcome.NewRound)

	// Activity and status update still happened
	entries, err := st.ListActivities(context.Background(), "bid-1")
	assert.NoError(t, err)
	check.Equal(t, 1, len(entries))
}

func TestInitiateStoreFailure(t *testing.T) {
	st := &failingStore{Memory: store.NewMemory(), recordErr: errors.New("database unavailable")}
	coordinator := NewCoordinator(st, notify.NewRecorder())

	_, err := coordinator.Initiate(context.Background(), initiateRequest())
	assert.Error(t, err)
	check.True(t, errors.Is(err, st.recordErr))
}

func TestReceiveResponse(t *testing.T) {
	tests := []struct {
		name         string
		currentRound int
		maxRounds    int
		want         bool
	}{
		{"rounds remaining", 1, 3, true},
		{"last round reached", 3, 3, false},
		{"past max rounds", 4, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemory()
			coordinator := NewCoordinator(st, notify.NewRecorder())

			result, err := coordinator.ReceiveResponse(context.Background(), Response{
				BidID:        "bid-1",
				RFPID:        "rfp-1",
				SupplierID:   "supplier-1",
				NewRates:     []bid.RoomRate{{RoomType: "Standard", Rate: dec("150")}},
				CurrentRound: tt.currentRound,
				MaxRounds:    tt.maxRounds,
			})
			assert.NoError(t, err)
			check.Equal(t, tt.want, result.ShouldContinue)
			check.NotEqual(t, "", result.Reason)

			entries, err := st.ListActivities(context.Background(), "bid-1")
			assert.NoError(t, err)
			check.Equal(t, 1, len(entries))
		})
	}
}
