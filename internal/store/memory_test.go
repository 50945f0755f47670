package store

import (
	"context"
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/stayforge/bidflow/internal/bid"
)

func TestMemoryActivitiesAppendInOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first := bid.NewActivityEntry("bid-1", bid.AgentRateComparison, "Rate comparison completed", nil)
	second := bid.NewActivityEntry("bid-1", bid.AgentNegotiation, "Negotiation initiated - Round 1", nil)
	other := bid.NewActivityEntry("bid-2", bid.AgentRateComparison, "Rate comparison completed", nil)

	assert.NoError(t, m.RecordActivity(ctx, first))
	assert.NoError(t, m.RecordActivity(ctx, second))
	assert.NoError(t, m.RecordActivity(ctx, other))

	entries, err := m.ListActivities(ctx, "bid-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(entries))
	check.Equal(t, first.ID, entries[0].ID)
	check.Equal(t, second.ID, entries[1].ID)

	entries, err = m.ListActivities(ctx, "bid-2")
	assert.NoError(t, err)
	check.Equal(t, 1, len(entries))
}

func TestMemoryListActivitiesUnknownBid(t *testing.T) {
	m := NewMemory()
	entries, err := m.ListActivities(context.Background(), "missing")
	assert.NoError(t, err)
	check.Equal(t, 0, len(entries))
}

func TestMemoryUpdateBidStatus(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	assert.NoError(t, m.UpdateBidStatus(ctx, "bid-1", bid.StatusNegotiating, nil))
	status, rooms, ok := m.BidStatus("bid-1")
	check.True(t, ok)
	check.Equal(t, bid.StatusNegotiating, status)
	check.Equal(t, 0, len(rooms))

	// Later updates replace the record
	assert.NoError(t, m.UpdateBidStatus(ctx, "bid-1", bid.StatusAccepted, []string{"Standard", "Suite"}))
	status, rooms, ok = m.BidStatus("bid-1")
	check.True(t, ok)
	check.Equal(t, bid.StatusAccepted, status)
	check.Equal(t, []string{"Standard", "Suite"}, rooms)

	_, _, ok = m.BidStatus("missing")
	check.False(t, ok)
}

func TestMemoryRuns(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.GetRun(ctx, "bid-1")
	assert.Error(t, err)
	check.True(t, errors.Is(err, ErrNotFound))

	first := bid.Run{ID: "run-1", BidID: "bid-1", Status: bid.RunCompleted}
	assert.NoError(t, m.SaveRun(ctx, first))

	got, err := m.GetRun(ctx, "bid-1")
	assert.NoError(t, err)
	check.Equal(t, "run-1", got.ID)

	// The latest run for a bid wins
	second := bid.Run{ID: "run-2", BidID: "bid-1", Status: bid.RunCompleted}
	assert.NoError(t, m.SaveRun(ctx, second))

	got, err = m.GetRun(ctx, "bid-1")
	assert.NoError(t, err)
	check.Equal(t, "run-2", got.ID)
}
