package store

import (
	"context"
	"sync"

	"github.com/stayforge/bidflow/internal/bid"
)

type bidRecord struct {
	status            string
	acceptedRoomTypes []string
}

// Memory is an in-process Store used when no database is configured
// and as a test double.
type Memory struct {
	mu         sync.RWMutex
	activities map[string][]bid.ActivityEntry
	bids       map[string]bidRecord
	runs       map[string]bid.Run
}

func NewMemory() *Memory {
	return &Memory{
		activities: make(map[string][]bid.ActivityEntry),
		bids:       make(map[string]bidRecord),
		runs:       make(map[string]bid.Run),
	}
}

func (m *Memory) RecordActivity(ctx context.Context, entry bid.ActivityEntry) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities[entry.BidID] = append(m.activities[entry.BidID], entry)
	return nil
}

func (m *Memory) ListActivities(ctx context.Context, bidID string) ([]bid.ActivityEntry, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.activities[bidID]
	out := make([]bid.ActivityEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (m *Memory) UpdateBidStatus(ctx context.Context, bidID, status string, acceptedRoomTypes []string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms := make([]string, len(acceptedRoomTypes))
	copy(rooms, acceptedRoomTypes)
	m.bids[bidID] = bidRecord{status: status, acceptedRoomTypes: rooms}
	return nil
}

// BidStatus reports the last persisted status for a bid.
func (m *Memory) BidStatus(bidID string) (status string, acceptedRoomTypes []string, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.bids[bidID]
	if !ok {
		return "", nil, false
	}
	return rec.status, rec.acceptedRoomTypes, true
}

func (m *Memory) SaveRun(ctx context.Context, run bid.Run) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.BidID] = run
	return nil
}

func (m *Memory) GetRun(ctx context.Context, bidID string) (*bid.Run, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[bidID]
	if !ok {
		return nil, ErrNotFound
	}
	out := run
	return &out, nil
}
