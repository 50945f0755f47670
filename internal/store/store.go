package store

import (
	"context"
	"errors"

	"github.com/stayforge/bidflow/internal/bid"
)

// ErrNotFound is returned when no record exists for the requested bid.
var ErrNotFound = errors.New("not found")

// Store persists bid workflow state. Activity entries are append-only;
// bid status updates have idempotent overwrite semantics; SaveRun keeps
// terminal workflow runs for later status queries.
type Store interface {
	RecordActivity(ctx context.Context, entry bid.ActivityEntry) error
	ListActivities(ctx context.Context, bidID string) ([]bid.ActivityEntry, error)
	UpdateBidStatus(ctx context.Context, bidID, status string, acceptedRoomTypes []string) error
	SaveRun(ctx context.Context, run bid.Run) error
	GetRun(ctx context.Context, bidID string) (*bid.Run, error)
}
