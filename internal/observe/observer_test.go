package observe

import (
	"context"
	"testing"
	"time"

	"github.com/peterldowns/testy/check"
)

type capture struct {
	events []Event
}

func (c *capture) OnEvent(ctx context.Context, event Event) {
	_ = ctx
	c.events = append(c.events, event)
}

func TestMultiBroadcasts(t *testing.T) {
	first := &capture{}
	second := &capture{}
	multi := NewMulti(first, second)

	event := Event{
		Type:      EventWorkflowStart,
		Timestamp: time.Now().UTC(),
		Source:    "test",
		Data:      map[string]any{"bid_id": "bid-1"},
	}
	multi.OnEvent(context.Background(), event)

	check.Equal(t, 1, len(first.events))
	check.Equal(t, 1, len(second.events))
	check.Equal(t, EventWorkflowStart, first.events[0].Type)
}

func TestMultiFiltersNilObservers(t *testing.T) {
	only := &capture{}
	multi := NewMulti(nil, only, nil)

	multi.OnEvent(context.Background(), Event{Type: EventStageStart})
	check.Equal(t, 1, len(only.events))
}
