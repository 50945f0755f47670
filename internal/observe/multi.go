package observe

import "context"

// Multi broadcasts events to multiple wrapped observers. Provide all
// observers at construction; the set is not safe to modify afterwards.
type Multi struct {
	observers []Observer
}

// NewMulti filters out nil observers to prevent nil pointer panics.
func NewMulti(observers ...Observer) *Multi {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			filtered = append(filtered, obs)
		}
	}
	return &Multi{observers: filtered}
}

func (m *Multi) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}
