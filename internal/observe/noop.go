package observe

import "context"

// NoOp discards all events. Stateless and safe for concurrent use.
type NoOp struct{}

func (NoOp) OnEvent(ctx context.Context, event Event) {}
