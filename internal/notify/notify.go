// Package notify delivers supplier-facing messages. Delivery is best
// effort: callers treat a false result or an error as non-fatal and
// never roll back already-applied state.
package notify

import "context"

// Notifier dispatches one message to one recipient.
type Notifier interface {
	Send(ctx context.Context, targetID, subject, body string) (delivered bool, err error)
}
