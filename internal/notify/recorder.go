package notify

import (
	"context"
	"sync"
)

// SentMessage is one message captured by a Recorder.
type SentMessage struct {
	TargetID string
	Subject  string
	Body     string
}

// Recorder captures outbound messages for tests. Err and Delivered
// configure the result returned by Send.
type Recorder struct {
	mu        sync.Mutex
	messages  []SentMessage
	Err       error
	Delivered bool
}

func NewRecorder() *Recorder {
	return &Recorder{Delivered: true}
}

func (r *Recorder) Send(ctx context.Context, targetID, subject, body string) (bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, SentMessage{TargetID: targetID, Subject: subject, Body: body})
	if r.Err != nil {
		return false, r.Err
	}
	return r.Delivered, nil
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []SentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SentMessage, len(r.messages))
	copy(out, r.messages)
	return out
}
