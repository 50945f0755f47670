package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Webhook delivers messages by POSTing JSON to an external dispatcher
// (an email gateway or in-app notification service).
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	TargetID string `json:"target_id"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

func (n *Webhook) Send(ctx context.Context, targetID, subject, body string) (bool, error) {
	payload, err := json.Marshal(webhookPayload{TargetID: targetID, Subject: subject, Body: body})
	if err != nil {
		return false, fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("notification dispatch returned status %d", resp.StatusCode)
	}
	return true, nil
}
