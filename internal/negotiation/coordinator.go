// Package negotiation crafts counter-proposals for bids whose rates
// exceed buyer expectations and tracks negotiation round transitions.
package negotiation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stayforge/bidflow/internal/bid"
	"github.com/stayforge/bidflow/internal/notify"
	"github.com/stayforge/bidflow/internal/store"
)

// Coordinator runs the negotiation stage.
type Coordinator struct {
	store    store.Store
	notifier notify.Notifier
}

func NewCoordinator(st store.Store, notifier notify.Notifier) *Coordinator {
	return &Coordinator{store: st, notifier: notifier}
}

// InitiateRequest carries the comparison set that triggered negotiation.
type InitiateRequest struct {
	BidID        string
	RFPID        string
	SupplierID   string
	CurrentRound int
	MaxRounds    int
	Comparisons  []bid.RateComparison
}

// Initiate builds a counter-proposal from the failing comparisons,
// advances the round by exactly one, records the activity, marks the
// bid as negotiating and notifies the supplier. Notification delivery
// is best effort.
func (c *Coordinator) Initiate(ctx context.Context, req InitiateRequest) (bid.NegotiationOutcome, error) {
	var failing []bid.RateComparison
	for _, comp := range req.Comparisons {
		if !comp.MeetsExpectation {
			failing = append(failing, comp)
		}
	}

	counterProposal := make([]bid.CounterRate, len(failing))
	for i, comp := range failing {
		counterProposal[i] = bid.CounterRate{
			RoomType:    comp.RoomType,
			TargetRate:  comp.ExpectedRate,
			CurrentRate: comp.SupplierRate,
		}
	}

	message := buildMessage(failing, req.CurrentRound, req.MaxRounds)
	newRound := req.CurrentRound + 1

	entry := bid.NewActivityEntry(req.BidID, bid.AgentNegotiation,
		fmt.Sprintf("Negotiation initiated - Round %d", newRound),
		map[string]any{
			"round":                     newRound,
			"maxRounds":                 req.MaxRounds,
			"message":                   message,
			"counterProposal":           counterProposal,
			"ratesRequiringNegotiation": len(failing),
		})
	if err := c.store.RecordActivity(ctx, entry); err != nil {
		return bid.NegotiationOutcome{}, fmt.Errorf("record negotiation activity: %w", err)
	}
	if err := c.store.UpdateBidStatus(ctx, req.BidID, bid.StatusNegotiating, nil); err != nil {
		return bid.NegotiationOutcome{}, fmt.Errorf("update bid status: %w", err)
	}

	subject := fmt.Sprintf("Rate Negotiation Request - Round %d of %d", newRound, req.MaxRounds)
	body := message + "\n\nCOUNTER-PROPOSAL:\n" + renderCounterProposal(counterProposal)
	if delivered, err := c.notifier.Send(ctx, req.SupplierID, subject, body); err != nil || !delivered {
		slog.WarnContext(ctx, "negotiation notification not delivered",
			"bid_id", req.BidID, "supplier_id", req.SupplierID, "error", err)
	}

	return bid.NegotiationOutcome{
		BidID:           req.BidID,
		NewRound:        newRound,
		Message:         message,
		CounterProposal: counterProposal,
	}, nil
}

// Response is a supplier's revised-rate reply to a counter-proposal.
type Response struct {
	BidID        string
	RFPID        string
	SupplierID   string
	NewRates     []bid.RoomRate
	CurrentRound int
	MaxRounds    int
}

// ResponseCheck reports whether another negotiation round is allowed.
type ResponseCheck struct {
	ShouldContinue bool   `json:"shouldContinue"`
	Reason         string `json:"reason"`
}

// ReceiveResponse records the supplier response and applies the round
// guard. It does not re-run comparison; the orchestrator feeds the new
// rates back through rate analysis.
func (c *Coordinator) ReceiveResponse(ctx context.Context, resp Response) (ResponseCheck, error) {
	entry := bid.NewActivityEntry(resp.BidID, bid.AgentNegotiation,
		fmt.Sprintf("Supplier response received - Round %d", resp.CurrentRound),
		map[string]any{
			"round":    resp.CurrentRound,
			"newRates": resp.NewRates,
		})
	if err := c.store.RecordActivity(ctx, entry); err != nil {
		return ResponseCheck{}, fmt.Errorf("record response activity: %w", err)
	}

	if resp.CurrentRound >= resp.MaxRounds {
		return ResponseCheck{
			ShouldContinue: false,
			Reason:         fmt.Sprintf("Maximum negotiation rounds (%d) reached", resp.MaxRounds),
		}, nil
	}
	return ResponseCheck{ShouldContinue: true, Reason: "Negotiation can continue"}, nil
}

func buildMessage(failing []bid.RateComparison, currentRound, maxRounds int) string {
	var b strings.Builder
	b.WriteString("Thank you for your bid submission. After review, we found that some rates exceed our budget expectations:\n\n")
	for _, comp := range failing {
		fmt.Fprintf(&b, "- %s: $%s (%s%% above target)\n",
			comp.RoomType, comp.SupplierRate.StringFixed(2), comp.PercentageDifference.StringFixed(2))
	}
	b.WriteString("\nWe would appreciate if you could consider adjusting these rates to be more competitive. ")
	fmt.Fprintf(&b, "This is round %d of %d negotiation rounds.\n\n", currentRound+1, maxRounds)
	if maxRounds-currentRound == 1 {
		b.WriteString("Please note this is the final negotiation round. ")
	}
	b.WriteString("We look forward to your revised proposal.")
	return b.String()
}

func renderCounterProposal(counterProposal []bid.CounterRate) string {
	lines := make([]string, len(counterProposal))
	for i, cr := range counterProposal {
		lines[i] = fmt.Sprintf("- %s: target $%s (currently $%s)",
			cr.RoomType, cr.TargetRate.StringFixed(2), cr.CurrentRate.StringFixed(2))
	}
	return strings.Join(lines, "\n")
}
