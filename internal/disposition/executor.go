// Package disposition applies the terminal accept/decline action to a
// bid: audit entry, authoritative status update, then best-effort
// supplier notification, in that order.
package disposition

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stayforge/bidflow/internal/bid"
	"github.com/stayforge/bidflow/internal/notify"
	"github.com/stayforge/bidflow/internal/store"
)

// Executor runs the bid disposition stage.
type Executor struct {
	store    store.Store
	notifier notify.Notifier
}

func NewExecutor(st store.Store, notifier notify.Notifier) *Executor {
	return &Executor{store: st, notifier: notifier}
}

// Request carries a terminal decision into execution.
type Request struct {
	BidID        string
	RFPID        string
	SupplierID   string
	Action       bid.Action
	Reason       string
	RateType     bid.RateType
	FinalRates   []bid.RoomRate
	AllRoomTypes []string
}

// Execute finalizes the bid. On accept, every room type is accepted
// for both LRA and NLRA rates; on decline none are. The status update
// is authoritative: a notification failure is logged and reflected in
// EmailSent but never rolls the status back.
func (e *Executor) Execute(ctx context.Context, req Request) (bid.DispositionOutcome, error) {
	acceptedRoomTypes := []string{}
	if req.Action == bid.ActionAccept {
		acceptedRoomTypes = acceptAllRoomTypes(req.AllRoomTypes)
	}

	subject, body := emailContent(req.Action, req.Reason, acceptedRoomTypes, req.FinalRates)

	activityAction := "Bid declined"
	if req.Action == bid.ActionAccept {
		activityAction = "Bid accepted"
	}
	entry := bid.NewActivityEntry(req.BidID, bid.AgentDisposition, activityAction,
		map[string]any{
			"action":            req.Action,
			"reason":            req.Reason,
			"acceptedRoomTypes": acceptedRoomTypes,
			"finalRates":        req.FinalRates,
			"rateType":          req.RateType,
		})
	if err := e.store.RecordActivity(ctx, entry); err != nil {
		return bid.DispositionOutcome{}, fmt.Errorf("record disposition activity: %w", err)
	}

	status := bid.StatusDeclined
	if req.Action == bid.ActionAccept {
		status = bid.StatusAccepted
	}
	if err := e.store.UpdateBidStatus(ctx, req.BidID, status, acceptedRoomTypes); err != nil {
		return bid.DispositionOutcome{}, fmt.Errorf("update bid status: %w", err)
	}

	delivered, err := e.notifier.Send(ctx, req.SupplierID, subject, body)
	if err != nil {
		slog.WarnContext(ctx, "disposition notification not delivered",
			"bid_id", req.BidID, "supplier_id", req.SupplierID, "error", err)
		delivered = false
	}

	return bid.DispositionOutcome{
		BidID:             req.BidID,
		FinalAction:       req.Action,
		AcceptedRoomTypes: acceptedRoomTypes,
		EmailSent:         delivered,
	}, nil
}

// acceptAllRoomTypes implements the rate-type-independent acceptance
// rule: LRA and NLRA both accept the full room type set.
func acceptAllRoomTypes(allRoomTypes []string) []string {
	out := make([]string, len(allRoomTypes))
	copy(out, allRoomTypes)
	return out
}

func emailContent(action bid.Action, reason string, acceptedRoomTypes []string, finalRates []bid.RoomRate) (subject, body string) {
	if action != bid.ActionAccept {
		return "RFP Bid Decision - Not Selected", fmt.Sprintf(`Dear Partner,

Thank you for your interest and the time you invested in responding to our RFP.

After careful consideration, we have decided not to move forward with your proposal at this time.

REASON: %s

We appreciate your participation in our procurement process and encourage you to respond to future opportunities that may be a better fit.

Thank you again for your time and effort.

Best regards,
RFP Automation System`, reason)
	}

	rateLines := make([]string, len(finalRates))
	for i, rate := range finalRates {
		rateLines[i] = fmt.Sprintf("- %s: $%s per night", rate.RoomType, rate.Rate.StringFixed(2))
	}
	roomLines := make([]string, len(acceptedRoomTypes))
	for i, roomType := range acceptedRoomTypes {
		roomLines[i] = "- " + roomType
	}

	return "Congratulations! Your RFP Bid Has Been Accepted", fmt.Sprintf(`Dear Partner,

We are pleased to inform you that your bid has been accepted!

ACCEPTED RATES:
%s

ACCEPTED ROOM TYPES:
%s

REASON: %s

Next steps:
1. You will receive a formal contract within 2 business days
2. Please confirm your acceptance of these terms
3. Our procurement team will contact you to finalize details

Thank you for your competitive proposal. We look forward to working with you.

Best regards,
RFP Automation System`, strings.Join(rateLines, "\n"), strings.Join(roomLines, "\n"), reason)
}
