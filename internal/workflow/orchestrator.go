// Package workflow sequences the bid processing pipeline: rate
// comparison, then either negotiation or disposition, with one
// terminal workflow run per submission. The orchestrator is the error
// boundary: stage failures become failed runs, never returned errors.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stayforge/bidflow/internal/bid"
	"github.com/stayforge/bidflow/internal/disposition"
	"github.com/stayforge/bidflow/internal/negotiation"
	"github.com/stayforge/bidflow/internal/notify"
	"github.com/stayforge/bidflow/internal/observe"
	"github.com/stayforge/bidflow/internal/store"
)

// ErrBidInFlight is returned when a submission arrives for a bid that
// already has a workflow run in progress. Conflicting runs for one bid
// are rejected rather than interleaved so the round counter cannot be
// advanced twice.
var ErrBidInFlight = errors.New("bid is already being processed")

// Orchestrator wires the three stages together. Distinct bids may be
// processed concurrently; runs share no mutable state.
type Orchestrator struct {
	analyzer   *bid.Analyzer
	negotiator *negotiation.Coordinator
	disposer   *disposition.Executor
	store      store.Store
	observer   observe.Observer

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func New(st store.Store, notifier notify.Notifier, observer observe.Observer) *Orchestrator {
	if observer == nil {
		observer = observe.NoOp{}
	}
	return &Orchestrator{
		analyzer:   bid.NewAnalyzer(st),
		negotiator: negotiation.NewCoordinator(st, notifier),
		disposer:   disposition.NewExecutor(st, notifier),
		store:      st,
		observer:   observer,
		inFlight:   make(map[string]struct{}),
	}
}

// ProcessSubmission runs the full pipeline for one bid submission.
// Malformed submissions and in-flight conflicts are rejected up front
// as errors, before any stage runs and without an activity entry.
// Everything past that point returns a terminal run and a nil error.
func (o *Orchestrator) ProcessSubmission(ctx context.Context, sub bid.Submission) (*bid.Run, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := o.acquire(sub.BidID); err != nil {
		return nil, err
	}
	defer o.release(sub.BidID)

	return o.run(ctx, sub), nil
}

// NegotiationResponse is a supplier's revised submission after a
// negotiation round. CurrentRound is the round the counter-proposal
// was produced in; rounds advance only when negotiation is initiated,
// never on re-comparison.
type NegotiationResponse struct {
	BidID         string             `json:"bidId"`
	RFPID         string             `json:"rfpId"`
	SupplierID    string             `json:"supplierId"`
	NewRates      []bid.RoomRate     `json:"newRates"`
	ExpectedRates []bid.ExpectedRate `json:"expectedRates"`
	RateType      bid.RateType       `json:"rateType"`
	CurrentRound  int                `json:"currentRound"`
	MaxRounds     int                `json:"maxRounds"`
	AllRoomTypes  []string           `json:"allRoomTypes"`
}

// ProcessNegotiationResponse records the supplier response through the
// negotiation guard, then feeds the new rates back through the full
// pipeline at the same round number. The guard's verdict is logged but
// never blocks the re-run; the comparator's round check decides.
func (o *Orchestrator) ProcessNegotiationResponse(ctx context.Context, resp NegotiationResponse) (*bid.Run, error) {
	sub := bid.Submission{
		BidID:         resp.BidID,
		RFPID:         resp.RFPID,
		SupplierID:    resp.SupplierID,
		SupplierRates: resp.NewRates,
		ExpectedRates: resp.ExpectedRates,
		RateType:      resp.RateType,
		CurrentRound:  resp.CurrentRound,
		MaxRounds:     resp.MaxRounds,
		AllRoomTypes:  resp.AllRoomTypes,
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := o.acquire(sub.BidID); err != nil {
		return nil, err
	}
	defer o.release(sub.BidID)

	check, err := o.negotiator.ReceiveResponse(ctx, negotiation.Response{
		BidID:        resp.BidID,
		RFPID:        resp.RFPID,
		SupplierID:   resp.SupplierID,
		NewRates:     resp.NewRates,
		CurrentRound: resp.CurrentRound,
		MaxRounds:    resp.MaxRounds,
	})
	if err != nil {
		return o.fail(ctx, o.newRun(sub), fmt.Errorf("negotiation response check: %w", err)), nil
	}
	o.emit(ctx, observe.EventResponseChecked, map[string]any{
		"bid_id":          resp.BidID,
		"round":           resp.CurrentRound,
		"should_continue": check.ShouldContinue,
		"reason":          check.Reason,
	})

	return o.run(ctx, sub), nil
}

// Status returns the last terminal run recorded for a bid.
func (o *Orchestrator) Status(ctx context.Context, bidID string) (*bid.Run, error) {
	return o.store.GetRun(ctx, bidID)
}

// Activities returns the audit trail recorded for a bid, oldest first.
func (o *Orchestrator) Activities(ctx context.Context, bidID string) ([]bid.ActivityEntry, error) {
	return o.store.ListActivities(ctx, bidID)
}

func (o *Orchestrator) run(ctx context.Context, sub bid.Submission) *bid.Run {
	run := o.newRun(sub)
	o.emit(ctx, observe.EventWorkflowStart, map[string]any{
		"bid_id": sub.BidID,
		"rfp_id": sub.RFPID,
		"round":  sub.CurrentRound,
	})

	o.emit(ctx, observe.EventStageStart, map[string]any{"bid_id": sub.BidID, "stage": bid.StepRateComparison})
	analysis, err := o.analyzer.Analyze(ctx, sub)
	if err != nil {
		return o.fail(ctx, run, err)
	}
	run.Results.Comparison = &analysis
	o.emit(ctx, observe.EventStageComplete, map[string]any{
		"bid_id":   sub.BidID,
		"stage":    bid.StepRateComparison,
		"decision": analysis.Decision,
	})

	switch analysis.NextAgent {
	case bid.NextAgentDisposition:
		run.CurrentStep = bid.StepDisposition
		o.emit(ctx, observe.EventStageStart, map[string]any{"bid_id": sub.BidID, "stage": bid.StepDisposition})

		action := bid.ActionDecline
		if analysis.Decision == bid.DecisionAutoAccept {
			action = bid.ActionAccept
		}
		outcome, err := o.disposer.Execute(ctx, disposition.Request{
			BidID:        sub.BidID,
			RFPID:        sub.RFPID,
			SupplierID:   sub.SupplierID,
			Action:       action,
			Reason:       analysis.Reasoning,
			RateType:     sub.RateType,
			FinalRates:   sub.SupplierRates,
			AllRoomTypes: sub.AllRoomTypes,
		})
		if err != nil {
			return o.fail(ctx, run, err)
		}
		run.Results.Disposition = &outcome
		o.emit(ctx, observe.EventStageComplete, map[string]any{
			"bid_id": sub.BidID,
			"stage":  bid.StepDisposition,
			"action": outcome.FinalAction,
		})

	case bid.NextAgentNegotiation:
		run.CurrentStep = bid.StepNegotiation
		o.emit(ctx, observe.EventStageStart, map[string]any{"bid_id": sub.BidID, "stage": bid.StepNegotiation})

		outcome, err := o.negotiator.Initiate(ctx, negotiation.InitiateRequest{
			BidID:        sub.BidID,
			RFPID:        sub.RFPID,
			SupplierID:   sub.SupplierID,
			CurrentRound: sub.CurrentRound,
			MaxRounds:    sub.MaxRounds,
			Comparisons:  analysis.Comparisons,
		})
		if err != nil {
			return o.fail(ctx, run, err)
		}
		run.Results.Negotiation = &outcome
		o.emit(ctx, observe.EventStageComplete, map[string]any{
			"bid_id":    sub.BidID,
			"stage":     bid.StepNegotiation,
			"new_round": outcome.NewRound,
		})
	}

	run.CurrentStep = bid.StepCompleted
	run.Status = bid.RunCompleted
	run.CompletedAt = time.Now().UTC()
	o.persist(ctx, run)
	o.emit(ctx, observe.EventWorkflowComplete, map[string]any{"bid_id": sub.BidID, "run_id": run.ID})
	return run
}

func (o *Orchestrator) newRun(sub bid.Submission) *bid.Run {
	return &bid.Run{
		ID:          uuid.NewString(),
		BidID:       sub.BidID,
		RFPID:       sub.RFPID,
		SupplierID:  sub.SupplierID,
		CurrentStep: bid.StepRateComparison,
		Status:      bid.RunProcessing,
		StartedAt:   time.Now().UTC(),
	}
}

func (o *Orchestrator) fail(ctx context.Context, run *bid.Run, err error) *bid.Run {
	run.Status = bid.RunFailed
	run.Error = err.Error()
	run.CompletedAt = time.Now().UTC()
	o.persist(ctx, run)
	o.emit(ctx, observe.EventWorkflowFailed, map[string]any{
		"bid_id": run.BidID,
		"run_id": run.ID,
		"error":  run.Error,
	})
	return run
}

// persist saves the terminal run. A save failure is logged rather than
// failing an otherwise finished run.
func (o *Orchestrator) persist(ctx context.Context, run *bid.Run) {
	if err := o.store.SaveRun(ctx, *run); err != nil {
		slog.WarnContext(ctx, "failed to save workflow run", "bid_id", run.BidID, "error", err)
	}
}

func (o *Orchestrator) emit(ctx context.Context, eventType observe.EventType, data map[string]any) {
	o.observer.OnEvent(ctx, observe.Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    "workflow.Orchestrator",
		Data:      data,
	})
}

func (o *Orchestrator) acquire(bidID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inFlight[bidID]; busy {
		return fmt.Errorf("%w: %s", ErrBidInFlight, bidID)
	}
	o.inFlight[bidID] = struct{}{}
	return nil
}

func (o *Orchestrator) release(bidID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, bidID)
}
