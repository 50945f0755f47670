package bid

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateType classifies a supplier rate by inventory guarantee.
// Both values accept the full room type set on disposition; the
// distinction is carried for reporting only.
type RateType string

const (
	RateTypeLRA  RateType = "LRA"
	RateTypeNLRA RateType = "NLRA"
)

// Decision is the outcome of rate analysis for a submission.
type Decision string

const (
	DecisionAutoAccept Decision = "auto_accept"
	DecisionNegotiate  Decision = "negotiate"
	DecisionDecline    Decision = "decline"
)

// NextAgent routes a decision to the stage that acts on it.
type NextAgent string

const (
	NextAgentDisposition NextAgent = "bid_disposition"
	NextAgentNegotiation NextAgent = "negotiation"
	NextAgentNone        NextAgent = "none"
)

// AgentType identifies which stage produced an activity entry.
type AgentType string

const (
	AgentRateComparison AgentType = "rate_comparison"
	AgentNegotiation    AgentType = "negotiation"
	AgentDisposition    AgentType = "bid_disposition"
)

// Action is the terminal disposition applied to a bid.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
)

// Bid status values persisted by the store.
const (
	StatusNegotiating = "negotiating"
	StatusAccepted    = "accepted"
	StatusDeclined    = "declined"
)

// RoomRate is a supplier's price for one room category.
type RoomRate struct {
	RoomType string          `json:"roomType"`
	Rate     decimal.Decimal `json:"rate"`
}

// ExpectedRate is the buyer's internal target for one room category.
type ExpectedRate struct {
	RoomType     string          `json:"roomType"`
	ExpectedRate decimal.Decimal `json:"expectedRate"`
}

// RateComparison is the per-room result of comparing a supplier rate
// against the buyer's expected rate. Immutable once computed.
type RateComparison struct {
	RoomType             string          `json:"roomType"`
	SupplierRate         decimal.Decimal `json:"supplierRate"`
	ExpectedRate         decimal.Decimal `json:"expectedRate"`
	Difference           decimal.Decimal `json:"difference"`
	PercentageDifference decimal.Decimal `json:"percentageDifference"`
	MeetsExpectation     bool            `json:"meetsExpectation"`
}

// Submission is one point-in-time rate proposal tied to a negotiation round.
type Submission struct {
	BidID         string         `json:"bidId"`
	RFPID         string         `json:"rfpId"`
	SupplierID    string         `json:"supplierId"`
	SupplierRates []RoomRate     `json:"supplierRates"`
	ExpectedRates []ExpectedRate `json:"expectedRates"`
	RateType      RateType       `json:"rateType"`
	CurrentRound  int            `json:"currentRound"`
	MaxRounds     int            `json:"maxRounds"`
	AllRoomTypes  []string       `json:"allRoomTypes"`
}

var (
	ErrMissingField   = errors.New("missing required field")
	ErrInvalidField   = errors.New("invalid field")
	ErrNegativeRate   = errors.New("rate must not be negative")
	ErrDuplicateRoom  = errors.New("duplicate room type")
	ErrRoundsExceeded = errors.New("currentRound exceeds maxRounds")
)

// Validate rejects malformed submissions before any stage runs.
// Validation failures are never recorded as activity.
func (s Submission) Validate() error {
	switch {
	case s.BidID == "":
		return fmt.Errorf("%w: bidId", ErrMissingField)
	case s.RFPID == "":
		return fmt.Errorf("%w: rfpId", ErrMissingField)
	case s.SupplierID == "":
		return fmt.Errorf("%w: supplierId", ErrMissingField)
	case len(s.SupplierRates) == 0:
		return fmt.Errorf("%w: supplierRates", ErrMissingField)
	case len(s.ExpectedRates) == 0:
		return fmt.Errorf("%w: expectedRates", ErrMissingField)
	case len(s.AllRoomTypes) == 0:
		return fmt.Errorf("%w: allRoomTypes", ErrMissingField)
	}
	if s.RateType != RateTypeLRA && s.RateType != RateTypeNLRA {
		return fmt.Errorf("%w: rateType %q", ErrInvalidField, s.RateType)
	}
	if s.MaxRounds < 1 {
		return fmt.Errorf("%w: maxRounds must be at least 1", ErrInvalidField)
	}
	if s.CurrentRound < 0 {
		return fmt.Errorf("%w: currentRound must not be negative", ErrInvalidField)
	}
	if s.CurrentRound > s.MaxRounds {
		return fmt.Errorf("%w: %d > %d", ErrRoundsExceeded, s.CurrentRound, s.MaxRounds)
	}
	seen := make(map[string]bool, len(s.SupplierRates))
	for _, r := range s.SupplierRates {
		if r.Rate.IsNegative() {
			return fmt.Errorf("%w: supplier rate for %s", ErrNegativeRate, r.RoomType)
		}
		if seen[r.RoomType] {
			return fmt.Errorf("%w: %s in supplierRates", ErrDuplicateRoom, r.RoomType)
		}
		seen[r.RoomType] = true
	}
	seen = make(map[string]bool, len(s.ExpectedRates))
	for _, e := range s.ExpectedRates {
		if e.ExpectedRate.IsNegative() {
			return fmt.Errorf("%w: expected rate for %s", ErrNegativeRate, e.RoomType)
		}
		if seen[e.RoomType] {
			return fmt.Errorf("%w: %s in expectedRates", ErrDuplicateRoom, e.RoomType)
		}
		seen[e.RoomType] = true
	}
	return nil
}

// Analysis is the result of the rate comparison stage.
type Analysis struct {
	BidID       string           `json:"bidId"`
	Decision    Decision         `json:"decision"`
	Reasoning   string           `json:"reasoning"`
	Comparisons []RateComparison `json:"rateComparisons"`
	NextAgent   NextAgent        `json:"nextAgent"`
}

// CounterRate is one line of a negotiation counter-proposal.
type CounterRate struct {
	RoomType    string          `json:"roomType"`
	TargetRate  decimal.Decimal `json:"targetRate"`
	CurrentRate decimal.Decimal `json:"currentRate"`
}

// NegotiationOutcome records one round transition. Never terminal for a bid.
type NegotiationOutcome struct {
	BidID           string        `json:"bidId"`
	NewRound        int           `json:"newRound"`
	Message         string        `json:"negotiationMessage"`
	CounterProposal []CounterRate `json:"counterProposal"`
}

// DispositionOutcome is the terminal accept/decline result for a bid.
type DispositionOutcome struct {
	BidID             string   `json:"bidId"`
	FinalAction       Action   `json:"finalAction"`
	AcceptedRoomTypes []string `json:"acceptedRoomTypes"`
	EmailSent         bool     `json:"emailSent"`
}

// RateSummary aggregates a comparison set for reporting.
type RateSummary struct {
	TotalRooms                  int             `json:"totalRooms"`
	RoomsMeetingExpectation     int             `json:"roomsMeetingExpectation"`
	AveragePercentageDifference decimal.Decimal `json:"averagePercentageDifference"`
	TotalPotentialSavings       decimal.Decimal `json:"totalPotentialSavings"`
}

// ActivityEntry is one append-only audit record. One entry is written
// per stage invocation; entries are never mutated or deleted.
type ActivityEntry struct {
	ID        string         `json:"id"`
	BidID     string         `json:"bidId"`
	AgentType AgentType      `json:"agentType"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewActivityEntry stamps an audit record with a fresh ID and UTC timestamp.
func NewActivityEntry(bidID string, agent AgentType, action string, details map[string]any) ActivityEntry {
	return ActivityEntry{
		ID:        uuid.NewString(),
		BidID:     bidID,
		AgentType: agent,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// RunStep is the stage a workflow run is currently in.
type RunStep string

const (
	StepRateComparison RunStep = "rate_comparison"
	StepNegotiation    RunStep = "negotiation"
	StepDisposition    RunStep = "bid_disposition"
	StepCompleted      RunStep = "completed"
)

// RunStatus is the overall state of a workflow run.
type RunStatus string

const (
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// RunResults collects the per-stage results of a workflow run.
type RunResults struct {
	Comparison  *Analysis           `json:"rateComparison,omitempty"`
	Negotiation *NegotiationOutcome `json:"negotiation,omitempty"`
	Disposition *DispositionOutcome `json:"bidDisposition,omitempty"`
}

// Run is one workflow execution for a bid submission. A Run is only
// ever returned in a terminal status (completed or failed).
type Run struct {
	ID          string     `json:"id"`
	BidID       string     `json:"bidId"`
	RFPID       string     `json:"rfpId"`
	SupplierID  string     `json:"supplierId"`
	CurrentStep RunStep    `json:"currentStep"`
	Status      RunStatus  `json:"status"`
	Results     RunResults `json:"results"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt time.Time  `json:"completedAt"`
}
