package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stayforge/bidflow/internal/bid"
	"github.com/stayforge/bidflow/internal/store"
	"github.com/stayforge/bidflow/internal/workflow"
)

const maxBodyBytes = 1 << 20

var submissionFields = []string{
	"bidId", "rfpId", "supplierId", "supplierRates", "expectedRates",
	"rateType", "currentRound", "maxRounds", "allRoomTypes",
}

var responseFields = []string{
	"bidId", "rfpId", "supplierId", "newRates", "expectedRates",
	"rateType", "currentRound", "maxRounds", "allRoomTypes",
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleBidSubmissionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Bid submission webhook endpoint. Use POST to submit bids.",
	})
}

func (a *API) handleBidSubmission(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		return
	}
	if !requireFields(w, body, submissionFields) {
		return
	}

	var sub bid.Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	run, err := a.orchestrator.ProcessSubmission(r.Context(), sub)
	if err != nil {
		writeProcessError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"workflowResult": run,
		"message":        fmt.Sprintf("Bid %s processed", sub.BidID),
	})
}

func (a *API) handleNegotiationResponse(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		return
	}
	if !requireFields(w, body, responseFields) {
		return
	}

	var resp workflow.NegotiationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	run, err := a.orchestrator.ProcessNegotiationResponse(r.Context(), resp)
	if err != nil {
		writeProcessError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"workflowResult": run,
		"message":        fmt.Sprintf("Negotiation response for bid %s processed", resp.BidID),
	})
}

func (a *API) handleWorkflowStatus(w http.ResponseWriter, r *http.Request) {
	bidID := mux.Vars(r)["bid_id"]

	run, err := a.orchestrator.Status(r.Context(), bidID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no workflow run found for bid "+bidID)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load workflow run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (a *API) handleWorkflowActivities(w http.ResponseWriter, r *http.Request) {
	bidID := mux.Vars(r)["bid_id"]

	entries, err := a.orchestrator.Activities(r.Context(), bidID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load activities")
		return
	}
	if entries == nil {
		entries = []bid.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, err
	}
	defer r.Body.Close()
	return body, nil
}

// requireFields rejects payloads missing any required key, naming the
// first missing field.
func requireFields(w http.ResponseWriter, body []byte, fields []string) bool {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	for _, field := range fields {
		if _, ok := payload[field]; !ok {
			writeError(w, http.StatusBadRequest, "missing required field: "+field)
			return false
		}
	}
	return true
}

func writeProcessError(w http.ResponseWriter, err error) {
	if errors.Is(err, workflow.ErrBidInFlight) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
