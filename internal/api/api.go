// Package api exposes the webhook invocation surface. Handlers adapt
// requests to the workflow orchestrator and return the workflow run
// envelope; they hold no decision logic of their own.
package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/stayforge/bidflow/internal/config"
	"github.com/stayforge/bidflow/internal/workflow"
)

type API struct {
	router       *mux.Router
	orchestrator *workflow.Orchestrator
	config       *config.Config
}

func New(cfg *config.Config, orchestrator *workflow.Orchestrator) *API {
	api := &API{
		router:       mux.NewRouter(),
		orchestrator: orchestrator,
		config:       cfg,
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.router.HandleFunc("/api/health", a.handleHealth).Methods("GET")

	// Webhook endpoints
	a.router.HandleFunc("/api/webhook/bid-submission", a.handleBidSubmission).Methods("POST")
	a.router.HandleFunc("/api/webhook/bid-submission", a.handleBidSubmissionInfo).Methods("GET")
	a.router.HandleFunc("/api/webhook/negotiation-response", a.handleNegotiationResponse).Methods("POST")

	// Workflow status
	a.router.HandleFunc("/api/workflow/{bid_id}", a.handleWorkflowStatus).Methods("GET")
	a.router.HandleFunc("/api/workflow/{bid_id}/activities", a.handleWorkflowActivities).Methods("GET")
}

func (a *API) Start() error {
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}

	handler := cors.New(corsOptions).Handler(a.router)

	log.Printf("API server listening on http://%s", a.config.Bind)
	return http.ListenAndServe(a.config.Bind, handler)
}
