package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// writeSuccess writes the standard success envelope.
func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrProofNotFound), errors.Is(err, ErrAgentNotFound), errors.Is(err, ErrServiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyDisputed), errors.Is(err, ErrDuplicateProof), errors.Is(err, ErrRunInFlight):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyInput), errors.Is(err, ErrEmptyChallengeReason):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrAuthorizationRejected):
		return http.StatusPaymentRequired
	default:
		return http.StatusBadGateway
	}
}

// setupRouter builds the HTTP API with the full middleware chain.
func (n *AetherNode) setupRouter() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/api/health", n.HealthHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Proof ledger
	router.HandleFunc("/api/proofs", n.ListProofsHandler).Methods("GET")
	router.HandleFunc("/api/proofs/search", n.SearchProofsHandler).Methods("GET")
	router.HandleFunc("/api/proofs/{id}", n.GetProofHandler).Methods("GET")
	router.HandleFunc("/api/proofs/{id}/challenge", n.ChallengeProofHandler).Methods("POST")
	router.HandleFunc("/api/proofs/{id}/resolve", n.RetryResolutionHandler).Methods("POST")

	// Agents
	router.HandleFunc("/api/agents", n.ListAgentsHandler).Methods("GET")
	router.HandleFunc("/api/agents/{id}", n.GetAgentHandler).Methods("GET")
	router.HandleFunc("/api/agents/{id}/run", n.RunAgentTaskHandler).Methods("POST")
	router.HandleFunc("/api/agents/{id}/optimize", n.OptimizeAgentHandler).Methods("POST")
	router.HandleFunc("/api/agents/{id}/risk", n.AssessRiskHandler).Methods("GET")

	// Economy
	router.HandleFunc("/api/transactions", n.ListTransactionsHandler).Methods("GET")
	router.HandleFunc("/api/market/purchase", n.PurchaseServiceHandler).Methods("POST")

	// Operations
	router.HandleFunc("/api/security", n.SecurityStatusHandler).Methods("GET")
	router.HandleFunc("/api/ledger/reset", n.ResetLedgerHandler).Methods("POST")

	limiter := NewIPRateLimiter(n.config.RateLimitPerMinute)
	router.Use(RequestIDMiddleware)
	router.Use(MetricsMiddleware)
	router.Use(RateLimitMiddleware(limiter))
	router.Use(BodySizeLimitMiddleware(n.config.MaxBodySizeBytes))

	return otelhttp.NewHandler(router, "aethernode")
}

// HealthHandler reports node liveness and headline counters.
func (n *AetherNode) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"version":         "1.0.0",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"proofCount":      n.store.Len(),
		"openDisputes":    n.store.OpenDisputeCount(),
		"txCount":         n.ledger.Len(),
		"operatorBalance": n.OperatorBalance(),
		"networkTps":      n.monitor.TPS(),
	})
}

// ListProofsHandler returns the full proof stream, newest first.
func (n *AetherNode) ListProofsHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, n.store.Snapshot())
}

// GetProofHandler returns a single proof by fingerprint.
func (n *AetherNode) GetProofHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	proof, err := n.store.FindByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "proof not found")
		return
	}
	writeSuccess(w, http.StatusOK, proof)
}

// SearchProofsHandler finds the first proof matching the query by fingerprint
// or input snippet.
func (n *AetherNode) SearchProofsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" || !ValidateStringField(query, MaxTaskInputLength) {
		writeError(w, http.StatusBadRequest, "missing or invalid query parameter 'q'")
		return
	}

	proof, err := n.store.FindBySubstring(query)
	if err != nil {
		writeError(w, http.StatusNotFound, "no proof matches the query")
		return
	}
	writeSuccess(w, http.StatusOK, proof)
}

// RunAgentTaskHandler executes a task as an agent and returns the new proof.
func (n *AetherNode) RunAgentTaskHandler(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["id"]
	if !IsValidAgentID(agentID) {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	var req struct {
		Input string `json:"input"`
	}
	if err := DecodeJSONBody(w, r, &req); err != nil {
		return
	}
	if !ValidateStringField(req.Input, MaxTaskInputLength) {
		writeError(w, http.StatusBadRequest, "task input too long or contains control characters")
		return
	}

	proof, err := n.RunAgentTask(r.Context(), agentID, req.Input)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeSuccess(w, http.StatusCreated, proof)
}

// ChallengeProofHandler opens a dispute and runs the resolver. A resolver
// failure still returns the proof in its Open dispute state.
func (n *AetherNode) ChallengeProofHandler(w http.ResponseWriter, r *http.Request) {
	proofID := mux.Vars(r)["id"]

	var req struct {
		Reason string `json:"reason"`
	}
	if err := DecodeJSONBody(w, r, &req); err != nil {
		return
	}
	if !ValidateStringField(req.Reason, MaxReasonLength) {
		writeError(w, http.StatusBadRequest, "challenge reason too long or contains control characters")
		return
	}

	proof, err := n.ChallengeProof(r.Context(), proofID, req.Reason)
	if err != nil {
		if proof.DisputeStatus == DisputeOpen {
			// The dispute opened but the resolver failed; report the partial
			// outcome so the caller can retry.
			writeSuccess(w, http.StatusAccepted, proof)
			return
		}
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, proof)
}

// RetryResolutionHandler re-runs the judge for a dispute stuck in Open.
func (n *AetherNode) RetryResolutionHandler(w http.ResponseWriter, r *http.Request) {
	proofID := mux.Vars(r)["id"]

	proof, err := n.RetryResolution(r.Context(), proofID)
	if err != nil {
		if proof.DisputeStatus == DisputeOpen {
			writeSuccess(w, http.StatusAccepted, proof)
			return
		}
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, proof)
}

// ListAgentsHandler returns all marketplace agents.
func (n *AetherNode) ListAgentsHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, n.registry.List())
}

// GetAgentHandler returns a single agent.
func (n *AetherNode) GetAgentHandler(w http.ResponseWriter, r *http.Request) {
	agent, err := n.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeSuccess(w, http.StatusOK, agent)
}

// OptimizeAgentHandler runs the strategy optimizer and applies the result.
func (n *AetherNode) OptimizeAgentHandler(w http.ResponseWriter, r *http.Request) {
	proposal, err := n.OptimizeAgent(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, proposal)
}

// AssessRiskHandler returns a read-only risk assessment for an agent.
func (n *AetherNode) AssessRiskHandler(w http.ResponseWriter, r *http.Request) {
	assessment, err := n.AssessAgentRisk(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, assessment)
}

// ListTransactionsHandler returns the reward ledger in insertion order.
func (n *AetherNode) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"transactions":    n.ledger.Transactions(),
		"operatorBalance": n.OperatorBalance(),
	})
}

// PurchaseServiceHandler pays an agent for a marketplace service.
func (n *AetherNode) PurchaseServiceHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID   string `json:"agentId"`
		ServiceID string `json:"serviceId"`
	}
	if err := DecodeJSONBody(w, r, &req); err != nil {
		return
	}
	if !IsValidAgentID(req.AgentID) || req.ServiceID == "" {
		writeError(w, http.StatusBadRequest, "invalid agent or service id")
		return
	}

	tx, err := n.PurchaseService(r.Context(), req.AgentID, req.ServiceID)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"transaction":     tx,
		"operatorBalance": n.OperatorBalance(),
	})
}

// SecurityStatusHandler returns the current security posture and throughput.
func (n *AetherNode) SecurityStatusHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"protocol":   n.monitor.Protocol(),
		"networkTps": n.monitor.TPS(),
	})
}

// ResetLedgerHandler wipes the proof store back to seed. Requires an explicit
// confirmation flag; the transaction log is never cleared.
func (n *AetherNode) ResetLedgerHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := DecodeJSONBody(w, r, &req); err != nil {
		return
	}
	if !req.Confirm {
		writeError(w, http.StatusBadRequest, "reset requires confirm=true")
		return
	}

	if err := n.ResetLedger(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"proofCount": n.store.Len(),
		"txCount":    n.ledger.Len(),
	})
}
