package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Package-level errors for node operations
var (
	ErrEmptyInput            = errors.New("task input must not be empty")
	ErrRunInFlight           = errors.New("agent already has a task in flight")
	ErrInsufficientFunds     = errors.New("insufficient operator balance")
	ErrAuthorizationRejected = errors.New("payment authorization rejected")
)

var logger *slog.Logger

// initLogger sets up structured JSON logging at the configured level.
func initLogger(logLevel string) {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// AetherNode wires the proof store, reward ledger, agent registry, oracle,
// and security monitor into one node. All cross-store workflows (task runs,
// disputes, purchases) live here so each store can stay single-purpose.
type AetherNode struct {
	config   *Config
	store    *ProofStore
	ledger   *RewardLedger
	registry *AgentRegistry
	events   *LedgerEvents
	oracle   Oracle
	identity IdentityGenerator
	monitor  *SecurityMonitor

	// Operator wallet. Guarded separately from the registry because purchases
	// must debit and credit under one lock.
	opMu            sync.Mutex
	operatorBalance int

	// Per-agent in-flight guard: one task execution per agent at a time.
	inflightMu sync.Mutex
	inflight   map[string]bool
}

// NewAetherNode builds a node from configuration. When no API key is
// configured the oracle falls back to the offline mock.
func NewAetherNode(cfg *Config) *AetherNode {
	identity := NewMockIdentity(time.Now().UnixNano())

	var oracle Oracle
	if cfg.GeminiAPIKey != "" {
		oracle = NewGeminiOracle(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel,
			&http.Client{Timeout: cfg.OracleTimeout}, identity)
		logger.Info("Oracle configured", "mode", "gemini", "model", cfg.GeminiModel)
	} else {
		oracle = NewMockOracle(time.Now().UnixNano(), identity)
		logger.Info("Oracle configured", "mode", "mock")
	}

	events := NewLedgerEvents()
	node := &AetherNode{
		config:          cfg,
		store:           NewProofStore(cfg.DataDir),
		ledger:          NewRewardLedger(cfg.DataDir, identity),
		registry:        NewAgentRegistry(seedAgents()),
		events:          events,
		oracle:          oracle,
		identity:        identity,
		operatorBalance: cfg.OperatorBalance,
		inflight:        make(map[string]bool),
	}
	node.monitor = NewSecurityMonitor(oracle, events, cfg.SecurityCheckInterval)

	return node
}

// acquireRun marks an agent as busy. Returns false if a run is in flight.
func (n *AetherNode) acquireRun(agentID string) bool {
	n.inflightMu.Lock()
	defer n.inflightMu.Unlock()

	if n.inflight[agentID] {
		return false
	}
	n.inflight[agentID] = true
	return true
}

func (n *AetherNode) releaseRun(agentID string) {
	n.inflightMu.Lock()
	defer n.inflightMu.Unlock()
	delete(n.inflight, agentID)
}

// RunAgentTask executes a task as the given agent, admits the resulting
// proof, and settles the mining reward. The oracle call happens before any
// state changes: a failed execution leaves the node untouched.
func (n *AetherNode) RunAgentTask(ctx context.Context, agentID, input string) (AgentActionProof, error) {
	if input == "" {
		return AgentActionProof{}, ErrEmptyInput
	}

	agent, err := n.registry.Get(agentID)
	if err != nil {
		return AgentActionProof{}, err
	}

	if !n.acquireRun(agentID) {
		return AgentActionProof{}, ErrRunInFlight
	}
	defer n.releaseRun(agentID)

	exec, err := n.oracle.ExecuteTask(ctx, agent, input, n.registry.Peers(agentID))
	if err != nil {
		logger.Error("Task execution failed", "agentId", agentID, "error", err)
		return AgentActionProof{}, fmt.Errorf("task execution failed: %w", err)
	}

	proof := AgentActionProof{
		ProofID:                 exec.ProofID,
		Timestamp:               time.Now().UTC().Format(time.RFC3339),
		AgentID:                 agent.ID,
		AgentName:               agent.Name,
		InputSnippet:            input,
		ActionOutput:            exec.ActionOutput,
		Reasoning:               exec.Reasoning,
		Explanation:             exec.Explanation,
		CrossChecks:             exec.CrossChecks,
		SecurityProtocolVersion: n.monitor.Protocol().Version,
		DisputeStatus:           DisputeNone,
		TrustScoreDelta:         exec.TrustScoreDelta,
		BlockHeight:             n.identity.BlockHeight(),
	}

	if err := n.store.Admit(proof); err != nil {
		return AgentActionProof{}, err
	}
	RecordProofAdmitted()

	if err := n.registry.IncrementTasks(agentID); err != nil {
		logger.Warn("Failed to bump task counter", "agentId", agentID, "error", err)
	}

	// Mining reward settles only for positively verified work.
	if exec.TrustScoreDelta > 0 {
		reward := MiningReward(exec.TrustScoreDelta)
		if err := n.registry.CreditBalance(agentID, reward); err != nil {
			logger.Error("Failed to credit mining reward", "agentId", agentID, "error", err)
		} else {
			n.ledger.RecordTrustReward(agentID, reward)
		}
	}

	n.events.publishProofCreated(proof)
	return proof, nil
}

// PurchaseService pays an agent for a marketplace service from the operator
// wallet. Validation failures (unknown service, insufficient funds, rejected
// authorization) change no state and append nothing to the ledger.
func (n *AetherNode) PurchaseService(ctx context.Context, agentID, serviceID string) (Transaction, error) {
	agent, svc, err := n.registry.FindService(agentID, serviceID)
	if err != nil {
		return Transaction{}, err
	}

	n.opMu.Lock()
	balance := n.operatorBalance
	n.opMu.Unlock()
	if balance < svc.Price {
		return Transaction{}, fmt.Errorf("%w: have %d AE, need %d AE", ErrInsufficientFunds, balance, svc.Price)
	}

	riskScore := agent.DisputesLost * 5
	auth, err := n.oracle.AuthorizeTransaction(ctx, agent, svc.Name, svc.Price, riskScore)
	if err != nil {
		return Transaction{}, fmt.Errorf("payment authorization failed: %w", err)
	}
	if !auth.Authorized {
		return Transaction{}, fmt.Errorf("%w: %s", ErrAuthorizationRejected, auth.Reason)
	}

	n.opMu.Lock()
	// Re-check under the lock: a concurrent purchase may have spent the funds.
	if n.operatorBalance < svc.Price {
		n.opMu.Unlock()
		return Transaction{}, fmt.Errorf("%w: have %d AE, need %d AE", ErrInsufficientFunds, n.operatorBalance, svc.Price)
	}
	n.operatorBalance -= svc.Price
	n.opMu.Unlock()

	if err := n.registry.CreditBalance(agentID, svc.Price); err != nil {
		logger.Error("Failed to credit service payment", "agentId", agentID, "error", err)
	}

	tx := n.ledger.RecordServicePayment(agentID, svc.Name, svc.Price, auth.TxHash)
	logger.Info("Service purchased", "agentId", agentID, "serviceId", serviceID, "price", svc.Price)
	return tx, nil
}

// OperatorBalance returns the operator wallet balance.
func (n *AetherNode) OperatorBalance() int {
	n.opMu.Lock()
	defer n.opMu.Unlock()
	return n.operatorBalance
}

// agentHistory returns the agent's most recent proofs, newest first, capped
// for oracle prompt size.
func (n *AetherNode) agentHistory(agentID string, limit int) []AgentActionProof {
	var history []AgentActionProof
	for _, p := range n.store.Snapshot() {
		if p.AgentID != agentID {
			continue
		}
		history = append(history, p)
		if len(history) == limit {
			break
		}
	}
	return history
}

// AssessAgentRisk produces a read-only risk assessment for an agent.
func (n *AetherNode) AssessAgentRisk(ctx context.Context, agentID string) (RiskAssessment, error) {
	agent, err := n.registry.Get(agentID)
	if err != nil {
		return RiskAssessment{}, err
	}
	return n.oracle.AssessRisk(ctx, agent, n.agentHistory(agentID, 10))
}

// OptimizeAgent asks the oracle for a tuned strategy and applies it.
func (n *AetherNode) OptimizeAgent(ctx context.Context, agentID string) (StrategyProposal, error) {
	agent, err := n.registry.Get(agentID)
	if err != nil {
		return StrategyProposal{}, err
	}

	proposal, err := n.oracle.OptimizeStrategy(ctx, agent, n.agentHistory(agentID, 10))
	if err != nil {
		return StrategyProposal{}, err
	}

	if err := n.registry.SetStrategy(agentID, proposal.NewStrategy, proposal.Reasoning); err != nil {
		return StrategyProposal{}, err
	}
	return proposal, nil
}

// ResetLedger wipes the proof store back to the seed snapshot. The
// transaction log survives: it is append-only across resets.
func (n *AetherNode) ResetLedger() error {
	if err := n.store.ResetToSeed(); err != nil {
		return err
	}
	logger.Warn("Ledger reset to seed state")
	return nil
}

func main() {
	cfg := LoadConfig()
	initLogger(cfg.LogLevel)

	logger.Info("Starting Aether node", "port", cfg.Port, "dataDir", cfg.DataDir)

	node := NewAetherNode(cfg)
	node.monitor.Start()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      node.setupRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	node.monitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Shutdown complete")
}
