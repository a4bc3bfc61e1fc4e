package main

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Package-level errors for registry operations
var (
	ErrAgentNotFound   = errors.New("agent not found")
	ErrServiceNotFound = errors.New("service not found")
)

// AgentRegistry holds the marketplace agents. The proof ledger treats each
// agent as an opaque record identified by id; the registry exposes the
// mutation hooks the ledger and the optimizer need (balance, reputation,
// strategy) and nothing else.
type AgentRegistry struct {
	mu     sync.RWMutex
	agents map[string]*Agent
	order  []string
}

// NewAgentRegistry builds a registry from the given agents, preserving their
// order for listing.
func NewAgentRegistry(agents []Agent) *AgentRegistry {
	reg := &AgentRegistry{agents: make(map[string]*Agent, len(agents))}
	for i := range agents {
		a := agents[i]
		reg.agents[a.ID] = &a
		reg.order = append(reg.order, a.ID)
	}
	return reg
}

// Get returns a copy of the agent with the given id.
func (r *AgentRegistry) Get(id string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, exists := r.agents[id]
	if !exists {
		return Agent{}, ErrAgentNotFound
	}
	return *agent, nil
}

// List returns copies of all agents in registration order.
func (r *AgentRegistry) List() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Agent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.agents[id])
	}
	return out
}

// Peers returns all agents except the one with the given id. Used to select
// the cross-check swarm for a task execution.
func (r *AgentRegistry) Peers(id string) []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Agent, 0, len(r.order))
	for _, peerID := range r.order {
		if peerID == id {
			continue
		}
		out = append(out, *r.agents[peerID])
	}
	return out
}

// CreditBalance adds amount (which may be negative) to an agent's token
// balance. Balances never go below zero.
func (r *AgentRegistry) CreditBalance(id string, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, exists := r.agents[id]
	if !exists {
		return ErrAgentNotFound
	}

	agent.TokenBalance += amount
	if agent.TokenBalance < 0 {
		agent.TokenBalance = 0
	}

	logger.Debug("Updated agent balance", "agentId", id, "amount", amount, "balance", agent.TokenBalance)
	return nil
}

// AdjustReputation applies a signed reputation delta, clamped to [0, 100].
func (r *AgentRegistry) AdjustReputation(id string, delta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, exists := r.agents[id]
	if !exists {
		return ErrAgentNotFound
	}

	agent.ReputationScore += delta
	if agent.ReputationScore > 100 {
		agent.ReputationScore = 100
	}
	if agent.ReputationScore < 0 {
		agent.ReputationScore = 0
	}

	logger.Debug("Adjusted agent reputation", "agentId", id, "delta", delta, "reputation", agent.ReputationScore)
	return nil
}

// IncrementTasks bumps the agent's completed-task counter.
func (r *AgentRegistry) IncrementTasks(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, exists := r.agents[id]
	if !exists {
		return ErrAgentNotFound
	}
	agent.TotalTasks++
	return nil
}

// RecordDisputeLost bumps the agent's lost-dispute counter after an
// overturned verdict.
func (r *AgentRegistry) RecordDisputeLost(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, exists := r.agents[id]
	if !exists {
		return ErrAgentNotFound
	}
	agent.DisputesLost++
	return nil
}

// SetStrategy replaces an agent's decision strategy and appends an entry to
// its optimization history. This is the update hook the optimizer oracle
// drives; it never touches the proof store.
func (r *AgentRegistry) SetStrategy(id string, strategy AgentStrategy, reasoning string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, exists := r.agents[id]
	if !exists {
		return ErrAgentNotFound
	}

	agent.CurrentStrategy = strategy
	agent.OptimizationHistory = append(agent.OptimizationHistory,
		fmt.Sprintf("%s: %s", time.Now().UTC().Format(time.RFC3339), reasoning))
	agent.Version = bumpVersion(agent.Version)

	logger.Info("Updated agent strategy", "agentId", id, "version", agent.Version)
	return nil
}

// FindService locates a priced service on an agent.
func (r *AgentRegistry) FindService(agentID, serviceID string) (Agent, AgentService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, exists := r.agents[agentID]
	if !exists {
		return Agent{}, AgentService{}, ErrAgentNotFound
	}

	for _, svc := range agent.Services {
		if svc.ID == serviceID {
			return *agent, svc, nil
		}
	}
	return Agent{}, AgentService{}, ErrServiceNotFound
}

// bumpVersion increments the minor component of a "vX.Y" version string.
// Unparseable versions restart at v1.0 rather than failing the update.
func bumpVersion(version string) string {
	var major, minor int
	if _, err := fmt.Sscanf(version, "v%d.%d", &major, &minor); err != nil {
		return "v1.0"
	}
	return fmt.Sprintf("v%d.%d", major, minor+1)
}
