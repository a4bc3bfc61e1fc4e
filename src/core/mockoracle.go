package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// MockOracle is the offline fallback used when no API key is configured. It
// produces plausible randomized results with the same shapes and policy
// outcomes as the real oracle, so the rest of the node cannot tell them apart.
type MockOracle struct {
	mu       sync.Mutex
	rng      *rand.Rand
	identity IdentityGenerator
}

// NewMockOracle creates a mock oracle with a deterministic seed.
func NewMockOracle(seed int64, identity IdentityGenerator) *MockOracle {
	return &MockOracle{rng: rand.New(rand.NewSource(seed)), identity: identity}
}

func (m *MockOracle) float() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64()
}

func (m *MockOracle) intn(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Intn(n)
}

func (m *MockOracle) ExecuteTask(ctx context.Context, agent Agent, input string, peers []Agent) (TaskExecution, error) {
	m.mu.Lock()
	shuffled := make([]Agent, len(peers))
	copy(shuffled, peers)
	m.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	m.mu.Unlock()

	if len(shuffled) > swarmSize {
		shuffled = shuffled[:swarmSize]
	}

	checks := make([]VerificationResult, 0, len(shuffled))
	for _, checker := range shuffled {
		agreement := m.float() < 0.8
		comment := "Decision is consistent with protocol policy."
		if !agreement {
			comment = "Insufficient supporting evidence for this conclusion."
		}
		checks = append(checks, VerificationResult{
			CheckerAgentID:   checker.ID,
			CheckerAgentName: checker.Name,
			CheckerRole:      checker.Role,
			Agreement:        agreement,
			Comment:          comment,
			Timestamp:        time.Now().UTC().Format(time.RFC3339),
		})
	}

	return TaskExecution{
		ActionOutput: fmt.Sprintf("[offline] %s processed the request within policy bounds.", agent.Name),
		Reasoning: []string{
			"Input classified against the agent's specialty profile.",
			"No policy violations detected in the requested action.",
			"Confidence threshold met for autonomous execution.",
		},
		ProofID:         m.identity.ProofID(),
		CrossChecks:     checks,
		TrustScoreDelta: swarmDelta(checks),
	}, nil
}

func (m *MockOracle) ResolveDispute(ctx context.Context, proof AgentActionProof, reason string) (DisputeVerdict, error) {
	if m.float() < 0.5 {
		return DisputeVerdict{
			Status:  DisputeResolvedUpheld,
			Comment: "The agent's decision stands: the swarm consensus and reasoning trace support it.",
			Penalty: UpheldBonus,
		}, nil
	}
	return DisputeVerdict{
		Status:  DisputeResolvedOverturned,
		Comment: "The challenge is valid: the agent's output is not supported by its reasoning trace.",
		Penalty: OverturnedPenalty,
	}, nil
}

func (m *MockOracle) AssessRisk(ctx context.Context, agent Agent, history []AgentActionProof) (RiskAssessment, error) {
	score := 10 + m.intn(50) + agent.DisputesLost*5
	if score > 100 {
		score = 100
	}
	level := "LOW"
	switch {
	case score > 66:
		level = "HIGH"
	case score > 33:
		level = "MEDIUM"
	}
	return RiskAssessment{
		Score:     score,
		Level:     level,
		Rationale: fmt.Sprintf("Derived from %d recent proofs and %d lost disputes.", len(history), agent.DisputesLost),
	}, nil
}

func (m *MockOracle) OptimizeStrategy(ctx context.Context, agent Agent, history []AgentActionProof) (StrategyProposal, error) {
	jitter := func(v int) int {
		v += m.intn(21) - 10
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		return v
	}

	next := AgentStrategy{
		RiskTolerance:        jitter(agent.CurrentStrategy.RiskTolerance),
		ComplianceStrictness: jitter(agent.CurrentStrategy.ComplianceStrictness),
		CreativeFreedom:      jitter(agent.CurrentStrategy.CreativeFreedom),
		DecisionBias:         agent.CurrentStrategy.DecisionBias,
	}

	return StrategyProposal{
		NewStrategy: next,
		Adjustments: []string{
			fmt.Sprintf("Risk tolerance %d -> %d", agent.CurrentStrategy.RiskTolerance, next.RiskTolerance),
			fmt.Sprintf("Compliance strictness %d -> %d", agent.CurrentStrategy.ComplianceStrictness, next.ComplianceStrictness),
		},
		Reasoning: fmt.Sprintf("Rebalanced parameters against %d recent proofs.", len(history)),
	}, nil
}

func (m *MockOracle) AuthorizeTransaction(ctx context.Context, agent Agent, purpose string, amount, riskScore int) (PaymentAuthorization, error) {
	if riskScore > 90 {
		return PaymentAuthorization{
			Authorized: false,
			Reason:     "Counterparty risk score exceeds the automatic approval threshold.",
		}, nil
	}
	return PaymentAuthorization{
		Authorized: true,
		TxHash:     m.identity.TxHash(),
		Reason:     fmt.Sprintf("Payment of %d AE to %s approved.", amount, agent.Name),
	}, nil
}

func (m *MockOracle) MonitorSecurity(ctx context.Context, current SecurityProtocol, entropy float64) (SecurityProtocol, error) {
	next := current
	next.ThreatDescription = fmt.Sprintf("Routine scan complete, entropy %.2f within tolerance.", entropy)

	// Rare protocol rotation keeps the dashboard feed alive.
	if m.float() < 0.1 {
		var major, minor, patch int
		if _, err := fmt.Sscanf(current.Version, "PQC-v%d.%d.%d", &major, &minor, &patch); err == nil {
			next.Version = fmt.Sprintf("PQC-v%d.%d.%d", major, minor, patch+1)
		}
		next.LastRotation = time.Now().UTC().Format(time.RFC3339)
		next.ThreatDescription = "Lattice parameters rotated after scheduled entropy audit."
	}
	return next, nil
}
