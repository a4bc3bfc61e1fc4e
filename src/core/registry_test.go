package main

import (
	"errors"
	"testing"
)

func TestRegistrySeedAgents(t *testing.T) {
	reg := NewAgentRegistry(seedAgents())

	agents := reg.List()
	if len(agents) != 4 {
		t.Fatalf("expected 4 seed agents, got %d", len(agents))
	}
	if agents[0].ID != "agent-alpha-01" {
		t.Errorf("expected registration order preserved, got %s first", agents[0].ID)
	}

	if _, err := reg.Get("agent-nope"); !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestRegistryPeersExcludesSelf(t *testing.T) {
	reg := NewAgentRegistry(seedAgents())

	peers := reg.Peers("agent-alpha-01")
	if len(peers) != 3 {
		t.Fatalf("expected 3 peers, got %d", len(peers))
	}
	for _, p := range peers {
		if p.ID == "agent-alpha-01" {
			t.Errorf("peer list must exclude the acting agent")
		}
	}
}

func TestRegistryBalanceFloorsAtZero(t *testing.T) {
	reg := NewAgentRegistry(seedAgents())

	if err := reg.CreditBalance("agent-alpha-01", -10000); err != nil {
		t.Fatalf("CreditBalance failed: %v", err)
	}
	agent, _ := reg.Get("agent-alpha-01")
	if agent.TokenBalance != 0 {
		t.Errorf("expected balance floored at 0, got %d", agent.TokenBalance)
	}
}

func TestRegistryReputationClamps(t *testing.T) {
	reg := NewAgentRegistry(seedAgents())

	reg.AdjustReputation("agent-alpha-01", 50)
	agent, _ := reg.Get("agent-alpha-01")
	if agent.ReputationScore != 100 {
		t.Errorf("expected reputation clamped at 100, got %.1f", agent.ReputationScore)
	}

	reg.AdjustReputation("agent-alpha-01", -500)
	agent, _ = reg.Get("agent-alpha-01")
	if agent.ReputationScore != 0 {
		t.Errorf("expected reputation clamped at 0, got %.1f", agent.ReputationScore)
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	reg := NewAgentRegistry(seedAgents())

	agent, _ := reg.Get("agent-alpha-01")
	agent.TokenBalance = 1

	fresh, _ := reg.Get("agent-alpha-01")
	if fresh.TokenBalance != 4500 {
		t.Errorf("mutating a returned agent must not affect the registry")
	}
}

func TestRegistryFindService(t *testing.T) {
	reg := NewAgentRegistry(seedAgents())

	agent, svc, err := reg.FindService("agent-alpha-01", "srv-1b")
	if err != nil {
		t.Fatalf("FindService failed: %v", err)
	}
	if agent.ID != "agent-alpha-01" || svc.Name != "Real-time Guard" || svc.Price != 100 {
		t.Errorf("unexpected service lookup: %+v", svc)
	}

	if _, _, err := reg.FindService("agent-alpha-01", "srv-zzz"); !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("expected ErrServiceNotFound, got %v", err)
	}
	if _, _, err := reg.FindService("agent-zzz", "srv-1a"); !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestRegistrySetStrategy(t *testing.T) {
	reg := NewAgentRegistry(seedAgents())

	next := AgentStrategy{RiskTolerance: 30, ComplianceStrictness: 70, CreativeFreedom: 40, DecisionBias: "BALANCED"}
	if err := reg.SetStrategy("agent-lex-99", next, "loosened compliance after clean streak"); err != nil {
		t.Fatalf("SetStrategy failed: %v", err)
	}

	agent, _ := reg.Get("agent-lex-99")
	if agent.CurrentStrategy != next {
		t.Errorf("expected strategy replaced, got %+v", agent.CurrentStrategy)
	}
	if len(agent.OptimizationHistory) != 1 {
		t.Errorf("expected 1 history entry, got %d", len(agent.OptimizationHistory))
	}
	// Seed version is v2.4.
	if agent.Version != "v2.5" {
		t.Errorf("expected version v2.5, got %s", agent.Version)
	}
}

func TestBumpVersion(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"v1.0", "v1.1"},
		{"v2.4", "v2.5"},
		{"v3.9", "v3.10"},
		{"garbage", "v1.0"},
		{"", "v1.0"},
	}

	for _, tt := range tests {
		if got := bumpVersion(tt.in); got != tt.expected {
			t.Errorf("bumpVersion(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}
