package main

import (
	"context"
	"errors"
	"testing"
)

func TestChallengeProofUpheld(t *testing.T) {
	node := newTestNode(t, nil)

	proof, err := node.ChallengeProof(context.Background(), "0x8f2a...9d12", "Insufficient evidence for harassment.")
	if err != nil {
		t.Fatalf("ChallengeProof failed: %v", err)
	}

	if proof.DisputeStatus != DisputeResolvedUpheld {
		t.Errorf("expected Resolved_Upheld, got %s", proof.DisputeStatus)
	}
	if !proof.IsDisputed {
		t.Error("expected proof to stay marked disputed after resolution")
	}
	if proof.JudgeVerdict == "" {
		t.Error("expected judge verdict recorded")
	}
	if proof.TrustScoreDelta != UpheldBonus {
		t.Errorf("expected cumulative delta %d, got %d", UpheldBonus, proof.TrustScoreDelta)
	}

	// Upheld settles a 5 AE trust reward and a reputation bump.
	agent, _ := node.registry.Get("agent-alpha-01")
	if agent.TokenBalance != 4505 {
		t.Errorf("expected balance 4505, got %d", agent.TokenBalance)
	}
	if agent.DisputesLost != 2 {
		t.Errorf("expected lost-dispute counter unchanged, got %d", agent.DisputesLost)
	}

	txs := node.ledger.Transactions()
	if len(txs) != 1 || txs[0].Type != TxTypeTrustReward || txs[0].Amount != UpheldBonus {
		t.Fatalf("expected one TRUST_REWARD of %d, got %+v", UpheldBonus, txs)
	}
}

func TestChallengeProofOverturned(t *testing.T) {
	oracle := &stubOracle{
		resolveFn: func(ctx context.Context, proof AgentActionProof, reason string) (DisputeVerdict, error) {
			return DisputeVerdict{Status: DisputeResolvedOverturned, Comment: "Challenger is right.", Penalty: OverturnedPenalty}, nil
		},
	}
	node := newTestNode(t, oracle)

	proof, err := node.ChallengeProof(context.Background(), "0x8f2a...9d12", "The comment was satire.")
	if err != nil {
		t.Fatalf("ChallengeProof failed: %v", err)
	}

	if proof.DisputeStatus != DisputeResolvedOverturned {
		t.Errorf("expected Resolved_Overturned, got %s", proof.DisputeStatus)
	}
	if proof.TrustScoreDelta != OverturnedPenalty {
		t.Errorf("expected cumulative delta %d, got %d", OverturnedPenalty, proof.TrustScoreDelta)
	}

	agent, _ := node.registry.Get("agent-alpha-01")
	if agent.TokenBalance != 4485 {
		t.Errorf("expected balance 4485 after penalty, got %d", agent.TokenBalance)
	}
	if agent.DisputesLost != 3 {
		t.Errorf("expected lost-dispute counter 3, got %d", agent.DisputesLost)
	}
	if agent.ReputationScore != 83.5 {
		t.Errorf("expected reputation 83.5, got %.1f", agent.ReputationScore)
	}

	txs := node.ledger.Transactions()
	if len(txs) != 1 || txs[0].Type != TxTypePenalty || txs[0].Amount != SettlementBurn {
		t.Fatalf("expected one PENALTY of %d, got %+v", SettlementBurn, txs)
	}
	if txs[0].From != "agent-alpha-01" || txs[0].To != AccountNetworkBurn {
		t.Errorf("expected burn from agent, got %s -> %s", txs[0].From, txs[0].To)
	}
}

func TestChallengeProofValidation(t *testing.T) {
	node := newTestNode(t, nil)

	if _, err := node.ChallengeProof(context.Background(), "0x8f2a...9d12", ""); !errors.Is(err, ErrEmptyChallengeReason) {
		t.Errorf("expected ErrEmptyChallengeReason, got %v", err)
	}
	if _, err := node.ChallengeProof(context.Background(), "0xmissing", "reason"); !errors.Is(err, ErrProofNotFound) {
		t.Errorf("expected ErrProofNotFound, got %v", err)
	}
}

func TestChallengeProofDoubleChallengeRejected(t *testing.T) {
	node := newTestNode(t, nil)

	if _, err := node.ChallengeProof(context.Background(), "0x8f2a...9d12", "first"); err != nil {
		t.Fatalf("first challenge failed: %v", err)
	}
	if _, err := node.ChallengeProof(context.Background(), "0x8f2a...9d12", "second"); !errors.Is(err, ErrAlreadyDisputed) {
		t.Errorf("expected ErrAlreadyDisputed, got %v", err)
	}
}

func TestChallengeProofResolverFailureLeavesOpen(t *testing.T) {
	resolverDown := true
	oracle := &stubOracle{
		resolveFn: func(ctx context.Context, proof AgentActionProof, reason string) (DisputeVerdict, error) {
			if resolverDown {
				return DisputeVerdict{}, ErrOracleUnavailable
			}
			return DisputeVerdict{Status: DisputeResolvedUpheld, Comment: "Stands.", Penalty: UpheldBonus}, nil
		},
	}
	node := newTestNode(t, oracle)

	proof, err := node.ChallengeProof(context.Background(), "0x8f2a...9d12", "challenge it")
	if err == nil {
		t.Fatal("expected resolver error")
	}

	// Optimistic marking survives the failure; no settlement happened.
	if !proof.IsDisputed || proof.DisputeStatus != DisputeOpen {
		t.Errorf("expected dispute to remain Open, got %+v", proof)
	}
	agent, _ := node.registry.Get("agent-alpha-01")
	if agent.TokenBalance != 4500 {
		t.Errorf("expected balance unchanged, got %d", agent.TokenBalance)
	}
	if node.ledger.Len() != 0 {
		t.Errorf("expected no settlement transactions, got %d", node.ledger.Len())
	}

	// The stored proof still carries the challenge reason for the retry.
	stored, _ := node.store.FindByID("0x8f2a...9d12")
	if stored.ChallengeReason != "challenge it" {
		t.Errorf("expected challenge reason persisted, got %q", stored.ChallengeReason)
	}

	// Retry settles once the resolver recovers.
	resolverDown = false
	proof, err = node.RetryResolution(context.Background(), "0x8f2a...9d12")
	if err != nil {
		t.Fatalf("RetryResolution failed: %v", err)
	}
	if proof.DisputeStatus != DisputeResolvedUpheld {
		t.Errorf("expected Resolved_Upheld after retry, got %s", proof.DisputeStatus)
	}
	if node.ledger.Len() != 1 {
		t.Errorf("expected 1 settlement transaction, got %d", node.ledger.Len())
	}
}

func TestRetryResolutionRequiresOpenDispute(t *testing.T) {
	node := newTestNode(t, nil)

	// Undisputed proof.
	if _, err := node.RetryResolution(context.Background(), "0x8f2a...9d12"); !errors.Is(err, ErrAlreadyDisputed) {
		t.Errorf("expected ErrAlreadyDisputed for undisputed proof, got %v", err)
	}

	// Resolved proof.
	if _, err := node.ChallengeProof(context.Background(), "0x8f2a...9d12", "reason"); err != nil {
		t.Fatalf("challenge failed: %v", err)
	}
	if _, err := node.RetryResolution(context.Background(), "0x8f2a...9d12"); !errors.Is(err, ErrAlreadyDisputed) {
		t.Errorf("expected ErrAlreadyDisputed for resolved proof, got %v", err)
	}
}

func TestDisputeEventPublished(t *testing.T) {
	node := newTestNode(t, nil)

	var disputed []string
	if err := node.events.OnProofDisputed(func(proofID string) {
		disputed = append(disputed, proofID)
	}); err != nil {
		t.Fatalf("OnProofDisputed failed: %v", err)
	}

	if _, err := node.ChallengeProof(context.Background(), "0x8f2a...9d12", "reason"); err != nil {
		t.Fatalf("ChallengeProof failed: %v", err)
	}

	if len(disputed) != 1 || disputed[0] != "0x8f2a...9d12" {
		t.Errorf("expected dispute event for the proof, got %v", disputed)
	}
}
