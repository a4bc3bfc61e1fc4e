package main

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyChallengeReason rejects challenges with no argument to judge.
var ErrEmptyChallengeReason = errors.New("challenge reason must not be empty")

// ChallengeProof opens a dispute against a proof and asks the judge oracle to
// resolve it. The proof is marked disputed before the resolver is consulted,
// so observers see the challenge immediately. If the resolver fails the
// dispute stays Open and can be retried; nothing is rolled back.
func (n *AetherNode) ChallengeProof(ctx context.Context, proofID, reason string) (AgentActionProof, error) {
	if reason == "" {
		return AgentActionProof{}, ErrEmptyChallengeReason
	}

	proof, err := n.store.OpenDispute(proofID, reason)
	if err != nil {
		return AgentActionProof{}, err
	}

	n.events.publishProofDisputed(proofID)
	RecordDisputeEvent("opened")
	logger.Info("Dispute opened", "proofId", proofID, "agentId", proof.AgentID)

	return n.resolveOpenDispute(ctx, proof, reason)
}

// RetryResolution re-runs the judge for a dispute stuck in Open after a
// resolver failure.
func (n *AetherNode) RetryResolution(ctx context.Context, proofID string) (AgentActionProof, error) {
	proof, err := n.store.FindByID(proofID)
	if err != nil {
		return AgentActionProof{}, err
	}

	if proof.DisputeStatus != DisputeOpen {
		return AgentActionProof{}, ErrAlreadyDisputed
	}
	return n.resolveOpenDispute(ctx, proof, proof.ChallengeReason)
}

// resolveOpenDispute consults the judge and settles the verdict. An oracle
// failure leaves the dispute Open.
func (n *AetherNode) resolveOpenDispute(ctx context.Context, proof AgentActionProof, reason string) (AgentActionProof, error) {
	verdict, err := n.oracle.ResolveDispute(ctx, proof, reason)
	if err != nil {
		RecordDisputeEvent("resolver_failed")
		logger.Error("Dispute resolver failed, dispute remains open", "proofId", proof.ProofID, "error", err)
		return proof, fmt.Errorf("dispute resolution failed: %w", err)
	}

	return n.applyVerdict(proof.ProofID, proof.AgentID, verdict)
}

// applyVerdict commits a terminal verdict: the proof's dispute state, the
// agent's reputation, and the reward ledger all settle together.
func (n *AetherNode) applyVerdict(proofID, agentID string, verdict DisputeVerdict) (AgentActionProof, error) {
	proof, err := n.store.ApplyVerdict(proofID, verdict)
	if err != nil {
		return AgentActionProof{}, err
	}

	if err := n.registry.AdjustReputation(agentID, float64(verdict.Penalty)); err != nil {
		logger.Warn("Failed to adjust reputation", "agentId", agentID, "error", err)
	}

	switch verdict.Status {
	case DisputeResolvedUpheld:
		RecordDisputeEvent("upheld")
		if err := n.registry.CreditBalance(agentID, UpheldBonus); err != nil {
			logger.Error("Failed to credit upheld bonus", "agentId", agentID, "error", err)
		} else {
			n.ledger.RecordTrustReward(agentID, UpheldBonus)
		}

	case DisputeResolvedOverturned:
		RecordDisputeEvent("overturned")
		if err := n.registry.CreditBalance(agentID, OverturnedPenalty); err != nil {
			logger.Error("Failed to debit overturned penalty", "agentId", agentID, "error", err)
		} else {
			n.ledger.RecordPenalty(agentID, SettlementBurn)
		}
		if err := n.registry.RecordDisputeLost(agentID); err != nil {
			logger.Warn("Failed to record lost dispute", "agentId", agentID, "error", err)
		}
	}

	logger.Info("Dispute resolved", "proofId", proofID, "status", verdict.Status, "penalty", verdict.Penalty)
	return proof, nil
}
