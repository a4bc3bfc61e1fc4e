package main

import "time"

// seedAgents returns the genesis agent set. Balances and reputation here are
// starting values; the registry owns them afterwards.
func seedAgents() []Agent {
	return []Agent{
		{
			ID:              "agent-alpha-01",
			Name:            "Guardian Prime",
			Role:            "Content Moderator",
			Category:        "Moderation",
			ReputationScore: 98.5,
			Description:     "High-speed content safety analysis for hate speech, violence, and policy violations.",
			Capabilities:    []string{"Text Analysis", "Policy Enforcement", "Safety Scoring"},
			TotalTasks:      14520,
			DisputesLost:    2,
			PricePerCall:    "5 AE",
			TokenBalance:    4500,
			WalletAddress:   "0x71C...9A23",
			Services: []AgentService{
				{ID: "srv-1a", Name: "Deep Audit", Description: "Full historical content audit for compliance.", Price: 50, Type: "AUDIT"},
				{ID: "srv-1b", Name: "Real-time Guard", Description: "Stream monitoring for 1 hour.", Price: 100, Type: "VALIDATION"},
			},
			CurrentStrategy: AgentStrategy{RiskTolerance: 10, ComplianceStrictness: 95, CreativeFreedom: 5, DecisionBias: "ANALYTICAL"},
			Version:         "v1.0",
		},
		{
			ID:              "agent-lex-99",
			Name:            "LexMachina",
			Role:            "Legal Analyst",
			Category:        "Legal",
			ReputationScore: 94.2,
			Description:     "Analyzes contracts for risky clauses, loop-holes, and compliance issues.",
			Capabilities:    []string{"Contract Review", "Risk Assessment", "Compliance Check"},
			TotalTasks:      3205,
			DisputesLost:    15,
			PricePerCall:    "25 AE",
			TokenBalance:    1250,
			WalletAddress:   "0xB4F...221D",
			Services: []AgentService{
				{ID: "srv-2a", Name: "Contract Validation", Description: "Verify smart contract logic against legal prose.", Price: 200, Type: "VALIDATION"},
				{ID: "srv-2b", Name: "Liability Scan", Description: "Identify potential litigation vectors.", Price: 75, Type: "AUDIT"},
			},
			CurrentStrategy: AgentStrategy{RiskTolerance: 40, ComplianceStrictness: 90, CreativeFreedom: 20, DecisionBias: "ANALYTICAL"},
			Version:         "v2.4",
		},
		{
			ID:              "agent-fin-flux",
			Name:            "Flux Capital",
			Role:            "Transaction Auditor",
			Category:        "Finance",
			ReputationScore: 99.1,
			Description:     "Real-time transaction auditing for fraud patterns and anomaly detection.",
			Capabilities:    []string{"Fraud Detection", "Pattern Recognition", "Ledger Audit"},
			TotalTasks:      89000,
			DisputesLost:    0,
			PricePerCall:    "10 AE",
			TokenBalance:    89000,
			WalletAddress:   "0x11A...FF00",
			Services: []AgentService{
				{ID: "srv-3a", Name: "Ledger Forensics", Description: "Trace funds across 10 layers.", Price: 500, Type: "AUDIT"},
				{ID: "srv-3b", Name: "Risk Scoring", Description: "Predictive financial risk model generation.", Price: 150, Type: "GENERATION"},
			},
			CurrentStrategy: AgentStrategy{RiskTolerance: 25, ComplianceStrictness: 85, CreativeFreedom: 10, DecisionBias: "BALANCED"},
			Version:         "v3.1",
		},
		{
			ID:              "agent-truth-seeker",
			Name:            "Veritas Lens",
			Role:            "Fact Checker",
			Category:        "Security",
			ReputationScore: 96.0,
			Description:     "Cross-references inputs against knowledge bases to verify factual accuracy.",
			Capabilities:    []string{"Fact Checking", "Source Verification", "Bias Detection"},
			TotalTasks:      5600,
			DisputesLost:    12,
			PricePerCall:    "8 AE",
			TokenBalance:    3200,
			WalletAddress:   "0xD99...EE44",
			Services: []AgentService{
				{ID: "srv-4a", Name: "Dataset Cleaning", Description: "Remove hallucinations from training data.", Price: 300, Type: "TRAINING"},
				{ID: "srv-4b", Name: "Source Trace", Description: "Verify origin of information.", Price: 40, Type: "VALIDATION"},
			},
			CurrentStrategy: AgentStrategy{RiskTolerance: 15, ComplianceStrictness: 80, CreativeFreedom: 15, DecisionBias: "ANALYTICAL"},
			Version:         "v1.2",
		},
	}
}

// seedProofs returns the genesis proof snapshot used when no persisted state
// exists, or when the operator wipes the ledger.
func seedProofs() []AgentActionProof {
	return []AgentActionProof{
		{
			ProofID:      "0x8f2a...9d12",
			Timestamp:    time.Now().Add(-10000 * time.Second).UTC().Format(time.RFC3339),
			AgentID:      "agent-alpha-01",
			AgentName:    "Guardian Prime",
			InputSnippet: "User comment verification regarding aggressive language.",
			ActionOutput: "Flagged as Harassment",
			Reasoning:    []string{"Contains direct ad hominem attacks.", "Violates community standard 4.2"},
			CrossChecks: []VerificationResult{
				{
					CheckerAgentID:   "agent-truth-seeker",
					CheckerAgentName: "Veritas Lens",
					CheckerRole:      "Fact Checker",
					Agreement:        true,
					Comment:          "Agreed. Language is hostile.",
					Timestamp:        time.Now().Add(-10000 * time.Second).UTC().Format(time.RFC3339),
				},
			},
			IsDisputed:    false,
			DisputeStatus: DisputeNone,
			BlockHeight:   4502119,
		},
	}
}

// defaultSecurityProtocol is the boot posture before the monitor's first check.
func defaultSecurityProtocol() SecurityProtocol {
	return SecurityProtocol{
		Version:           "PQC-v1.0.4",
		Status:            "SECURE",
		ThreatLevel:       "LOW",
		ActiveAlgorithms:  []string{"CRYSTALS-Kyber", "Dilithium-5"},
		LastRotation:      time.Now().UTC().Format(time.RFC3339),
		ThreatDescription: "All systems nominal. Quantum coherence stable.",
	}
}
