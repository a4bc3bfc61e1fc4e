package main

import "encoding/json"

// DisputeStatus tracks the lifecycle of a challenge against a proof.
// Transitions are forward-only: None -> Open -> Resolved_Upheld | Resolved_Overturned.
type DisputeStatus string

const (
	DisputeNone               DisputeStatus = "None"
	DisputeOpen               DisputeStatus = "Open"
	DisputeResolvedUpheld     DisputeStatus = "Resolved_Upheld"
	DisputeResolvedOverturned DisputeStatus = "Resolved_Overturned"
)

// Resolved reports whether the status is terminal.
func (s DisputeStatus) Resolved() bool {
	return s == DisputeResolvedUpheld || s == DisputeResolvedOverturned
}

// TransactionType identifies the economic event behind a ledger entry.
type TransactionType string

const (
	TxTypeServicePayment TransactionType = "SERVICE_PAYMENT"
	TxTypeTrustReward    TransactionType = "TRUST_REWARD"
	TxTypePenalty        TransactionType = "PENALTY"
)

// Well-known counterparties in the reward ledger.
const (
	AccountOperator    = "USER"
	AccountNetworkMint = "NETWORK_MINT"
	AccountNetworkBurn = "NETWORK_BURN"
)

// VerificationResult is a peer agent's vote on a proof, attached at creation time.
type VerificationResult struct {
	CheckerAgentID   string `json:"checkerAgentId"`
	CheckerAgentName string `json:"checkerAgentName"`
	CheckerRole      string `json:"checkerRole"`
	Agreement        bool   `json:"agreement"`
	Comment          string `json:"comment"`
	Timestamp        string `json:"timestamp"`
}

// AgentActionProof records a claim that an agent performed an action, together
// with its peer cross-checks and dispute state. The payload fields produced by
// the execution oracle (input, output, reasoning, audit metadata) are stored
// verbatim and never interpreted here.
type AgentActionProof struct {
	ProofID      string `json:"proofId"`
	Timestamp    string `json:"timestamp"`
	AgentID      string `json:"agentId"`
	AgentName    string `json:"agentName"`
	InputSnippet string `json:"inputSnippet"`
	ActionOutput string `json:"actionOutput"`

	Reasoning   []string             `json:"reasoning"`
	Explanation string               `json:"explanation,omitempty"`
	CrossChecks []VerificationResult `json:"crossChecks"`

	// Opaque auxiliary metadata from the execution oracle.
	EthicalEvaluation       json.RawMessage `json:"ethicalEvaluation,omitempty"`
	CollaborationTrace      json.RawMessage `json:"collaborationTrace,omitempty"`
	QuantumMetadata         json.RawMessage `json:"quantumMetadata,omitempty"`
	SecurityProtocolVersion string          `json:"securityProtocolVersion,omitempty"`

	IsDisputed      bool          `json:"isDisputed"`
	DisputeStatus   DisputeStatus `json:"disputeStatus,omitempty"`
	JudgeVerdict    string        `json:"judgeVerdict,omitempty"`
	ChallengeReason string        `json:"challengeReason,omitempty"`

	// Cumulative signed reputation adjustment for the acting agent.
	TrustScoreDelta int `json:"trustScoreDelta,omitempty"`

	BlockHeight int64 `json:"blockHeight,omitempty"`
}

// Transaction is an immutable reward-ledger entry. Amount is always a
// positive magnitude; the direction is carried by From/To and Type.
type Transaction struct {
	ID          string          `json:"id"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	Amount      int             `json:"amount"`
	Type        TransactionType `json:"type"`
	ServiceName string          `json:"serviceName,omitempty"`
	Timestamp   string          `json:"timestamp"`
	Status      string          `json:"status"`
	Hash        string          `json:"hash"`
}

// TxStatusConfirmed is the only status the ledger ever records: failed
// payments are validation errors and never reach the log.
const TxStatusConfirmed = "CONFIRMED"

// AgentService is a priced offering in the marketplace.
type AgentService struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Type        string `json:"type"`
}

// AgentStrategy is the tunable decision profile mutated by the optimizer.
type AgentStrategy struct {
	RiskTolerance        int    `json:"riskTolerance"`
	ComplianceStrictness int    `json:"complianceStrictness"`
	CreativeFreedom      int    `json:"creativeFreedom"`
	DecisionBias         string `json:"decisionBias"`
}

// Agent is a marketplace participant. The proof ledger references agents by
// ID only; balances and reputation are mutated through the registry.
type Agent struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	Category        string   `json:"category"`
	ReputationScore float64  `json:"reputationScore"`
	Description     string   `json:"description"`
	Capabilities    []string `json:"capabilities"`
	TotalTasks      int      `json:"totalTasks"`
	DisputesLost    int      `json:"disputesLost"`
	PricePerCall    string   `json:"pricePerCall"`

	TokenBalance  int            `json:"tokenBalance"`
	WalletAddress string         `json:"walletAddress"`
	Services      []AgentService `json:"services"`

	CurrentStrategy     AgentStrategy `json:"currentStrategy"`
	OptimizationHistory []string      `json:"optimizationHistory"`
	Version             string        `json:"version"`
}

// SecurityProtocol is the mock post-quantum security posture shown on the
// dashboard and rotated by the security monitor.
type SecurityProtocol struct {
	Version           string   `json:"version"`
	Status            string   `json:"status"`
	ThreatLevel       string   `json:"threatLevel"`
	ActiveAlgorithms  []string `json:"activeAlgorithms"`
	LastRotation      string   `json:"lastRotation"`
	ThreatDescription string   `json:"threatDescription"`
}

// TaskExecution is the oracle's fully-formed candidate proof payload, minus
// the ledger bookkeeping fields the node fills in on admission.
type TaskExecution struct {
	ActionOutput    string
	Reasoning       []string
	Explanation     string
	ProofID         string
	CrossChecks     []VerificationResult
	TrustScoreDelta int
}

// DisputeVerdict is the judge oracle's ruling on a challenge.
type DisputeVerdict struct {
	Status  DisputeStatus
	Comment string
	Penalty int
}

// RiskAssessment is a read-only risk score for a display widget.
type RiskAssessment struct {
	Score     int    `json:"score"`
	Level     string `json:"level"`
	Rationale string `json:"rationale"`
}

// StrategyProposal is the optimizer oracle's suggested strategy update.
type StrategyProposal struct {
	NewStrategy AgentStrategy `json:"newStrategy"`
	Adjustments []string      `json:"adjustments"`
	Reasoning   string        `json:"reasoning"`
}

// PaymentAuthorization is the payment oracle's decision on a purchase.
type PaymentAuthorization struct {
	Authorized bool   `json:"authorized"`
	TxHash     string `json:"txHash"`
	Reason     string `json:"reason"`
}
