package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Package-level errors for oracle operations
var (
	ErrOracleNotConfigured = errors.New("oracle not configured")
	ErrOracleUnavailable   = errors.New("oracle service unavailable")
	ErrMalformedReply      = errors.New("malformed oracle reply")
)

// Oracle is the external generative-model collaborator behind task
// execution, peer auditing, dispute adjudication, risk scoring, strategy
// optimization, payment authorization, and security monitoring. Every call
// may fail; callers must commit no state before a call returns.
type Oracle interface {
	// ExecuteTask runs a task as the agent and audits the result with a
	// swarm of peer checkers, returning a fully-formed candidate proof
	// payload.
	ExecuteTask(ctx context.Context, agent Agent, input string, peers []Agent) (TaskExecution, error)
	// ResolveDispute adjudicates a challenge against a proof.
	ResolveDispute(ctx context.Context, proof AgentActionProof, reason string) (DisputeVerdict, error)
	// AssessRisk scores an agent's recent history. Read-only.
	AssessRisk(ctx context.Context, agent Agent, history []AgentActionProof) (RiskAssessment, error)
	// OptimizeStrategy proposes a new decision strategy for an agent.
	OptimizeStrategy(ctx context.Context, agent Agent, history []AgentActionProof) (StrategyProposal, error)
	// AuthorizeTransaction rules on a service payment.
	AuthorizeTransaction(ctx context.Context, agent Agent, purpose string, amount, riskScore int) (PaymentAuthorization, error)
	// MonitorSecurity re-evaluates the mock security posture.
	MonitorSecurity(ctx context.Context, current SecurityProtocol, entropy float64) (SecurityProtocol, error)
}

// Swarm consensus policy: full agreement, partial agreement, rejection.
const (
	swarmSize          = 2
	swarmFullDelta     = 5
	swarmPartialDelta  = 2
	swarmRejectedDelta = -5
)

var oracleTracer = otel.Tracer("aethernode/oracle")

// GeminiOracle implements Oracle against the generative language API.
type GeminiOracle struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	identity   IdentityGenerator
	rng        *rand.Rand
	rngMu      sync.Mutex
}

// NewGeminiOracle creates an HTTP-backed oracle.
func NewGeminiOracle(baseURL, apiKey, model string, httpClient *http.Client, identity IdentityGenerator) *GeminiOracle {
	return &GeminiOracle{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
		identity:   identity,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Request/response shapes for the generateContent endpoint.
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		Temperature      float64 `json:"temperature"`
		ResponseMimeType string  `json:"responseMimeType"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// generate performs one model call and returns the raw reply text.
func (o *GeminiOracle) generate(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	if o.apiKey == "" {
		return "", ErrOracleNotConfigured
	}

	reqBody := geminiRequest{
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: system}}},
	}
	reqBody.GenerationConfig.Temperature = temperature
	reqBody.GenerationConfig.ResponseMimeType = "application/json"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", o.baseURL, o.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s", ErrOracleUnavailable, resp.StatusCode, string(body))
	}

	var modelResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&modelResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(modelResp.Candidates) == 0 || len(modelResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty candidate list", ErrMalformedReply)
	}

	return modelResp.Candidates[0].Content.Parts[0].Text, nil
}

// extractJSON unmarshals a model reply into dst, tolerating markdown code
// fences and prose around the JSON object.
func extractJSON(text string, dst interface{}) error {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first != -1 && last > first {
		cleaned = cleaned[first : last+1]
	}

	if err := json.Unmarshal([]byte(cleaned), dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return nil
}

func (o *GeminiOracle) pickSwarm(peers []Agent) []Agent {
	o.rngMu.Lock()
	defer o.rngMu.Unlock()

	shuffled := make([]Agent, len(peers))
	copy(shuffled, peers)
	o.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if len(shuffled) > swarmSize {
		shuffled = shuffled[:swarmSize]
	}
	return shuffled
}

// swarmDelta derives the trust score delta from the cross-check votes.
func swarmDelta(checks []VerificationResult) int {
	agreements := 0
	for _, c := range checks {
		if c.Agreement {
			agreements++
		}
	}

	switch {
	case len(checks) > 0 && agreements == len(checks):
		return swarmFullDelta
	case agreements > 0:
		return swarmPartialDelta
	default:
		return swarmRejectedDelta
	}
}

// ExecuteTask runs the main agent call, then audits it with two random peer
// checkers in parallel. A failed checker counts as an automated pass so one
// flaky audit cannot sink the whole execution.
func (o *GeminiOracle) ExecuteTask(ctx context.Context, agent Agent, input string, peers []Agent) (TaskExecution, error) {
	ctx, span := oracleTracer.Start(ctx, "oracle.ExecuteTask",
		trace.WithAttributes(attribute.String("agent.id", agent.ID)))
	defer span.End()

	start := time.Now()
	exec, err := o.executeTask(ctx, agent, input, peers)
	ObserveOracleCall("executeTask", time.Since(start).Seconds(), err)
	return exec, err
}

func (o *GeminiOracle) executeTask(ctx context.Context, agent Agent, input string, peers []Agent) (TaskExecution, error) {
	system := fmt.Sprintf(`You are %s, an AI agent specialized in %s.
Your task is to analyze the user input based on your specialty.

RESPONSE FORMAT:
You MUST return valid JSON only. Do not add markdown formatting.
Structure:
{
  "output": "Your detailed analysis or decision here.",
  "reasoning": ["Reason 1", "Reason 2", "Reason 3"],
  "riskScore": 0-100
}`, agent.Name, agent.Role)

	reply, err := o.generate(ctx, system, input, 0.3)
	if err != nil {
		return TaskExecution{}, fmt.Errorf("agent execution failed: %w", err)
	}

	var mainResult struct {
		Output    string   `json:"output"`
		Reasoning []string `json:"reasoning"`
		RiskScore int      `json:"riskScore"`
	}
	if err := extractJSON(reply, &mainResult); err != nil {
		return TaskExecution{}, fmt.Errorf("agent execution failed: %w", err)
	}

	swarm := o.pickSwarm(peers)
	checks := make([]VerificationResult, len(swarm))

	var wg sync.WaitGroup
	for i, checker := range swarm {
		wg.Add(1)
		go func(i int, checker Agent) {
			defer wg.Done()
			checks[i] = o.runCrossCheck(ctx, checker, input, mainResult.Output)
		}(i, checker)
	}
	wg.Wait()

	return TaskExecution{
		ActionOutput:    mainResult.Output,
		Reasoning:       mainResult.Reasoning,
		ProofID:         o.identity.ProofID(),
		CrossChecks:     checks,
		TrustScoreDelta: swarmDelta(checks),
	}, nil
}

func (o *GeminiOracle) runCrossCheck(ctx context.Context, checker Agent, input, decision string) VerificationResult {
	snippet := input
	if len(snippet) > 500 {
		snippet = snippet[:500]
	}

	system := fmt.Sprintf(`You are %s, acting as an impartial auditor in the Aether Trust Swarm.
Your role is: %s.

Review a decision made by another AI agent.
Original Input: "%s..."
Original Agent Decision: "%s"

Based on your expertise, determine if you agree or disagree.
Be strict but fair. Reply as JSON: {"agreement": true|false, "comment": "one sentence"}`,
		checker.Name, checker.Role, snippet, decision)

	result := VerificationResult{
		CheckerAgentID:   checker.ID,
		CheckerAgentName: checker.Name,
		CheckerRole:      checker.Role,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	}

	reply, err := o.generate(ctx, system, "Audit this transaction.", 0.4)
	if err == nil {
		var check struct {
			Agreement bool   `json:"agreement"`
			Comment   string `json:"comment"`
		}
		if err = extractJSON(reply, &check); err == nil {
			result.Agreement = check.Agreement
			result.Comment = check.Comment
			return result
		}
	}

	logger.Warn("Checker node failed, counting as automated pass", "checkerId", checker.ID, "error", err)
	result.Agreement = true
	result.Comment = "Automated verification pass (error in checker node)."
	return result
}

// ResolveDispute asks the judge persona to rule on a challenge.
func (o *GeminiOracle) ResolveDispute(ctx context.Context, proof AgentActionProof, reason string) (DisputeVerdict, error) {
	ctx, span := oracleTracer.Start(ctx, "oracle.ResolveDispute",
		trace.WithAttributes(attribute.String("proof.id", proof.ProofID)))
	defer span.End()

	start := time.Now()
	verdict, err := o.resolveDispute(ctx, proof, reason)
	ObserveOracleCall("resolveDispute", time.Since(start).Seconds(), err)
	return verdict, err
}

func (o *GeminiOracle) resolveDispute(ctx context.Context, proof AgentActionProof, reason string) (DisputeVerdict, error) {
	consensus := make([]string, 0, len(proof.CrossChecks))
	for _, c := range proof.CrossChecks {
		vote := "Disagreed"
		if c.Agreement {
			vote = "Agreed"
		}
		consensus = append(consensus, c.CheckerAgentName+": "+vote)
	}

	system := fmt.Sprintf(`You are "Justitia", the Supreme Judge Agent of the Aether Protocol.
A user has challenged a decision made by an AI agent.

CASE DATA:
original_input: "%s"
agent_output: "%s"
agent_reasoning: %s
swarm_consensus: %s

CHALLENGER ARGUMENT:
"%s"

TASK:
Evaluate the Challenger's Argument against the Agent's Decision and Swarm Consensus.
If the Agent was fundamentally correct, UPHOLD the decision.
If the Agent was wrong, biased, or the challenger has a valid point that invalidates the result, OVERTURN the decision.
Reply as JSON: {"upholdAgent": true|false, "verdictComment": "..."}`,
		proof.InputSnippet, proof.ActionOutput,
		strings.Join(proof.Reasoning, "; "), strings.Join(consensus, ", "), reason)

	reply, err := o.generate(ctx, system, "Render your verdict on this dispute.", 0.1)
	if err != nil {
		return DisputeVerdict{}, fmt.Errorf("dispute resolution failed: %w", err)
	}

	var ruling struct {
		UpholdAgent    bool   `json:"upholdAgent"`
		VerdictComment string `json:"verdictComment"`
	}
	if err := extractJSON(reply, &ruling); err != nil {
		return DisputeVerdict{}, fmt.Errorf("dispute resolution failed: %w", err)
	}

	if ruling.UpholdAgent {
		return DisputeVerdict{Status: DisputeResolvedUpheld, Comment: ruling.VerdictComment, Penalty: UpheldBonus}, nil
	}
	return DisputeVerdict{Status: DisputeResolvedOverturned, Comment: ruling.VerdictComment, Penalty: OverturnedPenalty}, nil
}

// AssessRisk scores an agent's recent proof history for the dashboard.
func (o *GeminiOracle) AssessRisk(ctx context.Context, agent Agent, history []AgentActionProof) (RiskAssessment, error) {
	ctx, span := oracleTracer.Start(ctx, "oracle.AssessRisk")
	defer span.End()

	start := time.Now()
	assessment, err := o.assessRisk(ctx, agent, history)
	ObserveOracleCall("assessRisk", time.Since(start).Seconds(), err)
	return assessment, err
}

func (o *GeminiOracle) assessRisk(ctx context.Context, agent Agent, history []AgentActionProof) (RiskAssessment, error) {
	disputed := 0
	for _, p := range history {
		if p.IsDisputed {
			disputed++
		}
	}

	system := fmt.Sprintf(`You are the Aether risk engine. Score the operational risk of agent %s (%s).
Recent proofs: %d, disputed: %d, reputation: %.1f, disputes lost: %d.
Reply as JSON: {"score": 0-100, "level": "LOW|MEDIUM|HIGH", "rationale": "..."}`,
		agent.Name, agent.Role, len(history), disputed, agent.ReputationScore, agent.DisputesLost)

	reply, err := o.generate(ctx, system, "Assess this agent.", 0.2)
	if err != nil {
		return RiskAssessment{}, fmt.Errorf("risk assessment failed: %w", err)
	}

	var assessment RiskAssessment
	if err := extractJSON(reply, &assessment); err != nil {
		return RiskAssessment{}, fmt.Errorf("risk assessment failed: %w", err)
	}
	return assessment, nil
}

// OptimizeStrategy proposes a tuned decision strategy for an agent.
func (o *GeminiOracle) OptimizeStrategy(ctx context.Context, agent Agent, history []AgentActionProof) (StrategyProposal, error) {
	ctx, span := oracleTracer.Start(ctx, "oracle.OptimizeStrategy")
	defer span.End()

	start := time.Now()
	proposal, err := o.optimizeStrategy(ctx, agent, history)
	ObserveOracleCall("optimizeStrategy", time.Since(start).Seconds(), err)
	return proposal, err
}

func (o *GeminiOracle) optimizeStrategy(ctx context.Context, agent Agent, history []AgentActionProof) (StrategyProposal, error) {
	system := fmt.Sprintf(`You are the Aether strategy optimizer. Agent %s currently runs
riskTolerance=%d complianceStrictness=%d creativeFreedom=%d decisionBias=%s
over %d recent proofs. Propose adjusted parameters.
Reply as JSON: {"newStrategy": {"riskTolerance": n, "complianceStrictness": n, "creativeFreedom": n, "decisionBias": "..."}, "adjustments": ["..."], "reasoning": "..."}`,
		agent.Name, agent.CurrentStrategy.RiskTolerance, agent.CurrentStrategy.ComplianceStrictness,
		agent.CurrentStrategy.CreativeFreedom, agent.CurrentStrategy.DecisionBias, len(history))

	reply, err := o.generate(ctx, system, "Optimize this agent's strategy.", 0.5)
	if err != nil {
		return StrategyProposal{}, fmt.Errorf("strategy optimization failed: %w", err)
	}

	var proposal StrategyProposal
	if err := extractJSON(reply, &proposal); err != nil {
		return StrategyProposal{}, fmt.Errorf("strategy optimization failed: %w", err)
	}
	return proposal, nil
}

// AuthorizeTransaction rules on a service payment before any balance moves.
func (o *GeminiOracle) AuthorizeTransaction(ctx context.Context, agent Agent, purpose string, amount, riskScore int) (PaymentAuthorization, error) {
	ctx, span := oracleTracer.Start(ctx, "oracle.AuthorizeTransaction",
		trace.WithAttributes(attribute.Int("amount", amount)))
	defer span.End()

	start := time.Now()
	auth, err := o.authorizeTransaction(ctx, agent, purpose, amount, riskScore)
	ObserveOracleCall("authorizeTransaction", time.Since(start).Seconds(), err)
	return auth, err
}

func (o *GeminiOracle) authorizeTransaction(ctx context.Context, agent Agent, purpose string, amount, riskScore int) (PaymentAuthorization, error) {
	system := fmt.Sprintf(`You are the Aether payment guard. An operator wants to pay agent %s
%d AE for "%s". Current risk score: %d/100. Approve unless the purpose is abusive.
Reply as JSON: {"authorized": true|false, "reason": "..."}`,
		agent.Name, amount, purpose, riskScore)

	reply, err := o.generate(ctx, system, "Authorize or reject this payment.", 0.1)
	if err != nil {
		return PaymentAuthorization{}, fmt.Errorf("transaction authorization failed: %w", err)
	}

	var auth PaymentAuthorization
	if err := extractJSON(reply, &auth); err != nil {
		return PaymentAuthorization{}, fmt.Errorf("transaction authorization failed: %w", err)
	}

	auth.TxHash = o.identity.TxHash()
	return auth, nil
}

// MonitorSecurity re-evaluates the mock post-quantum posture.
func (o *GeminiOracle) MonitorSecurity(ctx context.Context, current SecurityProtocol, entropy float64) (SecurityProtocol, error) {
	ctx, span := oracleTracer.Start(ctx, "oracle.MonitorSecurity")
	defer span.End()

	start := time.Now()
	protocol, err := o.monitorSecurity(ctx, current, entropy)
	ObserveOracleCall("monitorSecurity", time.Since(start).Seconds(), err)
	return protocol, err
}

func (o *GeminiOracle) monitorSecurity(ctx context.Context, current SecurityProtocol, entropy float64) (SecurityProtocol, error) {
	system := fmt.Sprintf(`You are the Aether Sentinel security monitor. Current protocol %s,
threat level %s, entropy reading %.2f. Decide whether to rotate the protocol version
or escalate the threat level.
Reply as JSON: {"version": "...", "status": "SECURE|COMPROMISED", "threatLevel": "LOW|MEDIUM|HIGH|CRITICAL", "activeAlgorithms": ["..."], "threatDescription": "..."}`,
		current.Version, current.ThreatLevel, entropy)

	reply, err := o.generate(ctx, system, "Report the current security posture.", 0.6)
	if err != nil {
		return SecurityProtocol{}, fmt.Errorf("security monitoring failed: %w", err)
	}

	var protocol SecurityProtocol
	if err := extractJSON(reply, &protocol); err != nil {
		return SecurityProtocol{}, fmt.Errorf("security monitoring failed: %w", err)
	}

	if protocol.Version != current.Version {
		protocol.LastRotation = time.Now().UTC().Format(time.RFC3339)
	} else {
		protocol.LastRotation = current.LastRotation
	}
	return protocol, nil
}
