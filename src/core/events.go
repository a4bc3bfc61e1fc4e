package main

import (
	"github.com/asaskevich/EventBus"
)

// Event topics published by the ledger core. Observers (notifications,
// dashboards) subscribe here instead of reaching into the stores.
const (
	TopicProofCreated    = "proof.created"
	TopicProofDisputed   = "proof.disputed"
	TopicSecurityUpdated = "security.updated"
)

// LedgerEvents decouples ledger mutations from their observers. Callbacks
// run synchronously on the mutating goroutine, so subscribers must not block.
type LedgerEvents struct {
	bus EventBus.Bus
}

// NewLedgerEvents creates an event hub.
func NewLedgerEvents() *LedgerEvents {
	return &LedgerEvents{bus: EventBus.New()}
}

// OnProofCreated registers a callback fired after a proof is admitted.
func (e *LedgerEvents) OnProofCreated(fn func(AgentActionProof)) error {
	return e.bus.Subscribe(TopicProofCreated, fn)
}

// OnProofDisputed registers a callback fired when a challenge is opened.
func (e *LedgerEvents) OnProofDisputed(fn func(proofID string)) error {
	return e.bus.Subscribe(TopicProofDisputed, fn)
}

// OnSecurityUpdated registers a callback fired when the security monitor
// rotates the protocol.
func (e *LedgerEvents) OnSecurityUpdated(fn func(SecurityProtocol)) error {
	return e.bus.Subscribe(TopicSecurityUpdated, fn)
}

func (e *LedgerEvents) publishProofCreated(proof AgentActionProof) {
	e.bus.Publish(TopicProofCreated, proof)
}

func (e *LedgerEvents) publishProofDisputed(proofID string) {
	e.bus.Publish(TopicProofDisputed, proofID)
}

func (e *LedgerEvents) publishSecurityUpdated(protocol SecurityProtocol) {
	e.bus.Publish(TopicSecurityUpdated, protocol)
}
