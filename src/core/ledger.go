package main

import (
	"sync"
	"time"
)

// Protocol-level reward policy. These are not tunable per call.
const (
	// MiningRewardBase and MiningRewardMultiplier define the mining reward
	// for an admitted proof: delta*2 + 10, paid only when delta > 0.
	MiningRewardMultiplier = 2
	MiningRewardBase       = 10

	// UpheldBonus is the trust bonus (and settlement reward, in AE) when a
	// challenge fails. OverturnedPenalty is the trust loss when it succeeds.
	UpheldBonus       = 5
	OverturnedPenalty = -15
	SettlementBurn    = 15
)

// MiningReward derives the token reward for a proof's trust score delta.
// Pure and re-computable from proof state; the UI recomputes it rather than
// caching, so it must stay deterministic.
func MiningReward(trustScoreDelta int) int {
	return trustScoreDelta*MiningRewardMultiplier + MiningRewardBase
}

// RewardLedger is the append-only record of token-balance-affecting events
// and the sole writer of Transaction records. Entries are totally ordered by
// append time and are never mutated, removed, or deduplicated - not even by
// a ledger reset.
type RewardLedger struct {
	mu           sync.RWMutex
	transactions []Transaction
	dataDir      string
	identity     IdentityGenerator
}

// NewRewardLedger reloads the persisted transaction log from dataDir.
// Missing or corrupt logs start empty.
func NewRewardLedger(dataDir string, identity IdentityGenerator) *RewardLedger {
	ledger := &RewardLedger{dataDir: dataDir, identity: identity}

	txs, err := loadTransactionsSnapshot(dataDir)
	if err != nil {
		logger.Warn("Discarding corrupt transaction log", "dataDir", dataDir, "error", err)
		txs = nil
	} else if len(txs) > 0 {
		logger.Info("Loaded transaction log", "count", len(txs), "dataDir", dataDir)
	}

	ledger.transactions = txs
	return ledger
}

// appendLocked records a transaction and persists the log. Callers must hold
// the write lock.
func (l *RewardLedger) appendLocked(tx Transaction) Transaction {
	l.transactions = append(l.transactions, tx)
	if err := saveJSONSnapshot(l.dataDir, transactionsFilename, l.transactions); err != nil {
		logger.Error("Failed to persist transaction log", "error", err)
	}

	RecordTransactionAppended(tx.Type, tx.Amount)
	logger.Info("Appended transaction", "txId", tx.ID, "type", tx.Type, "from", tx.From, "to", tx.To, "amount", tx.Amount)
	return tx
}

// RecordTrustReward appends a TRUST_REWARD minted to an agent.
func (l *RewardLedger) RecordTrustReward(agentID string, amount int) Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.appendLocked(Transaction{
		ID:        l.identity.TxID("reward"),
		From:      AccountNetworkMint,
		To:        agentID,
		Amount:    amount,
		Type:      TxTypeTrustReward,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    TxStatusConfirmed,
		Hash:      l.identity.TxHash(),
	})
}

// RecordServicePayment appends a confirmed SERVICE_PAYMENT from the operator
// to an agent. The authorization hash doubles as the transaction id, matching
// the payment oracle's receipt.
func (l *RewardLedger) RecordServicePayment(agentID, serviceName string, amount int, authHash string) Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.appendLocked(Transaction{
		ID:          authHash,
		From:        AccountOperator,
		To:          agentID,
		Amount:      amount,
		Type:        TxTypeServicePayment,
		ServiceName: serviceName,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Status:      TxStatusConfirmed,
		Hash:        authHash,
	})
}

// RecordPenalty appends a PENALTY burning tokens from an agent after an
// overturned dispute. Amount is a positive magnitude.
func (l *RewardLedger) RecordPenalty(agentID string, amount int) Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.appendLocked(Transaction{
		ID:        l.identity.TxID("penalty"),
		From:      agentID,
		To:        AccountNetworkBurn,
		Amount:    amount,
		Type:      TxTypePenalty,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    TxStatusConfirmed,
		Hash:      l.identity.TxHash(),
	})
}

// Transactions returns a copy of the log in insertion order.
func (l *RewardLedger) Transactions() []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// Len returns the number of recorded transactions.
func (l *RewardLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.transactions)
}
