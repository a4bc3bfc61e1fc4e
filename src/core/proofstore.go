package main

import (
	"errors"
	"strings"
	"sync"
)

// Package-level errors for proof store operations
var (
	ErrProofNotFound   = errors.New("proof not found")
	ErrDuplicateProof  = errors.New("duplicate proof id")
	ErrAlreadyDisputed = errors.New("proof has already been challenged")
)

// ProofStore is the durable, ordered record of all proofs and the single
// source of truth for dispute state. Proofs are kept newest-first; the
// consensus stream view depends on that ordering. Every mutation rewrites
// the persisted snapshot.
type ProofStore struct {
	mu      sync.RWMutex
	proofs  []AgentActionProof
	dataDir string
}

// NewProofStore loads the persisted snapshot from dataDir, falling back to
// the seed proofs when the snapshot is missing or corrupt. Corruption is
// swallowed and treated as "no data" - boot never fails on bad state.
func NewProofStore(dataDir string) *ProofStore {
	store := &ProofStore{dataDir: dataDir}

	proofs, found, err := loadProofsSnapshot(dataDir)
	if err != nil {
		logger.Warn("Discarding corrupt proof snapshot, reseeding", "dataDir", dataDir, "error", err)
		proofs, found = nil, false
	}

	if !found {
		proofs = seedProofs()
	} else {
		logger.Info("Loaded proof snapshot", "count", len(proofs), "dataDir", dataDir)
	}

	store.proofs = proofs
	return store
}

// saveLocked persists the current list. Callers must hold the write lock.
// Persistence failures are logged, not surfaced: the in-memory state remains
// authoritative for the session.
func (s *ProofStore) saveLocked() {
	if err := saveJSONSnapshot(s.dataDir, proofsFilename, s.proofs); err != nil {
		logger.Error("Failed to persist proof snapshot", "error", err)
	}
}

// Admit prepends a new proof to the ordered list. The admission is atomic
// with respect to the read-modify-write of the list: no other mutation can
// interleave between the duplicate check, the prepend, and the persist.
func (s *ProofStore) Admit(proof AgentActionProof) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.proofs {
		if s.proofs[i].ProofID == proof.ProofID {
			return ErrDuplicateProof
		}
	}

	if proof.DisputeStatus == "" {
		proof.DisputeStatus = DisputeNone
	}

	s.proofs = append([]AgentActionProof{proof}, s.proofs...)
	s.saveLocked()

	proofStoreSizeGauge.Set(float64(len(s.proofs)))
	logger.Info("Admitted proof", "proofId", proof.ProofID, "agentId", proof.AgentID, "trustScoreDelta", proof.TrustScoreDelta)
	return nil
}

// FindByID returns the proof with the given fingerprint.
func (s *ProofStore) FindByID(id string) (AgentActionProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.proofs {
		if s.proofs[i].ProofID == id {
			return s.proofs[i], nil
		}
	}
	return AgentActionProof{}, ErrProofNotFound
}

// FindBySubstring returns the first proof (in store order) whose fingerprint
// equals text or whose input snippet contains it.
func (s *ProofStore) FindBySubstring(text string) (AgentActionProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.proofs {
		if s.proofs[i].ProofID == text || strings.Contains(s.proofs[i].InputSnippet, text) {
			return s.proofs[i], nil
		}
	}
	return AgentActionProof{}, ErrProofNotFound
}

// MarkDisputed sets isDisputed on a proof. Idempotent: re-marking a disputed
// proof is a no-op for the flag.
func (s *ProofStore) MarkDisputed(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.proofs {
		if s.proofs[i].ProofID == id {
			if !s.proofs[i].IsDisputed {
				s.proofs[i].IsDisputed = true
				s.saveLocked()
			}
			return nil
		}
	}
	return ErrProofNotFound
}

// OpenDispute performs the None -> Open transition: the proof is marked
// disputed and the challenge reason recorded before any resolver verdict
// exists. A proof that has already left None cannot be challenged again.
func (s *ProofStore) OpenDispute(id, reason string) (AgentActionProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.proofs {
		if s.proofs[i].ProofID != id {
			continue
		}

		if s.proofs[i].DisputeStatus != "" && s.proofs[i].DisputeStatus != DisputeNone {
			return AgentActionProof{}, ErrAlreadyDisputed
		}

		s.proofs[i].IsDisputed = true
		s.proofs[i].DisputeStatus = DisputeOpen
		s.proofs[i].ChallengeReason = reason
		s.saveLocked()
		return s.proofs[i], nil
	}
	return AgentActionProof{}, ErrProofNotFound
}

// ApplyVerdict performs the Open -> Resolved_* transition: it sets the final
// dispute status and judge comment, and increments the cumulative trust score
// delta by the verdict's signed penalty. A resolved proof never changes again.
func (s *ProofStore) ApplyVerdict(id string, verdict DisputeVerdict) (AgentActionProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.proofs {
		if s.proofs[i].ProofID != id {
			continue
		}

		if s.proofs[i].DisputeStatus.Resolved() {
			return AgentActionProof{}, ErrAlreadyDisputed
		}

		s.proofs[i].IsDisputed = true
		s.proofs[i].DisputeStatus = verdict.Status
		s.proofs[i].JudgeVerdict = verdict.Comment
		s.proofs[i].TrustScoreDelta += verdict.Penalty
		s.saveLocked()
		return s.proofs[i], nil
	}
	return AgentActionProof{}, ErrProofNotFound
}

// ResetToSeed replaces the entire store with the seed snapshot and clears
// the persisted state. Destructive, operator-initiated; the calling layer is
// responsible for confirmation.
func (s *ProofStore) ResetToSeed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.proofs = seedProofs()
	if err := removeSnapshot(s.dataDir, proofsFilename); err != nil {
		return err
	}

	proofStoreSizeGauge.Set(float64(len(s.proofs)))
	logger.Info("Proof store reset to seed", "count", len(s.proofs))
	return nil
}

// Snapshot returns a copy of the proof list, newest first.
func (s *ProofStore) Snapshot() []AgentActionProof {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]AgentActionProof, len(s.proofs))
	copy(out, s.proofs)
	return out
}

// Len returns the number of proofs in the store.
func (s *ProofStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.proofs)
}

// OpenDisputeCount returns the number of proofs that are disputed but not
// yet resolved, for the dashboard's active-challenges widget.
func (s *ProofStore) OpenDisputeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for i := range s.proofs {
		if s.proofs[i].IsDisputed && !s.proofs[i].DisputeStatus.Resolved() {
			count++
		}
	}
	return count
}
