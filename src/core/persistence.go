package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	proofsFilename       = "proofs.json"
	transactionsFilename = "transactions.json"
)

// saveJSONSnapshot serializes the full value to a file under dataDir. Every
// mutation rewrites the whole snapshot; there is no incremental diffing.
func saveJSONSnapshot(dataDir, filename string, v interface{}) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	filePath := filepath.Join(dataDir, filename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	return nil
}

// loadProofsSnapshot reads the persisted proof list. A missing file returns
// (nil, false, nil); a corrupt file returns an error the caller is expected
// to swallow in favor of the seed data.
func loadProofsSnapshot(dataDir string) ([]AgentActionProof, bool, error) {
	filePath := filepath.Join(dataDir, proofsFilename)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read proofs file: %w", err)
	}

	var proofs []AgentActionProof
	if err := json.Unmarshal(data, &proofs); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal proofs file: %w", err)
	}

	return proofs, true, nil
}

// loadTransactionsSnapshot reads the persisted transaction log. Missing and
// corrupt files both yield an empty log: the ledger starts fresh rather than
// refusing to boot.
func loadTransactionsSnapshot(dataDir string) ([]Transaction, error) {
	filePath := filepath.Join(dataDir, transactionsFilename)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read transactions file: %w", err)
	}

	var txs []Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transactions file: %w", err)
	}

	return txs, nil
}

// removeSnapshot deletes a persisted snapshot file. Used by the ledger reset.
func removeSnapshot(dataDir, filename string) error {
	filePath := filepath.Join(dataDir, filename)

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove snapshot file: %w", err)
	}

	return nil
}
