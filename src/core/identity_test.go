package main

import (
	"regexp"
	"strings"
	"testing"
)

var proofIDFormat = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

func TestMockIdentityProofIDFormat(t *testing.T) {
	gen := NewMockIdentity(1)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.ProofID()
		if !proofIDFormat.MatchString(id) {
			t.Fatalf("malformed proof id %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate proof id %q", id)
		}
		seen[id] = true
	}
}

func TestMockIdentityDeterministic(t *testing.T) {
	a := NewMockIdentity(99)
	b := NewMockIdentity(99)

	for i := 0; i < 10; i++ {
		if a.ProofID() != b.ProofID() {
			t.Fatal("same seed must produce the same fingerprint sequence")
		}
	}
	if a.TxHash() != b.TxHash() {
		t.Error("same seed must produce the same hash sequence")
	}
	if a.BlockHeight() != b.BlockHeight() {
		t.Error("same seed must produce the same block heights")
	}
}

func TestMockIdentityTxID(t *testing.T) {
	gen := NewMockIdentity(1)

	id := gen.TxID("reward")
	if !strings.HasPrefix(id, "reward-") {
		t.Errorf("expected prefix, got %q", id)
	}
	if id == gen.TxID("reward") {
		t.Error("tx ids must be unique")
	}
}

func TestMockIdentityTxHashFormat(t *testing.T) {
	gen := NewMockIdentity(1)

	hash := gen.TxHash()
	if !strings.HasPrefix(hash, "0x") || len(hash) != 42 {
		t.Errorf("unexpected tx hash %q", hash)
	}
}

func TestMockIdentityBlockHeightRange(t *testing.T) {
	gen := NewMockIdentity(1)

	for i := 0; i < 50; i++ {
		h := gen.BlockHeight()
		if h < 0 || h >= 10000000 {
			t.Fatalf("block height out of range: %d", h)
		}
	}
}
