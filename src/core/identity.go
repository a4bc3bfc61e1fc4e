package main

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
)

// IdentityGenerator produces the fingerprints, hashes, and block heights that
// decorate ledger records. Nothing here is cryptographic: the protocol treats
// these as opaque identifiers, so the generator is a pluggable boundary that
// could be backed by a real hash function later.
type IdentityGenerator interface {
	// ProofID returns a new proof fingerprint ("0x" + 64 hex chars).
	ProofID() string
	// TxHash returns a mock transaction hash.
	TxHash() string
	// TxID returns a unique transaction identifier with the given prefix.
	TxID(prefix string) string
	// BlockHeight returns a decorative block height.
	BlockHeight() int64
}

// mockIdentity implements IdentityGenerator with a seeded PRNG. A nil-seed
// constructor is not provided on purpose: callers choose reproducibility.
type mockIdentity struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockIdentity creates a mock identity generator from a seed.
func NewMockIdentity(seed int64) IdentityGenerator {
	return &mockIdentity{rng: rand.New(rand.NewSource(seed))}
}

const hexDigits = "0123456789abcdef"

func (g *mockIdentity) hexString(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = hexDigits[g.rng.Intn(len(hexDigits))]
	}
	return string(buf)
}

func (g *mockIdentity) ProofID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return "0x" + g.hexString(64)
}

func (g *mockIdentity) TxHash() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return "0x" + g.hexString(40)
}

func (g *mockIdentity) TxID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.New().String())
}

func (g *mockIdentity) BlockHeight() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return int64(g.rng.Intn(10000000))
}
