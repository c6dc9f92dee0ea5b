// Package mock provides an in-memory stand-in for the gateway's IP-account
// surface: per-IP ordering nonces that advance on every execution, pseudo
// transaction hashes, and minimal signature bookkeeping so failure paths can
// be exercised without a chain.
package mock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/storyprotocol/story-sdk-go/internal/devseed"
	"github.com/storyprotocol/story-sdk-go/pkg/ipaccount"
)

// Mock implements ipaccount.Backend in memory.
type Mock struct {
	mu     sync.Mutex
	nonces map[string]uint64
	now    func() time.Time
}

// Option configures the mock instance.
type Option func(*Mock)

// WithClock overrides the clock used for signature deadline checks.
func WithClock(fn func() time.Time) Option {
	return func(m *Mock) {
		if fn != nil {
			m.now = fn
		}
	}
}

// New creates an empty mock IP-account backend.
func New(opts ...Option) *Mock {
	m := &Mock{
		nonces: make(map[string]uint64),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Seed pre-sets nonces for the given IP accounts.
func (m *Mock) Seed(entries []devseed.IPAccountSeedEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if strings.TrimSpace(e.IPID) == "" {
			continue
		}
		m.nonces[e.IPID] = e.Nonce
	}
}

// Execute simulates a transaction from the IP account and advances its nonce.
func (m *Mock) Execute(ctx context.Context, req *ipaccount.ExecuteRequest) (*ipaccount.ExecuteResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.IPID) == "" {
		return nil, fmt.Errorf("mock ipaccount: ipId is required")
	}
	if strings.TrimSpace(req.To) == "" {
		return nil, fmt.Errorf("mock ipaccount: to address is required")
	}

	m.mu.Lock()
	m.nonces[req.IPID]++
	m.mu.Unlock()

	return &ipaccount.ExecuteResponse{TxHash: pseudoTxHash()}, nil
}

// ExecuteWithSig simulates a signature-authorized execution.
func (m *Mock) ExecuteWithSig(ctx context.Context, req *ipaccount.ExecuteWithSigRequest) (*ipaccount.ExecuteWithSigResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.IPID) == "" {
		return nil, fmt.Errorf("mock ipaccount: ipId is required")
	}
	if strings.TrimSpace(req.Signature) == "" {
		return nil, fmt.Errorf("mock ipaccount: invalid signature")
	}
	if req.Deadline != nil {
		deadline := time.Unix(req.Deadline.Int64(), 0)
		if deadline.Before(m.now()) {
			return nil, fmt.Errorf("mock ipaccount: signature deadline expired")
		}
	}

	m.mu.Lock()
	m.nonces[req.IPID]++
	m.mu.Unlock()

	return &ipaccount.ExecuteWithSigResponse{TxHash: pseudoTxHash()}, nil
}

// GetIPAccountNonce returns the account's current nonce.
func (m *Mock) GetIPAccountNonce(ctx context.Context, ipID string) (*ipaccount.NonceResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ipID) == "" {
		return nil, fmt.Errorf("mock ipaccount: ipId is required")
	}

	m.mu.Lock()
	nonce := m.nonces[ipID]
	m.mu.Unlock()

	return &ipaccount.NonceResponse{
		IPID:  ipID,
		Nonce: new(big.Int).SetUint64(nonce),
	}, nil
}

func pseudoTxHash() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "0x" + strings.Repeat("0", 64)
	}
	return "0x" + hex.EncodeToString(buf)
}
