// Package mock provides an in-memory stand-in for the gateway's PIL surface:
// a license terms registry with preset deduplication, attachment bookkeeping,
// sequential license token IDs, and terms lookup. Re-registering an identical
// preset returns the existing terms ID without a transaction, mirroring the
// external system.
package mock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/storyprotocol/story-sdk-go/internal/devseed"
	"github.com/storyprotocol/story-sdk-go/pkg/license"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// Mock implements license.Backend in memory.
type Mock struct {
	mu          sync.Mutex
	terms       map[string]*license.LicenseTerms
	presets     map[string]*big.Int
	attachments map[string]map[string]bool
	nextTermsID uint64
	nextTokenID uint64
}

// New creates an empty mock license registry.
func New() *Mock {
	return &Mock{
		terms:       make(map[string]*license.LicenseTerms),
		presets:     make(map[string]*big.Int),
		attachments: make(map[string]map[string]bool),
		nextTermsID: 1,
		nextTokenID: 1,
	}
}

// Seed pre-registers terms records under fixed IDs.
func (m *Mock) Seed(entries []devseed.LicenseTermsSeedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		id, ok := new(big.Int).SetString(strings.TrimSpace(e.ID), 10)
		if !ok {
			return fmt.Errorf("mock license: seed entry has invalid id %q", e.ID)
		}
		var terms license.LicenseTerms
		if err := json.Unmarshal(e.Terms, &terms); err != nil {
			return fmt.Errorf("mock license: decode seed terms %s: %w", e.ID, err)
		}
		m.terms[id.String()] = &terms
		if id.IsUint64() && id.Uint64() >= m.nextTermsID {
			m.nextTermsID = id.Uint64() + 1
		}
	}
	return nil
}

// RegisterNonComSocialRemixingPIL registers the non-commercial social
// remixing preset.
func (m *Mock) RegisterNonComSocialRemixingPIL(ctx context.Context, req *license.RegisterNonComSocialRemixingPILRequest) (*license.RegisterPILResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.register("non-com-social-remixing", &license.LicenseTerms{
		Transferable:           true,
		RoyaltyPolicy:          zeroAddress,
		DefaultMintingFee:      big.NewInt(0),
		Expiration:             big.NewInt(0),
		DerivativesAllowed:     true,
		DerivativesAttribution: true,
		DerivativesReciprocal:  true,
		Currency:               zeroAddress,
	}), nil
}

// RegisterCommercialUsePIL registers the commercial use preset.
func (m *Mock) RegisterCommercialUsePIL(ctx context.Context, req *license.RegisterCommercialUsePILRequest) (*license.RegisterPILResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.Currency) == "" {
		return nil, fmt.Errorf("mock license: currency is required")
	}

	fee := req.MintingFee
	if fee == nil {
		fee = big.NewInt(0)
	}
	key := fmt.Sprintf("commercial-use|%s|%s", fee, req.Currency)
	return m.register(key, &license.LicenseTerms{
		Transferable:          true,
		DefaultMintingFee:     new(big.Int).Set(fee),
		Expiration:            big.NewInt(0),
		CommercialUse:         true,
		CommercialAttribution: true,
		Currency:              req.Currency,
	}), nil
}

// RegisterCommercialRemixPIL registers the commercial remix preset.
func (m *Mock) RegisterCommercialRemixPIL(ctx context.Context, req *license.RegisterCommercialRemixPILRequest) (*license.RegisterPILResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.Currency) == "" {
		return nil, fmt.Errorf("mock license: currency is required")
	}

	fee := req.MintingFee
	if fee == nil {
		fee = big.NewInt(0)
	}
	key := fmt.Sprintf("commercial-remix|%s|%d|%s", fee, req.CommercialRevShare, req.Currency)
	return m.register(key, &license.LicenseTerms{
		Transferable:           true,
		DefaultMintingFee:      new(big.Int).Set(fee),
		Expiration:             big.NewInt(0),
		CommercialUse:          true,
		CommercialAttribution:  true,
		CommercialRevShare:     req.CommercialRevShare,
		DerivativesAllowed:     true,
		DerivativesAttribution: true,
		DerivativesReciprocal:  true,
		Currency:               req.Currency,
	}), nil
}

func (m *Mock) register(presetKey string, terms *license.LicenseTerms) *license.RegisterPILResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.presets[presetKey]; ok {
		// Identical terms already registered: no transaction, existing ID.
		return &license.RegisterPILResponse{LicenseTermsID: new(big.Int).Set(id)}
	}

	id := new(big.Int).SetUint64(m.nextTermsID)
	m.nextTermsID++
	m.presets[presetKey] = id
	m.terms[id.String()] = terms

	return &license.RegisterPILResponse{
		TxHash:         pseudoTxHash(),
		LicenseTermsID: new(big.Int).Set(id),
	}
}

// AttachLicenseTerms attaches registered terms to an IP.
func (m *Mock) AttachLicenseTerms(ctx context.Context, req *license.AttachLicenseTermsRequest) (*license.AttachLicenseTermsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.IPID) == "" {
		return nil, fmt.Errorf("mock license: ipId is required")
	}
	if req.LicenseTermsID == nil {
		return nil, fmt.Errorf("mock license: licenseTermsId is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := req.LicenseTermsID.String()
	if _, ok := m.terms[key]; !ok {
		return nil, fmt.Errorf("%w: id %s", license.ErrTermsNotFound, key)
	}
	attached := m.attachments[req.IPID]
	if attached == nil {
		attached = make(map[string]bool)
		m.attachments[req.IPID] = attached
	}
	if attached[key] {
		return nil, fmt.Errorf("%w: id %s on %s", license.ErrAlreadyAttached, key, req.IPID)
	}
	attached[key] = true

	return &license.AttachLicenseTermsResponse{TxHash: pseudoTxHash()}, nil
}

// MintLicenseTokens mints tokens under the licensor IP's terms. Non-commercial
// terms are mintable without an explicit attachment, matching the external
// system's default-terms behaviour.
func (m *Mock) MintLicenseTokens(ctx context.Context, req *license.MintLicenseTokensRequest) (*license.MintLicenseTokensResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.LicensorIPID) == "" {
		return nil, fmt.Errorf("mock license: licensorIpId is required")
	}
	if req.LicenseTermsID == nil {
		return nil, fmt.Errorf("mock license: licenseTermsId is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := req.LicenseTermsID.String()
	terms, ok := m.terms[key]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", license.ErrTermsNotFound, key)
	}
	if terms.CommercialUse && !m.attachments[req.LicensorIPID][key] {
		return nil, fmt.Errorf("%w: id %s on %s", license.ErrNotAttached, key, req.LicensorIPID)
	}

	amount := uint64(1)
	if req.Amount != nil && req.Amount.Sign() > 0 {
		if !req.Amount.IsUint64() {
			return nil, fmt.Errorf("mock license: amount %s out of range", req.Amount)
		}
		amount = req.Amount.Uint64()
	}
	tokenIDs := make([]*big.Int, 0, amount)
	for i := uint64(0); i < amount; i++ {
		tokenIDs = append(tokenIDs, new(big.Int).SetUint64(m.nextTokenID))
		m.nextTokenID++
	}

	return &license.MintLicenseTokensResponse{
		TxHash:          pseudoTxHash(),
		LicenseTokenIDs: tokenIDs,
	}, nil
}

// GetLicenseTerms returns the registered terms record for the ID.
func (m *Mock) GetLicenseTerms(ctx context.Context, licenseTermsID *big.Int) (*license.LicenseTerms, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if licenseTermsID == nil {
		return nil, fmt.Errorf("mock license: licenseTermsId is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	terms, ok := m.terms[licenseTermsID.String()]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", license.ErrTermsNotFound, licenseTermsID)
	}
	out := *terms
	return &out, nil
}

func pseudoTxHash() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "0x" + strings.Repeat("0", 64)
	}
	return "0x" + hex.EncodeToString(buf)
}
