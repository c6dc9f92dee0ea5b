package license

import (
	"errors"
	"math/big"
)

// Operation names registered with the tracker, matching the upstream SDK's
// method names.
const (
	OpRegisterNonComSocialRemixingPIL = "registerNonComSocialRemixingPIL"
	OpRegisterCommercialUsePIL        = "registerCommercialUsePIL"
	OpRegisterCommercialRemixPIL      = "registerCommercialRemixPIL"
	OpAttachLicenseTerms              = "attachLicenseTerms"
	OpMintLicenseTokens               = "mintLicenseTokens"
	OpGetLicenseTerms                 = "getLicenseTerms"
)

// Operations returns the operation registry in declaration order.
func Operations() []string {
	return []string{
		OpRegisterNonComSocialRemixingPIL,
		OpRegisterCommercialUsePIL,
		OpRegisterCommercialRemixPIL,
		OpAttachLicenseTerms,
		OpMintLicenseTokens,
		OpGetLicenseTerms,
	}
}

var (
	// ErrTermsNotFound is returned when a license terms ID is not registered.
	ErrTermsNotFound = errors.New("license: license terms not found")
	// ErrAlreadyAttached signals that the terms are already attached to the IP.
	ErrAlreadyAttached = errors.New("license: license terms already attached")
	// ErrNotAttached signals minting against terms the licensor IP has not attached.
	ErrNotAttached = errors.New("license: license terms not attached to IP")
)

// IsTermsNotFound reports whether err wraps ErrTermsNotFound.
func IsTermsNotFound(err error) bool {
	return errors.Is(err, ErrTermsNotFound)
}

// IsAlreadyAttached reports whether err wraps ErrAlreadyAttached.
func IsAlreadyAttached(err error) bool {
	return errors.Is(err, ErrAlreadyAttached)
}

// IsNotAttached reports whether err wraps ErrNotAttached.
func IsNotAttached(err error) bool {
	return errors.Is(err, ErrNotAttached)
}

// TxOptions carries optional transaction settings passed through to the
// external client.
type TxOptions struct {
	WaitForTransaction bool
}

// RegisterNonComSocialRemixingPILRequest registers the non-commercial social
// remixing preset.
type RegisterNonComSocialRemixingPILRequest struct {
	TxOptions *TxOptions
}

// RegisterCommercialUsePILRequest registers the commercial use preset.
type RegisterCommercialUsePILRequest struct {
	MintingFee *big.Int
	Currency   string
	TxOptions  *TxOptions
}

// RegisterCommercialRemixPILRequest registers the commercial remix preset.
type RegisterCommercialRemixPILRequest struct {
	MintingFee         *big.Int
	CommercialRevShare uint32
	Currency           string
	TxOptions          *TxOptions
}

// RegisterPILResponse is the result of any PIL preset registration. TxHash is
// empty when identical terms were already registered and the existing ID is
// returned.
type RegisterPILResponse struct {
	TxHash         string
	LicenseTermsID *big.Int
}

// AttachLicenseTermsRequest attaches registered terms to an IP.
type AttachLicenseTermsRequest struct {
	IPID            string
	LicenseTemplate string
	LicenseTermsID  *big.Int
	TxOptions       *TxOptions
}

// AttachLicenseTermsResponse carries the attachment transaction hash.
type AttachLicenseTermsResponse struct {
	TxHash string
}

// MintLicenseTokensRequest mints license tokens under the licensor IP's terms.
type MintLicenseTokensRequest struct {
	LicensorIPID    string
	LicenseTemplate string
	LicenseTermsID  *big.Int
	Amount          *big.Int
	Receiver        string
	TxOptions       *TxOptions
}

// MintLicenseTokensResponse carries the mint transaction hash and the minted
// token IDs.
type MintLicenseTokensResponse struct {
	TxHash          string
	LicenseTokenIDs []*big.Int
}

// LicenseTerms is a registered PIL terms record.
type LicenseTerms struct {
	Transferable              bool     `json:"transferable"`
	RoyaltyPolicy             string   `json:"royaltyPolicy"`
	DefaultMintingFee         *big.Int `json:"defaultMintingFee"`
	Expiration                *big.Int `json:"expiration"`
	CommercialUse             bool     `json:"commercialUse"`
	CommercialAttribution     bool     `json:"commercialAttribution"`
	CommercializerChecker     string   `json:"commercializerChecker"`
	CommercializerCheckerData string   `json:"commercializerCheckerData"`
	CommercialRevShare        uint32   `json:"commercialRevShare"`
	CommercialRevCeiling      *big.Int `json:"commercialRevCeiling"`
	DerivativesAllowed        bool     `json:"derivativesAllowed"`
	DerivativesAttribution    bool     `json:"derivativesAttribution"`
	DerivativesApproval       bool     `json:"derivativesApproval"`
	DerivativesReciprocal     bool     `json:"derivativesReciprocal"`
	DerivativeRevCeiling      *big.Int `json:"derivativeRevCeiling"`
	Currency                  string   `json:"currency"`
	URI                       string   `json:"uri"`
}
