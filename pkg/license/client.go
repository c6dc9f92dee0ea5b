package license

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/storyprotocol/story-sdk-go/internal/httpx"
	"github.com/storyprotocol/story-sdk-go/internal/storyapi"
	"github.com/storyprotocol/story-sdk-go/pkg/optrack"
)

// Backend is the external client the tracked operations delegate to.
type Backend interface {
	RegisterNonComSocialRemixingPIL(ctx context.Context, req *RegisterNonComSocialRemixingPILRequest) (*RegisterPILResponse, error)
	RegisterCommercialUsePIL(ctx context.Context, req *RegisterCommercialUsePILRequest) (*RegisterPILResponse, error)
	RegisterCommercialRemixPIL(ctx context.Context, req *RegisterCommercialRemixPILRequest) (*RegisterPILResponse, error)
	AttachLicenseTerms(ctx context.Context, req *AttachLicenseTermsRequest) (*AttachLicenseTermsResponse, error)
	MintLicenseTokens(ctx context.Context, req *MintLicenseTokensRequest) (*MintLicenseTokensResponse, error)
	GetLicenseTerms(ctx context.Context, licenseTermsID *big.Int) (*LicenseTerms, error)
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpOpts    []httpx.Option
	trackerOpts []optrack.Option
	cacheSize   int
	cacheTTL    time.Duration
}

// WithHTTPOptions forwards options to the underlying HTTP transport. Ignored
// when the Client is built around a custom Backend.
func WithHTTPOptions(opts ...httpx.Option) Option {
	return func(o *clientOptions) {
		o.httpOpts = append(o.httpOpts, opts...)
	}
}

// WithTrackerOptions forwards options (logger, normalizer, metrics) to the
// operation tracker.
func WithTrackerOptions(opts ...optrack.Option) Option {
	return func(o *clientOptions) {
		o.trackerOpts = append(o.trackerOpts, opts...)
	}
}

// WithTermsCache enables an LRU read cache for GetLicenseTerms. Registered
// terms are immutable on chain, so a zero ttl keeps entries until evicted.
func WithTermsCache(size int, ttl time.Duration) Option {
	return func(o *clientOptions) {
		if size > 0 {
			o.cacheSize = size
			o.cacheTTL = ttl
		}
	}
}

// Client provides tracked access to the PIL operations of the Story gateway.
type Client struct {
	backend Backend
	track   *optrack.Tracker
	terms   *termsCache
}

// New constructs a Client bound to the gateway at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	cl, err := httpx.NewClient(baseURL, o.httpOpts...)
	if err != nil {
		return nil, err
	}
	return newClient(&httpBackend{client: cl}, &o), nil
}

// NewWithBackend allows callers to supply a custom backend (e.g., mocks).
func NewWithBackend(b Backend, opts ...Option) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	return newClient(b, &o)
}

func newClient(b Backend, o *clientOptions) *Client {
	c := &Client{
		backend: b,
		track:   optrack.New("license", Operations(), o.trackerOpts...),
	}
	if o.cacheSize > 0 {
		c.terms = newTermsCache(o.cacheSize, o.cacheTTL)
	}
	return c
}

// Tracker exposes the operation tracker for busy/error inspection and update
// subscriptions.
func (c *Client) Tracker() *optrack.Tracker {
	return c.track
}

// Loading reports whether the named operation is in flight.
func (c *Client) Loading(op string) bool {
	return c.track.Loading(op)
}

// LastError returns the named operation's recorded error, if any.
func (c *Client) LastError(op string) *optrack.Error {
	return c.track.LastError(op)
}

// RegisterNonComSocialRemixingPIL registers the non-commercial social remixing
// preset and returns the terms ID.
func (c *Client) RegisterNonComSocialRemixingPIL(ctx context.Context, req *RegisterNonComSocialRemixingPILRequest) (*RegisterPILResponse, error) {
	if c == nil || c.backend == nil {
		return nil, fmt.Errorf("license: client is nil")
	}
	return optrack.Do(ctx, c.track, OpRegisterNonComSocialRemixingPIL, req, c.backend.RegisterNonComSocialRemixingPIL)
}

// RegisterCommercialUsePIL registers the commercial use preset.
func (c *Client) RegisterCommercialUsePIL(ctx context.Context, req *RegisterCommercialUsePILRequest) (*RegisterPILResponse, error) {
	if c == nil || c.backend == nil {
		return nil, fmt.Errorf("license: client is nil")
	}
	return optrack.Do(ctx, c.track, OpRegisterCommercialUsePIL, req, c.backend.RegisterCommercialUsePIL)
}

// RegisterCommercialRemixPIL registers the commercial remix preset.
func (c *Client) RegisterCommercialRemixPIL(ctx context.Context, req *RegisterCommercialRemixPILRequest) (*RegisterPILResponse, error) {
	if c == nil || c.backend == nil {
		return nil, fmt.Errorf("license: client is nil")
	}
	return optrack.Do(ctx, c.track, OpRegisterCommercialRemixPIL, req, c.backend.RegisterCommercialRemixPIL)
}

// AttachLicenseTerms attaches registered terms to an IP.
func (c *Client) AttachLicenseTerms(ctx context.Context, req *AttachLicenseTermsRequest) (*AttachLicenseTermsResponse, error) {
	if c == nil || c.backend == nil {
		return nil, fmt.Errorf("license: client is nil")
	}
	return optrack.Do(ctx, c.track, OpAttachLicenseTerms, req, c.backend.AttachLicenseTerms)
}

// MintLicenseTokens mints license tokens under the licensor IP's terms.
func (c *Client) MintLicenseTokens(ctx context.Context, req *MintLicenseTokensRequest) (*MintLicenseTokensResponse, error) {
	if c == nil || c.backend == nil {
		return nil, fmt.Errorf("license: client is nil")
	}
	return optrack.Do(ctx, c.track, OpMintLicenseTokens, req, c.backend.MintLicenseTokens)
}

// GetLicenseTerms fetches a registered terms record by ID. When the terms
// cache is enabled, repeat fetches for the same ID are served locally and
// concurrent fetches are collapsed into one backend call.
func (c *Client) GetLicenseTerms(ctx context.Context, licenseTermsID *big.Int) (*LicenseTerms, error) {
	if c == nil || c.backend == nil {
		return nil, fmt.Errorf("license: client is nil")
	}
	return optrack.Do(ctx, c.track, OpGetLicenseTerms, licenseTermsID, c.fetchTerms)
}

func (c *Client) fetchTerms(ctx context.Context, licenseTermsID *big.Int) (*LicenseTerms, error) {
	if c.terms == nil || licenseTermsID == nil {
		return c.backend.GetLicenseTerms(ctx, licenseTermsID)
	}
	return c.terms.get(ctx, licenseTermsID, c.backend.GetLicenseTerms)
}

type httpBackend struct {
	client *httpx.Client
}

type txOptionsWire struct {
	WaitForTransaction bool `json:"waitForTransaction"`
}

func txOptionsToWire(opts *TxOptions) *txOptionsWire {
	if opts == nil {
		return nil
	}
	return &txOptionsWire{WaitForTransaction: opts.WaitForTransaction}
}

type registerPILWire struct {
	MintingFee         string         `json:"mintingFee,omitempty"`
	CommercialRevShare uint32         `json:"commercialRevShare,omitempty"`
	Currency           string         `json:"currency,omitempty"`
	TxOptions          *txOptionsWire `json:"txOptions,omitempty"`
}

type registerPILResultWire struct {
	TxHash         string `json:"txHash"`
	LicenseTermsID string `json:"licenseTermsId"`
}

func (b *httpBackend) RegisterNonComSocialRemixingPIL(ctx context.Context, req *RegisterNonComSocialRemixingPILRequest) (*RegisterPILResponse, error) {
	if req == nil {
		req = &RegisterNonComSocialRemixingPILRequest{}
	}
	return b.register(ctx, "license/register_non_com_social_remixing_pil", registerPILWire{
		TxOptions: txOptionsToWire(req.TxOptions),
	})
}

func (b *httpBackend) RegisterCommercialUsePIL(ctx context.Context, req *RegisterCommercialUsePILRequest) (*RegisterPILResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("license: request is nil")
	}
	return b.register(ctx, "license/register_commercial_use_pil", registerPILWire{
		MintingFee: storyapi.FormatBig(req.MintingFee),
		Currency:   req.Currency,
		TxOptions:  txOptionsToWire(req.TxOptions),
	})
}

func (b *httpBackend) RegisterCommercialRemixPIL(ctx context.Context, req *RegisterCommercialRemixPILRequest) (*RegisterPILResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("license: request is nil")
	}
	return b.register(ctx, "license/register_commercial_remix_pil", registerPILWire{
		MintingFee:         storyapi.FormatBig(req.MintingFee),
		CommercialRevShare: req.CommercialRevShare,
		Currency:           req.Currency,
		TxOptions:          txOptionsToWire(req.TxOptions),
	})
}

func (b *httpBackend) register(ctx context.Context, path string, wire registerPILWire) (*RegisterPILResponse, error) {
	if b == nil || b.client == nil {
		return nil, fmt.Errorf("license: http backend not configured")
	}
	hreq, err := httpx.JSONRequest(http.MethodPost, path, wire)
	if err != nil {
		return nil, err
	}
	var out registerPILResultWire
	if err := b.do(ctx, hreq, &out); err != nil {
		return nil, err
	}
	termsID, err := storyapi.ParseOptionalBig(out.LicenseTermsID)
	if err != nil {
		return nil, fmt.Errorf("license: decode licenseTermsId: %w", err)
	}
	return &RegisterPILResponse{TxHash: out.TxHash, LicenseTermsID: termsID}, nil
}

func (b *httpBackend) AttachLicenseTerms(ctx context.Context, req *AttachLicenseTermsRequest) (*AttachLicenseTermsResponse, error) {
	if b == nil || b.client == nil {
		return nil, fmt.Errorf("license: http backend not configured")
	}
	if req == nil {
		return nil, fmt.Errorf("license: request is nil")
	}

	hreq, err := httpx.JSONRequest(http.MethodPost, "license/attach", struct {
		IPID            string         `json:"ipId"`
		LicenseTemplate string         `json:"licenseTemplate,omitempty"`
		LicenseTermsID  string         `json:"licenseTermsId"`
		TxOptions       *txOptionsWire `json:"txOptions,omitempty"`
	}{
		IPID:            req.IPID,
		LicenseTemplate: req.LicenseTemplate,
		LicenseTermsID:  storyapi.FormatBig(req.LicenseTermsID),
		TxOptions:       txOptionsToWire(req.TxOptions),
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		TxHash string `json:"txHash"`
	}
	if err := b.do(ctx, hreq, &out); err != nil {
		return nil, err
	}
	return &AttachLicenseTermsResponse{TxHash: out.TxHash}, nil
}

func (b *httpBackend) MintLicenseTokens(ctx context.Context, req *MintLicenseTokensRequest) (*MintLicenseTokensResponse, error) {
	if b == nil || b.client == nil {
		return nil, fmt.Errorf("license: http backend not configured")
	}
	if req == nil {
		return nil, fmt.Errorf("license: request is nil")
	}

	hreq, err := httpx.JSONRequest(http.MethodPost, "license/mint", struct {
		LicensorIPID    string         `json:"licensorIpId"`
		LicenseTemplate string         `json:"licenseTemplate,omitempty"`
		LicenseTermsID  string         `json:"licenseTermsId"`
		Amount          string         `json:"amount"`
		Receiver        string         `json:"receiver,omitempty"`
		TxOptions       *txOptionsWire `json:"txOptions,omitempty"`
	}{
		LicensorIPID:    req.LicensorIPID,
		LicenseTemplate: req.LicenseTemplate,
		LicenseTermsID:  storyapi.FormatBig(req.LicenseTermsID),
		Amount:          storyapi.FormatBig(req.Amount),
		Receiver:        req.Receiver,
		TxOptions:       txOptionsToWire(req.TxOptions),
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		TxHash          string   `json:"txHash"`
		LicenseTokenIDs []string `json:"licenseTokenIds"`
	}
	if err := b.do(ctx, hreq, &out); err != nil {
		return nil, err
	}

	tokenIDs := make([]*big.Int, 0, len(out.LicenseTokenIDs))
	for _, raw := range out.LicenseTokenIDs {
		id, err := storyapi.ParseBig(raw)
		if err != nil {
			return nil, fmt.Errorf("license: decode licenseTokenIds: %w", err)
		}
		tokenIDs = append(tokenIDs, id)
	}
	return &MintLicenseTokensResponse{TxHash: out.TxHash, LicenseTokenIDs: tokenIDs}, nil
}

func (b *httpBackend) GetLicenseTerms(ctx context.Context, licenseTermsID *big.Int) (*LicenseTerms, error) {
	if b == nil || b.client == nil {
		return nil, fmt.Errorf("license: http backend not configured")
	}

	var out LicenseTerms
	err := b.do(ctx, &httpx.Request{
		Method: http.MethodGet,
		Path:   "license/terms",
		Query:  url.Values{"id": {storyapi.FormatBig(licenseTermsID)}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *httpBackend) do(ctx context.Context, req *httpx.Request, out any) error {
	resp, err := b.client.Do(ctx, req)
	if err != nil {
		return err
	}
	data, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return err
	}
	if err := storyapi.DecodeResult(data, out); err != nil {
		return fmt.Errorf("license: decode response: %w", err)
	}
	return nil
}
