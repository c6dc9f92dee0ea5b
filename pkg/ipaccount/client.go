package ipaccount

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/storyprotocol/story-sdk-go/internal/httpx"
	"github.com/storyprotocol/story-sdk-go/internal/storyapi"
	"github.com/storyprotocol/story-sdk-go/pkg/optrack"
)

// Backend is the external client the tracked operations delegate to.
type Backend interface {
	Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error)
	ExecuteWithSig(ctx context.Context, req *ExecuteWithSigRequest) (*ExecuteWithSigResponse, error)
	GetIPAccountNonce(ctx context.Context, ipID string) (*NonceResponse, error)
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpOpts    []httpx.Option
	trackerOpts []optrack.Option
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

// Client provides tracked access to the IP-account operations of the Story
// gateway.
type Client struct {
	backend Backend
	track   *optrack.Tracker
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
	return &Client{
		backend: b,
		track:   optrack.New("ipAccount", Operations(), o.trackerOpts...),
	}
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

// Execute runs a transaction from the IP account and returns its hash.
func (c *Client) Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	if c == nil || c.backend == nil {
		return nil, fmt.Errorf("ipaccount: client is nil")
	}
	return optrack.Do(ctx, c.track, OpExecute, req, c.backend.Execute)
}

// ExecuteWithSig runs a transaction authorized by an off-chain signature.
func (c *Client) ExecuteWithSig(ctx context.Context, req *ExecuteWithSigRequest) (*ExecuteWithSigResponse, error) {
	if c == nil || c.backend == nil {
		return nil, fmt.Errorf("ipaccount: client is nil")
	}
	return optrack.Do(ctx, c.track, OpExecuteWithSig, req, c.backend.ExecuteWithSig)
}

// GetIPAccountNonce fetches the account's ordering nonce.
func (c *Client) GetIPAccountNonce(ctx context.Context, ipID string) (*NonceResponse, error) {
	if c == nil || c.backend == nil {
		return nil, fmt.Errorf("ipaccount: client is nil")
	}
	return optrack.Do(ctx, c.track, OpGetIPAccountNonce, ipID, c.backend.GetIPAccountNonce)
}

type httpBackend struct {
	client *httpx.Client
}

type executeWire struct {
	IPID           string `json:"ipId"`
	To             string `json:"to"`
	Value          string `json:"value"`
	AccountAddress string `json:"accountAddress,omitempty"`
	Data           string `json:"data"`
}

type executeWithSigWire struct {
	IPID      string `json:"ipId"`
	To        string `json:"to"`
	Value     string `json:"value"`
	Data      string `json:"data"`
	Signer    string `json:"signer"`
	Deadline  string `json:"deadline"`
	Signature string `json:"signature"`
}

type txHashWire struct {
	TxHash string `json:"txHash"`
}

func (b *httpBackend) Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	if b == nil || b.client == nil {
		return nil, fmt.Errorf("ipaccount: http backend not configured")
	}
	if req == nil {
		return nil, fmt.Errorf("ipaccount: request is nil")
	}

	hreq, err := httpx.JSONRequest(http.MethodPost, "ip_account/execute", executeWire{
		IPID:           req.IPID,
		To:             req.To,
		Value:          storyapi.FormatBig(req.Value),
		AccountAddress: req.AccountAddress,
		Data:           req.Data,
	})
	if err != nil {
		return nil, err
	}
	var out txHashWire
	if err := b.do(ctx, hreq, &out); err != nil {
		return nil, err
	}
	return &ExecuteResponse{TxHash: out.TxHash}, nil
}

func (b *httpBackend) ExecuteWithSig(ctx context.Context, req *ExecuteWithSigRequest) (*ExecuteWithSigResponse, error) {
	if b == nil || b.client == nil {
		return nil, fmt.Errorf("ipaccount: http backend not configured")
	}
	if req == nil {
		return nil, fmt.Errorf("ipaccount: request is nil")
	}

	hreq, err := httpx.JSONRequest(http.MethodPost, "ip_account/execute_with_sig", executeWithSigWire{
		IPID:      req.IPID,
		To:        req.To,
		Value:     storyapi.FormatBig(req.Value),
		Data:      req.Data,
		Signer:    req.Signer,
		Deadline:  storyapi.FormatBig(req.Deadline),
		Signature: req.Signature,
	})
	if err != nil {
		return nil, err
	}
	var out txHashWire
	if err := b.do(ctx, hreq, &out); err != nil {
		return nil, err
	}
	return &ExecuteWithSigResponse{TxHash: out.TxHash}, nil
}

func (b *httpBackend) GetIPAccountNonce(ctx context.Context, ipID string) (*NonceResponse, error) {
	if b == nil || b.client == nil {
		return nil, fmt.Errorf("ipaccount: http backend not configured")
	}

	var out struct {
		IPID  string `json:"ipId"`
		Nonce string `json:"nonce"`
	}
	err := b.do(ctx, &httpx.Request{
		Method: http.MethodGet,
		Path:   "ip_account/nonce",
		Query:  url.Values{"ip_id": {ipID}},
	}, &out)
	if err != nil {
		return nil, err
	}

	nonce, err := storyapi.ParseBig(out.Nonce)
	if err != nil {
		return nil, fmt.Errorf("ipaccount: decode nonce: %w", err)
	}
	resp := &NonceResponse{IPID: out.IPID, Nonce: nonce}
	if resp.IPID == "" {
		resp.IPID = ipID
	}
	return resp, nil
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
		return fmt.Errorf("ipaccount: decode response: %w", err)
	}
	return nil
}
