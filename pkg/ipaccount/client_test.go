package ipaccount_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyprotocol/story-sdk-go/pkg/ipaccount"
	"github.com/storyprotocol/story-sdk-go/pkg/optrack"
)

type stubBackend struct {
	executeFn        func(ctx context.Context, req *ipaccount.ExecuteRequest) (*ipaccount.ExecuteResponse, error)
	executeWithSigFn func(ctx context.Context, req *ipaccount.ExecuteWithSigRequest) (*ipaccount.ExecuteWithSigResponse, error)
	nonceFn          func(ctx context.Context, ipID string) (*ipaccount.NonceResponse, error)
}

func (s *stubBackend) Execute(ctx context.Context, req *ipaccount.ExecuteRequest) (*ipaccount.ExecuteResponse, error) {
	return s.executeFn(ctx, req)
}

func (s *stubBackend) ExecuteWithSig(ctx context.Context, req *ipaccount.ExecuteWithSigRequest) (*ipaccount.ExecuteWithSigResponse, error) {
	return s.executeWithSigFn(ctx, req)
}

func (s *stubBackend) GetIPAccountNonce(ctx context.Context, ipID string) (*ipaccount.NonceResponse, error) {
	return s.nonceFn(ctx, ipID)
}

func TestExecuteTracked(t *testing.T) {
	want := &ipaccount.ExecuteResponse{TxHash: "0xabc"}

	var loadingDuringCall bool
	var client *ipaccount.Client
	client = ipaccount.NewWithBackend(&stubBackend{
		executeFn: func(ctx context.Context, req *ipaccount.ExecuteRequest) (*ipaccount.ExecuteResponse, error) {
			loadingDuringCall = client.Loading(ipaccount.OpExecute)
			return want, nil
		},
	})

	got, err := client.Execute(context.Background(), &ipaccount.ExecuteRequest{
		IPID:           "0x1",
		To:             "0x2",
		Value:          big.NewInt(0),
		AccountAddress: "0x1",
		Data:           "0x",
	})
	require.NoError(t, err)
	require.Same(t, want, got)

	assert.True(t, loadingDuringCall, "loading flag must be set before the delegate resolves")
	assert.False(t, client.Loading(ipaccount.OpExecute))
	assert.Nil(t, client.LastError(ipaccount.OpExecute))
}

func TestExecuteWithSigFailure(t *testing.T) {
	boom := errors.New("signature mismatch")
	client := ipaccount.NewWithBackend(&stubBackend{
		executeWithSigFn: func(ctx context.Context, req *ipaccount.ExecuteWithSigRequest) (*ipaccount.ExecuteWithSigResponse, error) {
			return nil, boom
		},
	})

	_, err := client.ExecuteWithSig(context.Background(), &ipaccount.ExecuteWithSigRequest{
		IPID:      "0x1",
		To:        "0x2",
		Signer:    "0x3",
		Signature: "0xdead",
	})
	require.Error(t, err)

	var opErr *optrack.Error
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "signature mismatch", opErr.Message)
	assert.True(t, errors.Is(err, boom))

	recorded := client.LastError(ipaccount.OpExecuteWithSig)
	require.NotNil(t, recorded)
	assert.Equal(t, opErr.Message, recorded.Message)
	assert.False(t, client.Loading(ipaccount.OpExecuteWithSig))

	// The failure stays scoped to its own operation.
	assert.Nil(t, client.LastError(ipaccount.OpExecute))
}

func TestHTTPBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/ip_account/execute":
			defer r.Body.Close()
			var payload struct {
				IPID  string `json:"ipId"`
				To    string `json:"to"`
				Value string `json:"value"`
				Data  string `json:"data"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if payload.IPID != "0x1" || payload.Value != "0" {
				http.Error(w, "unexpected payload", http.StatusBadRequest)
				return
			}
			io.WriteString(w, `{"result":{"txHash":"0xabc"}}`)
		case "/ip_account/nonce":
			if r.URL.Query().Get("ip_id") != "0x1" {
				http.Error(w, "unexpected ip_id", http.StatusBadRequest)
				return
			}
			io.WriteString(w, `{"result":{"ipId":"0x1","nonce":"12"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := ipaccount.New(srv.URL)
	require.NoError(t, err)

	ctx := context.Background()
	exec, err := client.Execute(ctx, &ipaccount.ExecuteRequest{
		IPID:  "0x1",
		To:    "0x2",
		Value: big.NewInt(0),
		Data:  "0x",
	})
	require.NoError(t, err)
	assert.Equal(t, "0xabc", exec.TxHash)

	nonce, err := client.GetIPAccountNonce(ctx, "0x1")
	require.NoError(t, err)
	assert.Equal(t, "0x1", nonce.IPID)
	assert.Equal(t, int64(12), nonce.Nonce.Int64())
}

func TestHTTPBackendGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"invalid ip account"}}`)
	}))
	defer srv.Close()

	client, err := ipaccount.New(srv.URL)
	require.NoError(t, err)

	_, err = client.GetIPAccountNonce(context.Background(), "0xbad")
	require.Error(t, err)
	assert.Equal(t, "invalid ip account", err.Error())

	recorded := client.LastError(ipaccount.OpGetIPAccountNonce)
	require.NotNil(t, recorded)
	assert.Equal(t, "invalid ip account", recorded.Message)
}
