package mock_test

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyprotocol/story-sdk-go/internal/devseed"
	"github.com/storyprotocol/story-sdk-go/pkg/ipaccount"
	ipaccountmock "github.com/storyprotocol/story-sdk-go/pkg/ipaccount/mock"
)

var _ ipaccount.Backend = (*ipaccountmock.Mock)(nil)

func TestNonceAdvancesOnExecute(t *testing.T) {
	m := ipaccountmock.New()
	ctx := context.Background()

	nonce, err := m.GetIPAccountNonce(ctx, "0x1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), nonce.Nonce.Int64())

	resp, err := m.Execute(ctx, &ipaccount.ExecuteRequest{IPID: "0x1", To: "0x2", Data: "0x"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.TxHash, "0x"))
	assert.Len(t, resp.TxHash, 66)

	nonce, err = m.GetIPAccountNonce(ctx, "0x1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), nonce.Nonce.Int64())

	// Other accounts are unaffected.
	other, err := m.GetIPAccountNonce(ctx, "0x9")
	require.NoError(t, err)
	assert.Equal(t, int64(0), other.Nonce.Int64())
}

func TestExecuteWithSigValidation(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	m := ipaccountmock.New(ipaccountmock.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := m.ExecuteWithSig(ctx, &ipaccount.ExecuteWithSigRequest{IPID: "0x1", To: "0x2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid signature")

	_, err = m.ExecuteWithSig(ctx, &ipaccount.ExecuteWithSigRequest{
		IPID:      "0x1",
		To:        "0x2",
		Signature: "0xdead",
		Deadline:  big.NewInt(now.Unix() - 1),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadline expired")

	resp, err := m.ExecuteWithSig(ctx, &ipaccount.ExecuteWithSigRequest{
		IPID:      "0x1",
		To:        "0x2",
		Signature: "0xdead",
		Deadline:  big.NewInt(now.Unix() + 3600),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.TxHash)
}

func TestSeed(t *testing.T) {
	m := ipaccountmock.New()
	m.Seed([]devseed.IPAccountSeedEntry{{IPID: "0x1", Nonce: 7}, {IPID: "", Nonce: 3}})

	nonce, err := m.GetIPAccountNonce(context.Background(), "0x1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), nonce.Nonce.Int64())
}
