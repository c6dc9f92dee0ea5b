package ipaccount

import "math/big"

// Operation names registered with the tracker. They match the upstream SDK's
// method names so tracker keys line up with what callers already log.
const (
	OpExecute           = "execute"
	OpExecuteWithSig    = "executeWithSig"
	OpGetIPAccountNonce = "getIpAccountNonce"
)

// Operations returns the operation registry in declaration order.
func Operations() []string {
	return []string{OpExecute, OpExecuteWithSig, OpGetIPAccountNonce}
}

// ExecuteRequest describes a transaction executed from an IP account.
type ExecuteRequest struct {
	IPID           string
	To             string
	Value          *big.Int
	AccountAddress string
	Data           string
}

// ExecuteResponse carries the resulting transaction hash.
type ExecuteResponse struct {
	TxHash string
}

// ExecuteWithSigRequest executes a transaction on behalf of a signer using an
// off-chain signature.
type ExecuteWithSigRequest struct {
	IPID      string
	To        string
	Value     *big.Int
	Data      string
	Signer    string
	Deadline  *big.Int
	Signature string
}

// ExecuteWithSigResponse carries the resulting transaction hash.
type ExecuteWithSigResponse struct {
	TxHash string
}

// NonceResponse carries the IP account's ordering nonce.
type NonceResponse struct {
	IPID  string
	Nonce *big.Int
}
