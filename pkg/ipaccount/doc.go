// Package ipaccount exposes Story Protocol IP-account transaction operations
// (execute, executeWithSig, getIpAccountNonce) as tracked operations. The
// public Go API centres around the Client type, which delegates every call to
// a Backend (the HTTP gateway in production, an in-memory mock for local
// development) and records per-operation busy flags and last errors via
// pkg/optrack. Inputs are passed through verbatim; address, amount and
// signature validation belongs to the gateway and the chain.
package ipaccount
