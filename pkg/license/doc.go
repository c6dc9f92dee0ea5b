// Package license exposes Story Protocol programmable-IP-license (PIL)
// operations as tracked operations: registering the three PIL presets,
// attaching terms to an IP, minting license tokens, and fetching terms by ID.
// The Client delegates every call to a Backend (HTTP gateway or in-memory
// mock) and records per-operation busy flags and last errors via pkg/optrack.
//
// This layer performs no cross-operation coordination: it does not attach
// terms before minting. Default license terms need no explicit attachment on
// chain, but that is the external system's behaviour, not something enforced
// here.
package license
