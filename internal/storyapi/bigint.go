package storyapi

import (
	"fmt"
	"math/big"
	"strings"
)

// Big integers cross the gateway wire as decimal strings (optionally
// 0x-prefixed hex) so values above 2^53 survive JSON number handling in
// other consumers.

// FormatBig renders v as a decimal string; nil renders as "0".
func FormatBig(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// ParseBig parses a decimal or 0x-prefixed hex string into a big.Int.
func ParseBig(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("storyapi: empty integer")
	}

	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("storyapi: invalid integer %q", s)
	}
	return v, nil
}

// ParseOptionalBig parses like ParseBig but maps "" to nil.
func ParseOptionalBig(s string) (*big.Int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return ParseBig(s)
}
