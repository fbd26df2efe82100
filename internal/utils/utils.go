package utils

import (
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
)

// NormalizeAddress lowercases an address so identity comparisons are
// case-insensitive across checksummed and plain forms.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ParseBigInt parses a decimal string into an arbitrary-precision integer.
// Values beyond 2^53 survive the round trip, which is the reason amounts and
// block numbers travel as strings on the wire.
func ParseBigInt(s string) (sdkmath.Int, error) {
	value, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid decimal integer: %q", s)
	}
	return value, nil
}
