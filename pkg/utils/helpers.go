// Package utils holds address helpers shared by the chain readers and the API.
package utils

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var addressPattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{40}$`)

// NormalizeAddress lowercases an address and makes sure it carries the 0x prefix.
func NormalizeAddress(addr string) string {
	a := strings.ToLower(strings.TrimSpace(addr))
	if !strings.HasPrefix(a, "0x") {
		a = "0x" + a
	}
	return a
}

// IsValidAddress reports whether the string is a 20 byte hex address.
func IsValidAddress(addr string) bool {
	return addressPattern.MatchString(strings.TrimSpace(addr))
}

// AddressToTopic left pads an address into a 32 byte log topic.
//
// Parameters:
//   - addr: Ethereum address in hex
//
// Returns:
//   - common.Hash: Topic matching an indexed address argument
func AddressToTopic(addr string) common.Hash {
	return common.BytesToHash(common.HexToAddress(addr).Bytes())
}

// Map applies f to every element of the slice.
func Map[A any, B any](coll []A, f func(A, uint64) B) []B {
	out := make([]B, 0, len(coll))
	for i, item := range coll {
		out = append(out, f(item, uint64(i)))
	}
	return out
}
