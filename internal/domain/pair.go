// Package domain defines the core data structures of the wallet and
// rate-cache engine.
package domain

import (
	"fmt"
	"strings"
)

// Pair is an ordered currency conversion pair.
type Pair struct {
	// From base currency symbol.
	From string
	// To quote currency symbol.
	To string
}

// String returns the canonical "FROM_TO" representation used as cache key.
func (p Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Inverse returns the pair with direction flipped.
func (p Pair) Inverse() Pair {
	return Pair{From: p.To, To: p.From}
}

// ParsePair parses a "FROM_TO" key back into a Pair.
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Pair{}, fmt.Errorf("invalid pair %q, expected FROM_TO", s)
	}
	return Pair{From: parts[0], To: parts[1]}, nil
}
