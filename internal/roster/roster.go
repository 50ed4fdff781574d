package roster

import (
	"context"
	"errors"
	"strings"
)

// ErrGodNotFound is returned by Lookup when a name does not resolve.
// Callers are expected to skip the entity, not fail the analysis.
var ErrGodNotFound = errors.New("god not found")

// GodProfile holds the per-god stats used by the analysis engine.
type GodProfile struct {
	Name        string
	Role        string
	WinRate     float64
	EarlyPower  float64
	LatePower   float64
	TeamFight   float64
	Counters    []string
	KeyStrength string
	KeyWeakness string
}

// Repository resolves god names to profiles. Implementations normalize
// the name via NormalizeName before querying.
type Repository interface {
	Lookup(ctx context.Context, name string) (*GodProfile, error)
	Close() error
}

// NormalizeName folds a raw extracted name into the canonical lookup key:
// lowercase with whitespace and apostrophes stripped. This is the only
// place normalization happens; callers pass names through as captured.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case r == '\'' || r == '’':
			// skip apostrophes (Chang'e -> change)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			// skip whitespace
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
