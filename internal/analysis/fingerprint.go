package analysis

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"

	"assaultbrain/internal/roster"
)

// Fingerprint derives the cache key for a matchup. Names are normalized
// and sorted within each side, so any permutation of the same rosters
// maps to the same key. Side order is preserved: recommendations are
// generated for "our" side against "theirs", so A-vs-B and B-vs-A are
// distinct matchups.
func Fingerprint(ours, theirs []string) string {
	h := md5.Sum([]byte(sideKey(ours) + "|" + sideKey(theirs)))
	return hex.EncodeToString(h[:])
}

func sideKey(names []string) string {
	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, roster.NormalizeName(n))
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
