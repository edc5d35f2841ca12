// Package matching implements skill normalization, match scoring and
// opportunity ranking. Everything here is pure: no database, no clock.
package matching

import "strings"

// Normalize canonicalizes a skill token for comparison: whitespace trimmed,
// lower-cased. Idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}
