package respcache

import "strings"

// NormalizeMessage lower-cases the message and collapses all whitespace so
// that queries differing only in case or literal spacing share one entry.
func NormalizeMessage(message string) string {
	return strings.Join(strings.Fields(strings.ToLower(message)), " ")
}

// Key derives the cache fingerprint from a normalized message and the
// caller-provided context signature. The signature must be built from coarse
// counters only, never from free-text task content.
func Key(normalizedMessage, contextSignature string) string {
	return normalizedMessage + ":" + contextSignature
}
