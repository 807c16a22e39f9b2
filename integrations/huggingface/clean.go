package huggingface

import (
	"regexp"
	"strings"
)

var (
	reRunNewlines  = regexp.MustCompile(`\n{3,}`)
	reBulletLine   = regexp.MustCompile(`(?m)^[ \t]*[-•][ \t]*`)
	reBracketMeta  = regexp.MustCompile(`\[[^\]]*\]`)
	reSpecialToken = regexp.MustCompile(`<\|[^|]*\|>`)
	reBraceMeta    = regexp.MustCompile(`\{[^}]*\}`)
	reRolePrefix   = regexp.MustCompile(`(?i)^(assistant|ai|response|respuesta):\s*`)
)

// Clean normalizes raw model output: strips role prefixes and metadata
// tokens, collapses newline runs, drops a short trailing incomplete
// sentence, enforces the length limit at a sentence boundary and guarantees
// terminal punctuation. It is pure and idempotent: cleaning already-clean
// text changes nothing.
func Clean(text string, maxChars int) string {
	cleaned := strings.TrimSpace(text)
	cleaned = reRolePrefix.ReplaceAllString(cleaned, "")
	cleaned = reBracketMeta.ReplaceAllString(cleaned, "")
	cleaned = reSpecialToken.ReplaceAllString(cleaned, "")
	cleaned = reBraceMeta.ReplaceAllString(cleaned, "")
	cleaned = reRunNewlines.ReplaceAllString(cleaned, "\n\n")
	cleaned = reBulletLine.ReplaceAllString(cleaned, "• ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, `"'`)
	cleaned = strings.TrimSpace(cleaned)

	cleaned = dropIncompleteTail(cleaned)

	if cleaned == "" {
		return ""
	}

	if !endsWithTerminal(cleaned) {
		cleaned += "."
	}

	return truncateAtSentence(cleaned, maxChars)
}

// dropIncompleteTail removes a short trailing fragment with no terminal
// punctuation, the typical artifact of a completion that ran out of tokens.
// Long tails are kept; they read as prose, not as a cut-off.
func dropIncompleteTail(text string) string {
	last := lastTerminalIndex(text)
	if last < 0 || last == len(text)-1 {
		return text
	}

	tail := strings.TrimSpace(text[last+1:])
	if tail == "" {
		return strings.TrimSpace(text[:last+1])
	}
	if len([]rune(tail)) <= 80 {
		return strings.TrimSpace(text[:last+1])
	}
	return text
}

func truncateAtSentence(text string, maxChars int) string {
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return text
	}

	truncated := string(runes[:maxChars])
	if i := lastTerminalIndex(truncated); i >= 0 && i > int(float64(len(truncated))*0.7) {
		return truncated[:i+1]
	}

	// No sentence boundary far enough in: cut at a word boundary, leaving
	// room so the ellipsis never pushes past the limit.
	head := string(runes[:maxChars-3])
	if i := strings.LastIndexByte(head, ' '); i > 0 {
		head = head[:i]
	}
	return strings.TrimSpace(head) + "..."
}

func lastTerminalIndex(s string) int {
	return max(strings.LastIndexByte(s, '.'),
		max(strings.LastIndexByte(s, '!'), strings.LastIndexByte(s, '?')))
}

func endsWithTerminal(s string) bool {
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
