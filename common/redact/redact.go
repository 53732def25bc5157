// Package redact masks personal identifiers and credentials before they
// reach logs or the exchange log.
//
// Fisherfolk are identified by phone numbers (SMS, WhatsApp) or Matrix IDs.
// Those identifiers are needed as session keys but must not be written out
// in full.
package redact

import (
	"strings"
	"unicode"
)

const placeholder = "[REDACTED]"

// String replaces every occurrence of each secret in s with [REDACTED].
// Secrets shorter than four bytes are ignored.
func String(s string, secrets ...string) string {
	for _, v := range secrets {
		if len(v) < 4 {
			continue
		}
		s = strings.ReplaceAll(s, v, placeholder)
	}
	return s
}

// User masks a channel user identifier. Phone-like identifiers keep their
// channel prefix (e.g. "whatsapp:"), the leading "+", and the last four
// digits; other identifiers keep their first two and last two runes.
//
//	User("whatsapp:+919876543210") == "whatsapp:+********3210"
//	User("@ravi:matrix.org")        == "@r************rg"
func User(id string) string {
	prefix := ""
	if i := strings.LastIndex(id, ":"); i >= 0 && looksLikePhone(id[i+1:]) {
		prefix, id = id[:i+1], id[i+1:]
	}
	if looksLikePhone(id) {
		return prefix + maskDigits(id, 4)
	}
	r := []rune(id)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return string(r[:2]) + strings.Repeat("*", len(r)-4) + string(r[len(r)-2:])
}

func looksLikePhone(s string) bool {
	digits := 0
	for _, c := range s {
		switch {
		case unicode.IsDigit(c):
			digits++
		case c == '+' || c == '-' || c == ' ':
		default:
			return false
		}
	}
	return digits >= 6
}

// maskDigits replaces every digit except the last keep with '*'.
func maskDigits(s string, keep int) string {
	total := 0
	for _, c := range s {
		if unicode.IsDigit(c) {
			total++
		}
	}
	var b strings.Builder
	seen := 0
	for _, c := range s {
		if unicode.IsDigit(c) {
			seen++
			if seen <= total-keep {
				b.WriteRune('*')
				continue
			}
		}
		b.WriteRune(c)
	}
	return b.String()
}
