package sms

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultBudget is the character limit of one SMS.
const DefaultBudget = 160

type token struct {
	sep  string // whitespace preceding word
	word string
}

func tokenize(s string) []token {
	var toks []token
	i := 0
	for i < len(s) {
		start := i
		for i < len(s) {
			r, n := utf8.DecodeRuneInString(s[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += n
		}
		sepEnd := i
		for i < len(s) {
			r, n := utf8.DecodeRuneInString(s[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += n
		}
		if i > sepEnd {
			toks = append(toks, token{sep: s[start:sepEnd], word: s[sepEnd:i]})
		}
	}
	return toks
}

// Split breaks text into chunks of at most budget characters. Text that
// fits is returned as is. Otherwise chunks break only at whitespace, keep
// the separators that fall inside a chunk, and each carries an " (i/n)"
// suffix counted within the budget. A single word longer than a chunk is
// the one case that is cut mid-word.
func Split(text string, budget int) []string {
	if budget <= 0 || utf8.RuneCountInString(text) <= budget {
		return []string{text}
	}
	toks := tokenize(text)
	if len(toks) == 0 {
		return []string{""}
	}

	// Reserve room for the suffix, widening it if the chunk count needs
	// more digits than assumed.
	var chunks []string
	for digits := 1; ; digits++ {
		limit := budget - suffixLen(digits)
		if limit < 1 {
			limit = 1
		}
		chunks = pack(toks, limit)
		if len(strconv.Itoa(len(chunks))) <= digits {
			break
		}
	}
	if len(chunks) == 1 {
		return chunks
	}
	n := strconv.Itoa(len(chunks))
	for i := range chunks {
		chunks[i] += " (" + strconv.Itoa(i+1) + "/" + n + ")"
	}
	return chunks
}

// suffixLen is the width of " (i/n)" when i and n have the given digits.
func suffixLen(digits int) int {
	return len(" (/)") + 2*digits
}

func pack(toks []token, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	for _, t := range toks {
		wl := utf8.RuneCountInString(t.word)
		if wl > limit {
			flush()
			rs := []rune(t.word)
			for len(rs) > limit {
				chunks = append(chunks, string(rs[:limit]))
				rs = rs[limit:]
			}
			cur.WriteString(string(rs))
			curLen = len(rs)
			continue
		}
		if curLen == 0 {
			cur.WriteString(t.word)
			curLen = wl
			continue
		}
		sl := utf8.RuneCountInString(t.sep)
		if curLen+sl+wl > limit {
			flush()
			cur.WriteString(t.word)
			curLen = wl
			continue
		}
		cur.WriteString(t.sep)
		cur.WriteString(t.word)
		curLen += sl + wl
	}
	flush()
	return chunks
}
