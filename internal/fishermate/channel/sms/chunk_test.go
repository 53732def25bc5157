package sms_test

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fishermate/fishermate/internal/fishermate/channel/sms"
)

var suffix = regexp.MustCompile(` \((\d+)/(\d+)\)$`)

func stripSuffixes(t *testing.T, chunks []string) []string {
	t.Helper()
	out := make([]string, len(chunks))
	for i, c := range chunks {
		m := suffix.FindStringSubmatch(c)
		if m == nil {
			t.Fatalf("chunk %d has no index suffix: %q", i, c)
		}
		if m[1] != fmt.Sprint(i+1) || m[2] != fmt.Sprint(len(chunks)) {
			t.Fatalf("chunk %d has suffix %q", i, m[0])
		}
		out[i] = strings.TrimSuffix(c, m[0])
	}
	return out
}

func words(n int) string {
	vocab := []string{"storm", "warning", "for", "coastal", "Tamil", "Nadu", "fishermen", "stay", "ashore", "tonight"}
	var b strings.Builder
	for b.Len() < n {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(vocab[b.Len()%len(vocab)])
	}
	return b.String()[:n]
}

func TestSplit_350Into160(t *testing.T) {
	text := strings.TrimSpace(words(350))
	chunks := sms.Split(text, 160)
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 160 {
			t.Errorf("chunk %d is %d chars", i, n)
		}
	}
	bodies := stripSuffixes(t, chunks)
	if got, want := strings.Fields(strings.Join(bodies, " ")), strings.Fields(text); strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("word sequence not reconstructable:\n got %v\nwant %v", got, want)
	}
	// No chunk boundary falls inside a word.
	orig := strings.Fields(text)
	seen := 0
	for _, b := range bodies {
		for _, w := range strings.Fields(b) {
			if w != orig[seen] {
				t.Fatalf("word %d split: %q vs %q", seen, w, orig[seen])
			}
			seen++
		}
	}
}

func TestSplit_ShortTextUnchanged(t *testing.T) {
	text := "EMERGENCY: Coast Guard 1554\nEmergency: 112"
	got := sms.Split(text, 160)
	if len(got) != 1 || got[0] != text {
		t.Errorf("got %q", got)
	}
	exact := strings.Repeat("a", 160)
	if got := sms.Split(exact, 160); len(got) != 1 || got[0] != exact {
		t.Error("text of exactly the budget should not be split")
	}
}

func TestSplit_PreservesLineBreaksInsideChunks(t *testing.T) {
	text := "Safety Checklist:\n✅ Life jacket\n✅ Radio\n" + strings.Repeat("✅ Flare ", 25)
	chunks := sms.Split(text, 160)
	if len(chunks) < 2 {
		t.Fatalf("expected split, got %d chunk", len(chunks))
	}
	if !strings.HasPrefix(chunks[0], "Safety Checklist:\n✅ Life jacket\n✅ Radio\n✅") {
		t.Errorf("line breaks not preserved: %q", chunks[0])
	}
}

func TestSplit_CountsRunesNotBytes(t *testing.T) {
	text := strings.Repeat("மீன்பிடி ", 40)
	for i, c := range sms.Split(text, 160) {
		if n := utf8.RuneCountInString(c); n > 160 {
			t.Errorf("chunk %d has %d runes", i, n)
		}
	}
}

func TestSplit_OverlongWordIsCut(t *testing.T) {
	long := strings.Repeat("x", 400)
	chunks := sms.Split("see "+long, 160)
	bodies := stripSuffixes(t, chunks)
	if strings.Join(bodies, "") != "see"+long {
		t.Errorf("content lost: %q", strings.Join(bodies, ""))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 160 {
			t.Errorf("chunk %d is %d chars", i, n)
		}
	}
}

func TestSplit_TwoDigitChunkCount(t *testing.T) {
	text := strings.TrimSpace(words(2000))
	chunks := sms.Split(text, 160)
	if len(chunks) < 10 {
		t.Fatalf("expected 10+ chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 160 {
			t.Errorf("chunk %d is %d chars", i, n)
		}
	}
	stripSuffixes(t, chunks)
}
