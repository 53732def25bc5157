package legal_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fishermate/fishermate/internal/fishermate/content"
	"github.com/fishermate/fishermate/internal/fishermate/content/legal"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestCheckBan(t *testing.T) {
	tests := []struct {
		name   string
		period string
		now    time.Time
		want   legal.BanStatus
	}{
		{"before", "April 15 - June 14", date(2026, time.March, 16, 0), legal.BanStatus{State: legal.BanUpcoming, Days: 30}},
		{"first day", "April 15 - June 14", date(2026, time.April, 15, 0), legal.BanStatus{State: legal.BanActive, Days: 60}},
		{"during", "April 15 - June 14", date(2026, time.June, 1, 12), legal.BanStatus{State: legal.BanActive, Days: 12}},
		{"last day after midnight", "April 15 - June 14", date(2026, time.June, 14, 9), legal.BanStatus{State: legal.BanInactive}},
		{"after", "June 1 - July 31 (Monsoon ban)", date(2026, time.October, 18, 0), legal.BanStatus{State: legal.BanInactive}},
		{"suffix ignored", "April 15 - June 14 (Bay of Bengal)", date(2026, time.May, 14, 0), legal.BanStatus{State: legal.BanActive, Days: 31}},
		{"unparseable", "Monsoon", date(2026, time.May, 1, 0), legal.BanStatus{}},

		// Year-wrapping periods: January to June moves the start back a
		// year, July to December moves the end forward.
		{"wrap, january", "November 15 - February 14", date(2026, time.January, 10, 0), legal.BanStatus{State: legal.BanActive, Days: 35}},
		{"wrap, december", "November 15 - February 14", date(2026, time.December, 1, 0), legal.BanStatus{State: legal.BanActive, Days: 75}},
		{"wrap, june reads as past", "November 15 - February 14", date(2026, time.June, 30, 0), legal.BanStatus{State: legal.BanInactive}},
		{"wrap, july reads as upcoming", "November 15 - February 14", date(2026, time.July, 1, 0), legal.BanStatus{State: legal.BanUpcoming, Days: 137}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := legal.CheckBan(tc.period, tc.now); got != tc.want {
				t.Errorf("CheckBan(%q, %s) = %+v, want %+v", tc.period, tc.now.Format(time.DateOnly), got, tc.want)
			}
		})
	}
}

func TestBanStatusString(t *testing.T) {
	if got := (legal.BanStatus{State: legal.BanActive, Days: 3}).String(); got != "🔴 ACTIVE BAN - 3 days remaining" {
		t.Errorf("active: %q", got)
	}
	if got := (legal.BanStatus{}).String(); got != "" {
		t.Errorf("unknown: %q", got)
	}
}

func newProvider(t *testing.T, now time.Time) *legal.Provider {
	t.Helper()
	p, err := legal.NewProvider(legal.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return p
}

func TestBuiltinStates(t *testing.T) {
	p := newProvider(t, time.Now())
	if got := len(p.States()); got != 9 {
		t.Fatalf("got %d states", got)
	}
	s, err := p.State("west bengal")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "West Bengal" || s.Contact.Helpline == "" {
		t.Errorf("state: %+v", s)
	}
	if _, err := p.State("Atlantis"); !errors.Is(err, legal.ErrUnknownState) {
		t.Errorf("unknown state: %v", err)
	}
}

func TestDetect(t *testing.T) {
	p := newProvider(t, time.Now())
	tests := []struct {
		msg  string
		loc  *content.Location
		want string
	}{
		{"fishing ban in Kerala?", nil, "Kerala"},
		{"rules for Mumbai boats", nil, "Maharashtra"},
		{"TAMIL NADU license", nil, "Tamil Nadu"},
		{"is there a map of zones", nil, "Tamil Nadu"}, // "ap" inside a word is not Andhra Pradesh
		{"AP trawling", nil, "Andhra Pradesh"},
		{"ban dates", &content.Location{Lat: 22.0, Lon: 88.3}, "West Bengal"},
		{"ban dates", &content.Location{Lat: 0, Lon: 0}, "Tamil Nadu"},
		{"ban dates", nil, legal.DefaultState},
	}
	for _, tc := range tests {
		if got := p.Detect(tc.msg, tc.loc); got != tc.want {
			t.Errorf("Detect(%q) = %s, want %s", tc.msg, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]legal.QueryType{
		"when is the ban":             legal.QuerySeasonalBan,
		"how do I get a permit":       legal.QueryLicensing,
		"what equipment must I carry": legal.QuerySafety,
		"helpline number":             legal.QueryContact,
		"what is the fine":            legal.QueryPenalties,
		"tell me the rules":           legal.QueryGeneral,
	}
	for msg, want := range tests {
		if got := legal.Classify(msg); got != want {
			t.Errorf("Classify(%q) = %s, want %s", msg, got, want)
		}
	}
}

func TestRespond(t *testing.T) {
	p := newProvider(t, date(2026, time.May, 1, 0))

	resp, err := p.Respond(context.Background(), content.Query{Message: "Tamil Nadu seasonal ban", Language: "ta"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Type != content.TypeLegal || resp.Language != "en" {
		t.Errorf("response: %+v", resp)
	}
	for _, want := range []string{"Seasonal Fishing Ban - Tamil Nadu", "April 15 - June 14", "ACTIVE BAN - 44 days remaining"} {
		if !strings.Contains(resp.Text, want) {
			t.Errorf("missing %q in:\n%s", want, resp.Text)
		}
	}

	resp, _ = p.Respond(context.Background(), content.Query{Message: "legal Goa", Compact: true})
	if !strings.HasPrefix(resp.Text, "Goa Fishing Rules:") || len([]rune(resp.Text)) > 160 {
		t.Errorf("compact: %q", resp.Text)
	}

	resp, _ = p.Respond(context.Background(), content.Query{Message: "Kerala contact"})
	if !strings.Contains(resp.Text, "1800-425-4030") {
		t.Errorf("contact: %s", resp.Text)
	}
}

func TestInfoAndFAQ(t *testing.T) {
	p := newProvider(t, date(2026, time.October, 18, 0))
	info, err := p.Info("goa", "hi")
	if err != nil {
		t.Fatal(err)
	}
	if info.State != "Goa" || info.BanStatus != "🟢 No active ban" || info.Language != "hi" {
		t.Errorf("info: %+v", info)
	}

	if got := legal.FAQ("License renewal?"); !strings.HasPrefix(got, "Fishing licenses must be renewed") {
		t.Errorf("FAQ: %q", got)
	}
	if got := legal.FAQ("something else"); !strings.Contains(got, "helpline") {
		t.Errorf("FAQ default: %q", got)
	}
}

func TestLoadStates_Rejects(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":     "states: []",
		"nameless":  "states:\n- keywords: [x]",
		"duplicate": "states:\n- name: Goa\n- name: Goa",
		"not yaml":  "states: [",
	} {
		if _, err := legal.LoadStates([]byte(raw)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestWithStates(t *testing.T) {
	states, err := legal.LoadStates([]byte(`
states:
  - name: Lakshadweep
    keywords: [lakshadweep, kavaratti]
    seasonal_ban:
      period: "June 1 - July 31"
`))
	if err != nil {
		t.Fatalf("LoadStates: %v", err)
	}
	p, err := legal.NewProvider(legal.WithStates(states))
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if got := p.States(); len(got) != 1 || got[0] != "Lakshadweep" {
		t.Errorf("States: got %v", got)
	}
	if got := p.Detect("ban dates near Kavaratti?", nil); got != "Lakshadweep" {
		t.Errorf("Detect: got %q", got)
	}
	if _, err := p.State("Kerala"); !errors.Is(err, legal.ErrUnknownState) {
		t.Errorf("built-in states should be replaced, got %v", err)
	}
}
