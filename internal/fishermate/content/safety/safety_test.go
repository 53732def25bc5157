package safety_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fishermate/fishermate/internal/fishermate/content"
	"github.com/fishermate/fishermate/internal/fishermate/content/safety"
)

func newProvider(t *testing.T) *safety.Provider {
	t.Helper()
	now := time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC)
	p, err := safety.NewProvider(safety.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return p
}

func TestCategories(t *testing.T) {
	p := newProvider(t)
	want := []string{
		"emergency_contacts", "safety_equipment_guide", "weather_safety",
		"pre_fishing_checklist", "at_sea_safety", "first_aid_basics", "survival_techniques",
	}
	got := p.Categories()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Categories: got %v, want %v", got, want)
	}
}

func TestClassify(t *testing.T) {
	p := newProvider(t)
	tests := []struct {
		msg  string
		want string
	}{
		{"we need rescue now", "emergency_contacts"},
		{"which life jacket should I buy", "safety_equipment_guide"},
		{"is it safe in a storm", "weather_safety"},
		{"what to inspect before leaving", "pre_fishing_checklist"},
		{"navigation tips", "at_sea_safety"},
		{"treating a wound", "first_aid_basics"},
		{"how to use a life raft", "survival_techniques"},
		{"safety", "pre_fishing_checklist"},
		// emergency outranks weather
		{"emergency in rough sea", "emergency_contacts"},
	}
	for _, tt := range tests {
		if got := p.Classify(tt.msg); got != tt.want {
			t.Errorf("Classify(%q): got %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestRespond_Checklist(t *testing.T) {
	p := newProvider(t)
	r, err := p.Respond(context.Background(), content.Query{Message: "safety checklist", Language: "ta"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if r.Type != content.TypeSafety || r.Language != "en" {
		t.Errorf("unexpected envelope %+v", r)
	}
	for _, want := range []string{
		"📋 **PRE-FISHING SAFETY CHECKLIST**",
		"🔴 **Weather Conditions** (high priority):",
		"🟡 **Boat Inspection** (medium priority):",
		"• Life jackets for all crew members",
		"Complete ALL high-priority items",
	} {
		if !strings.Contains(r.Text, want) {
			t.Errorf("missing %q in:\n%s", want, r.Text)
		}
	}
}

func TestRespond_NumberedSections(t *testing.T) {
	p := newProvider(t)
	r, err := p.Respond(context.Background(), content.Query{Message: "first aid for drowning"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !strings.Contains(r.Text, "**Drowning:**\n1. Remove from water immediately\n2. Check for breathing and pulse") {
		t.Errorf("numbered list not rendered:\n%s", r.Text)
	}
}

func TestRespond_Procedure(t *testing.T) {
	p := newProvider(t)
	r, err := p.Respond(context.Background(), content.Query{Message: "Man overboard!"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !strings.HasPrefix(r.Text, "🚨 **MAN OVERBOARD**\n1. Shout") {
		t.Errorf("unexpected procedure text:\n%s", r.Text)
	}

	r, err = p.Respond(context.Background(), content.Query{Message: "fire on deck", Compact: true})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !strings.HasPrefix(r.Text, "BOAT FIRE EMERGENCY: 1.Alert all crew immediately") {
		t.Errorf("unexpected compact procedure: %q", r.Text)
	}
}

func TestRespond_Compact(t *testing.T) {
	p := newProvider(t)
	r, err := p.Respond(context.Background(), content.Query{Message: "radio equipment", Compact: true})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	want := "SAFETY EQUIPMENT GUIDE: Type I: Offshore life jackets (24+ hours); " +
		"Type II: Near-shore vests (turning capability); Type III: Flotation aids (calm water); " +
		"Type V: Special use (specific conditions)"
	if r.Text != want {
		t.Errorf("compact:\ngot  %q\nwant %q", r.Text, want)
	}
}

func TestEmergency(t *testing.T) {
	p := newProvider(t)
	for _, kind := range []string{
		safety.EmergencyFire, safety.EmergencyManOverboard, safety.EmergencyMedical,
		safety.EmergencyEngineFailure, safety.EmergencyCollision,
	} {
		text := p.Emergency(kind)
		if !strings.Contains(text, "\n7. ") {
			t.Errorf("%s: expected seven steps, got:\n%s", kind, text)
		}
	}
	if got := p.Emergency("tsunami"); got != safety.GeneralEmergency {
		t.Errorf("unknown kind: got %q", got)
	}
	if !strings.Contains(p.Emergency(safety.EmergencyEngineFailure), "PAN-PAN") {
		t.Error("engine failure procedure should mention PAN-PAN")
	}
}

func TestInfo(t *testing.T) {
	p := newProvider(t)
	info, err := p.Info("first_aid_basics", "hi")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Category != "first_aid_basics" || info.Language != "hi" || info.Timestamp != "2025-10-18T09:00:00Z" {
		t.Errorf("unexpected info %+v", info)
	}
	if len(info.Info.Sections) != 4 {
		t.Errorf("sections: got %d, want 4", len(info.Info.Sections))
	}

	_, err = p.Info("sharks", "en")
	if !errors.Is(err, safety.ErrUnknownCategory) {
		t.Errorf("unknown category: got %v", err)
	}
}

func TestTipsForWeather(t *testing.T) {
	tests := []struct {
		name  string
		cond  safety.Conditions
		first string
		count int
	}{
		{"calm", safety.Conditions{WindKmh: 10, WaveM: 0.5, VisibilityKm: 10}, "✅ Weather conditions are favorable for fishing", 2},
		{"windy", safety.Conditions{WindKmh: 30, WaveM: 1, VisibilityKm: 10}, "🌪️ Strong winds detected - consider returning to shore", 2},
		{"everything", safety.Conditions{WindKmh: 40, WaveM: 3, VisibilityKm: 1}, "🌪️ Strong winds detected - consider returning to shore", 6},
		{"fog", safety.Conditions{VisibilityKm: 2}, "🌫️ Poor visibility - use navigation lights", 2},
		// thresholds are strict
		{"edges", safety.Conditions{WindKmh: 25, WaveM: 2, VisibilityKm: 5}, "✅ Weather conditions are favorable for fishing", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tips := safety.TipsForWeather(tt.cond)
			if len(tips) != tt.count || tips[0] != tt.first {
				t.Errorf("got %v", tips)
			}
		})
	}
}

func TestLoadGuide_Rejects(t *testing.T) {
	tests := map[string]string{
		"empty":     "default_category: x\ncategories: []\n",
		"no key":    "default_category: a\ncategories:\n  - title: A\n",
		"duplicate": "default_category: a\ncategories:\n  - key: a\n  - key: a\n",
		"default":   "default_category: b\ncategories:\n  - key: a\n",
		"syntax":    "categories: [",
	}
	for name, doc := range tests {
		if _, err := safety.LoadGuide([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestWithGuide(t *testing.T) {
	g, err := safety.LoadGuide([]byte(`
default_category: harbour
categories:
  - key: harbour
    title: HARBOUR RULES
    keywords: [harbour, jetty]
    sections:
      - title: Mooring
        items: ["Tie off bow and stern"]
  - key: nets
    title: NET CARE
    keywords: [net]
    sections:
      - title: Drying
        items: ["Dry nets in shade"]
`))
	if err != nil {
		t.Fatalf("LoadGuide: %v", err)
	}
	p, err := safety.NewProvider(safety.WithGuide(g))
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if got := strings.Join(p.Categories(), ","); got != "harbour,nets" {
		t.Errorf("Categories: got %s", got)
	}
	if got := p.Classify("how do I repair a torn net"); got != "nets" {
		t.Errorf("Classify: got %q", got)
	}
	if got := p.Classify("anything else"); got != "harbour" {
		t.Errorf("default: got %q", got)
	}
	if _, err := p.Category("pre_fishing_checklist"); !errors.Is(err, safety.ErrUnknownCategory) {
		t.Errorf("built-in guide should be replaced, got %v", err)
	}
}
