package weather

import (
	"strings"
	"time"
)

// Level grades fishing conditions.
type Level string

const (
	LevelSafe      Level = "safe"
	LevelCaution   Level = "caution"
	LevelDangerous Level = "dangerous"
)

// Thresholds for the current-conditions assessment.
const (
	maxWindKmh     = 25.0
	minVisibility  = 5.0
	maxRain1h      = 10.0
	slotDangerWind = 30.0
	slotDangerRain = 20.0
	slotCautWind   = 20.0
	slotCautRain   = 10.0
)

// Issue names one hazard found by Assess.
type Issue string

const (
	IssueHighWind      Issue = "high_wind"
	IssueLowVisibility Issue = "low_visibility"
	IssueHeavyRain     Issue = "heavy_rain"
	IssueWarning       Issue = "weather_warning"
)

var warningKeywords = []string{
	"cyclone", "storm", "heavy rain", "high tide", "tsunami",
	"depression", "low pressure", "rough sea", "very rough sea",
}

// Assessment is the fishing safety verdict for current conditions.
type Assessment struct {
	Level           Level    `json:"level"`
	Issues          []Issue  `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// Assess grades current conditions: no issues is safe, one or two is
// caution, more is dangerous.
func Assess(c Current) Assessment {
	var issues []Issue
	if c.WindKmh > maxWindKmh {
		issues = append(issues, IssueHighWind)
	}
	if c.Visibility < minVisibility {
		issues = append(issues, IssueLowVisibility)
	}
	if c.Rain1h > maxRain1h {
		issues = append(issues, IssueHeavyRain)
	}
	desc := strings.ToLower(c.Description)
	for _, kw := range warningKeywords {
		if strings.Contains(desc, kw) {
			issues = append(issues, IssueWarning)
			break
		}
	}

	level := LevelSafe
	switch {
	case len(issues) > 2:
		level = LevelDangerous
	case len(issues) > 0:
		level = LevelCaution
	}
	return Assessment{Level: level, Issues: issues, Recommendations: recommend(level, issues)}
}

func recommend(level Level, issues []Issue) []string {
	switch level {
	case LevelSafe:
		return []string{
			"Conditions are favorable for fishing",
			"Always wear life jackets",
			"Keep emergency communication devices",
		}
	case LevelDangerous:
		return []string{
			"Avoid fishing in current conditions",
			"Return to shore immediately if already at sea",
			"Wait for weather to improve",
			"Monitor official weather warnings",
		}
	}
	recs := []string{
		"Exercise caution while fishing",
		"Stay close to shore",
		"Monitor weather conditions closely",
	}
	for _, i := range issues {
		switch i {
		case IssueHighWind:
			recs = append(recs, "Secure all equipment due to strong winds")
		case IssueLowVisibility:
			recs = append(recs, "Use navigation lights and sound signals")
		case IssueHeavyRain:
			recs = append(recs, "Ensure proper drainage in boat")
		}
	}
	return recs
}

// SlotLevel grades one forecast step from wind (km/h) and 3h rain (mm).
func SlotLevel(windKmh, rain3h float64) Level {
	switch {
	case windKmh > slotDangerWind || rain3h > slotDangerRain:
		return LevelDangerous
	case windKmh > slotCautWind || rain3h > slotCautRain:
		return LevelCaution
	}
	return LevelSafe
}

// SeaState is a Beaufort-style sea description.
type SeaState struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	WaveHeight  string `json:"wave_height"`
}

var beaufort = []struct {
	below float64
	state SeaState
}{
	{1, SeaState{0, "Calm (glassy)", "0m"}},
	{5, SeaState{1, "Light air (ripples)", "0-0.1m"}},
	{11, SeaState{2, "Light breeze (small wavelets)", "0.1-0.5m"}},
	{19, SeaState{3, "Gentle breeze (large wavelets)", "0.5-1.25m"}},
	{28, SeaState{4, "Moderate breeze (small waves)", "1.25-2.5m"}},
	{38, SeaState{5, "Fresh breeze (moderate waves)", "2.5-4m"}},
	{49, SeaState{6, "Strong breeze (large waves)", "4-6m"}},
	{61, SeaState{7, "Near gale (very large waves)", "6-9m"}},
	{74, SeaState{8, "Gale (huge waves)", "9-14m"}},
}

// Sea returns the sea state for a wind speed in km/h.
func Sea(windKmh float64) SeaState {
	for _, b := range beaufort {
		if windKmh < b.below {
			return b.state
		}
	}
	return SeaState{9, "Storm (very high waves)", "14m+"}
}

// WaveHeight estimates wave height in metres from wind speed in km/h.
func WaveHeight(windKmh float64) float64 {
	switch {
	case windKmh < 10:
		return 0.5
	case windKmh < 20:
		return 1.0
	case windKmh < 30:
		return 2.0
	case windKmh < 40:
		return 3.5
	}
	return 5.0
}

// Day summarizes the slots of one calendar day.
type Day struct {
	Date        time.Time `json:"date"`
	TempMin     float64   `json:"temp_min"`
	TempMax     float64   `json:"temp_max"`
	Description string    `json:"description"`
	WindKmh     float64   `json:"wind_speed"` // maximum
	Level       Level     `json:"safety_level"`
}

// summarize groups slots by date in loc. A day's description and level
// come from its first slot.
func summarize(slots []Slot, loc *time.Location) []Day {
	var days []Day
	for _, s := range slots {
		t := s.At.In(loc)
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		if n := len(days); n > 0 && days[n-1].Date.Equal(date) {
			d := &days[n-1]
			d.TempMin = min(d.TempMin, s.Temperature)
			d.TempMax = max(d.TempMax, s.Temperature)
			d.WindKmh = max(d.WindKmh, s.WindKmh)
			continue
		}
		days = append(days, Day{
			Date:        date,
			TempMin:     s.Temperature,
			TempMax:     s.Temperature,
			Description: s.Description,
			WindKmh:     s.WindKmh,
			Level:       s.Level,
		})
	}
	return days
}
