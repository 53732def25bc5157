// Package weather answers weather questions from OpenWeather data, graded
// for fishing safety.
package weather

import (
	"context"
	"fmt"
	"strings"

	"github.com/fishermate/fishermate/internal/fishermate/content"
	"github.com/fishermate/fishermate/internal/fishermate/content/safety"
)

// Source is the weather data the provider reads.
type Source interface {
	Current(ctx context.Context, lat, lon float64) (Current, error)
	Forecast(ctx context.Context, lat, lon float64, days int) (Forecast, error)
}

// Provider is the weather content provider. It answers in English.
type Provider struct {
	src Source
}

// NewProvider returns a Provider reading from src.
func NewProvider(src Source) *Provider {
	return &Provider{src: src}
}

// Report is the payload of the weather API endpoint.
type Report struct {
	Current Current    `json:"current"`
	Safety  Assessment `json:"safety_assessment"`
	Marine  Marine     `json:"marine"`
	Tips    []string   `json:"safety_tips"`
}

// Marine holds the derived sea conditions.
type Marine struct {
	Sea        SeaState `json:"sea_state"`
	WaveHeight float64  `json:"wave_height"`
}

// Report fetches current conditions at loc with their assessment.
func (p *Provider) Report(ctx context.Context, loc content.Location) (Report, error) {
	cur, err := p.src.Current(ctx, loc.Lat, loc.Lon)
	if err != nil {
		return Report{}, err
	}
	waves := WaveHeight(cur.WindKmh)
	return Report{
		Current: cur,
		Safety:  Assess(cur),
		Marine:  Marine{Sea: Sea(cur.WindKmh), WaveHeight: waves},
		Tips: safety.TipsForWeather(safety.Conditions{
			WindKmh:      cur.WindKmh,
			WaveM:        waves,
			VisibilityKm: cur.Visibility,
		}),
	}, nil
}

// Respond implements content.Provider. Forecast and marine questions are
// recognised by keyword; everything else gets current conditions.
func (p *Provider) Respond(ctx context.Context, q content.Query) (content.Response, error) {
	loc := DefaultLocation
	if q.Location != nil {
		loc = *q.Location
	}
	msg := strings.ToLower(q.Message)

	switch {
	case strings.Contains(msg, "forecast") || strings.Contains(msg, "tomorrow"):
		f, err := p.src.Forecast(ctx, loc.Lat, loc.Lon, 3)
		if err != nil {
			return content.Response{}, err
		}
		return respond(FormatForecast(f, q.Compact), f), nil
	case strings.Contains(msg, "marine") || strings.Contains(msg, "sea"):
		r, err := p.Report(ctx, loc)
		if err != nil {
			return content.Response{}, err
		}
		return respond(FormatMarine(r), r), nil
	}
	r, err := p.Report(ctx, loc)
	if err != nil {
		return content.Response{}, err
	}
	if q.Compact {
		return respond(FormatCompact(r), r), nil
	}
	return respond(FormatCurrent(r), r), nil
}

func respond(text string, data any) content.Response {
	return content.Response{Text: text, Type: content.TypeWeather, Language: "en", Data: data}
}

func levelLine(l Level) string {
	switch l {
	case LevelSafe:
		return "✅ Fishing conditions: SAFE"
	case LevelCaution:
		return "⚠️ Fishing conditions: CAUTION"
	}
	return "❌ Fishing conditions: DANGEROUS"
}

// FormatCurrent renders current conditions for chat.
func FormatCurrent(r Report) string {
	c := r.Current
	var b strings.Builder
	fmt.Fprintf(&b, "Current weather in %s:\n", c.Place)
	fmt.Fprintf(&b, "🌡️ Temperature: %.1f°C (feels like %.1f°C)\n", c.Temperature, c.FeelsLike)
	fmt.Fprintf(&b, "💨 Wind: %.1f km/h\n", c.WindKmh)
	fmt.Fprintf(&b, "💧 Humidity: %d%%\n", c.Humidity)
	fmt.Fprintf(&b, "🌊 Conditions: %s\n", c.Description)
	fmt.Fprintf(&b, "👁️ Visibility: %.1f km\n\n", c.Visibility)
	b.WriteString(levelLine(r.Safety.Level))
	b.WriteString("\n\n📋 Recommendations:\n")
	recs := r.Safety.Recommendations
	if len(recs) > 3 {
		recs = recs[:3]
	}
	for _, rec := range recs {
		b.WriteString("• " + rec + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCompact renders current conditions for SMS.
func FormatCompact(r Report) string {
	c := r.Current
	verdict := "✅ Good for fishing"
	switch r.Safety.Level {
	case LevelCaution:
		verdict = "⚠️ Fish with caution"
	case LevelDangerous:
		verdict = "❌ DO NOT FISH"
	}
	return fmt.Sprintf("%s Weather:\n%.0f°C, %s\n💨 %.0f km/h\n💧 %d%% humidity\n%s",
		c.Place, c.Temperature, c.Description, c.WindKmh, c.Humidity, verdict)
}

// FormatMarine renders derived sea conditions with safety tips.
func FormatMarine(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Marine conditions:\n🌊 Sea State: %s\n📏 Wave Height: %s\n🌀 Estimated Wave Height: %.1fm",
		r.Marine.Sea.Description, r.Marine.Sea.WaveHeight, r.Marine.WaveHeight)
	if len(r.Tips) > 0 {
		b.WriteString("\n")
		for _, tip := range r.Tips {
			b.WriteString("\n" + tip)
		}
	}
	return b.String()
}

// FormatForecast renders up to three daily summaries.
func FormatForecast(f Forecast, compact bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weather forecast for %s:\n", f.Place)
	days := f.Days
	if len(days) > 3 {
		days = days[:3]
	}
	for _, d := range days {
		if compact {
			fmt.Fprintf(&b, "%s %.0f-%.0f°C %.0fkm/h %s\n", d.Date.Format("Jan 2"), d.TempMin, d.TempMax, d.WindKmh, strings.ToUpper(string(d.Level)))
			continue
		}
		fmt.Fprintf(&b, "\n📅 %s:\n", d.Date.Format("Monday, January 02"))
		fmt.Fprintf(&b, "🌡️ %.1f°C - %.1f°C\n", d.TempMin, d.TempMax)
		fmt.Fprintf(&b, "🌤️ %s\n", d.Description)
		fmt.Fprintf(&b, "💨 Wind: %.1f km/h\n", d.WindKmh)
		fmt.Fprintf(&b, "🔒 Fishing: %s\n", dayVerdict(d.Level))
	}
	return strings.TrimRight(b.String(), "\n")
}

func dayVerdict(l Level) string {
	switch l {
	case LevelSafe:
		return "✅ Safe"
	case LevelCaution:
		return "⚠️ Caution"
	}
	return "❌ Dangerous"
}
