package safety

import (
	"fmt"
	"strings"
)

// compactItems caps how many items a compact rendering lists.
const compactItems = 4

var priorityIcon = map[Priority]string{
	PriorityHigh:   "🔴",
	PriorityMedium: "🟡",
}

// Format renders a category for chat.
func Format(c Category) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s **%s**\n\n", c.Icon, c.Title)
	for _, s := range c.Sections {
		if icon, ok := priorityIcon[s.Priority]; ok {
			fmt.Fprintf(&b, "%s **%s** (%s priority):\n", icon, s.Title, s.Priority)
		} else {
			fmt.Fprintf(&b, "**%s:**\n", s.Title)
		}
		for i, item := range s.Items {
			if s.Numbered {
				fmt.Fprintf(&b, "%d. %s\n", i+1, item)
			} else {
				fmt.Fprintf(&b, "• %s\n", item)
			}
		}
		b.WriteString("\n")
	}
	if c.Footer != "" {
		b.WriteString(c.Footer)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCompact renders the first section of a category on a few lines.
func FormatCompact(c Category) string {
	if len(c.Sections) == 0 {
		return c.Title
	}
	s := c.Sections[0]
	items := s.Items
	if len(items) > compactItems {
		items = items[:compactItems]
	}
	return fmt.Sprintf("%s: %s", c.Title, strings.Join(items, "; "))
}

func compactProcedure(p Procedure) string {
	steps := p.Steps
	if len(steps) > compactItems {
		steps = steps[:compactItems]
	}
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString(":")
	for i, s := range steps {
		fmt.Fprintf(&b, " %d.%s", i+1, s)
	}
	return b.String()
}

// Conditions are the weather readings safety tips are chosen from.
type Conditions struct {
	WindKmh      float64
	WaveM        float64
	VisibilityKm float64
}

// TipsForWeather returns safety tips for the given conditions.
func TipsForWeather(c Conditions) []string {
	var tips []string
	if c.WindKmh > 25 {
		tips = append(tips,
			"🌪️ Strong winds detected - consider returning to shore",
			"⚓ Secure all loose equipment")
	}
	if c.WaveM > 2 {
		tips = append(tips,
			"🌊 High waves - maintain slow speed and stay alert",
			"🛟 Ensure all crew wear life jackets")
	}
	if c.VisibilityKm < 5 {
		tips = append(tips,
			"🌫️ Poor visibility - use navigation lights",
			"📻 Maintain regular radio contact")
	}
	if len(tips) == 0 {
		tips = append(tips,
			"✅ Weather conditions are favorable for fishing",
			"🦺 Always maintain basic safety protocols")
	}
	return tips
}
