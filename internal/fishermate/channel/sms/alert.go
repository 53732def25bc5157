package sms

import (
	"strconv"

	"github.com/fishermate/fishermate/internal/fishermate/templates"
)

// Alert levels, matching the weather provider's safety levels.
const (
	LevelDangerous = "dangerous"
	LevelCaution   = "caution"
	LevelSafe      = "safe"
)

// AlertText renders a weather alert for broadcast. Unknown levels are
// treated as a plain update.
func AlertText(c *templates.Catalog, lang, level, description string, windKmh float64) string {
	key := "alert_safe"
	switch level {
	case LevelDangerous:
		key = "alert_dangerous"
	case LevelCaution:
		key = "alert_caution"
	}
	if description == "" {
		description = "Weather update"
	}
	return c.TextWith(key, lang, map[string]string{
		"Description": description,
		"Wind":        strconv.FormatFloat(windKmh, 'f', -1, 64),
	})
}

// FormatAlert renders an alert with the built-in catalog.
func FormatAlert(lang, level, description string, windKmh float64) string {
	return AlertText(templates.MustBuiltin("sms"), lang, level, description, windKmh)
}
