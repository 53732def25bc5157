package relay

import (
	"strings"

	"github.com/fishermate/fishermate/internal/fishermate/intent"
	"github.com/fishermate/fishermate/internal/fishermate/session"
)

// Choice is one quick-reply button.
type Choice struct {
	Emoji  string
	Labels map[string]string // language -> label without the emoji

	// Exactly one of the following applies.
	Goto     session.Nav   // move to this menu
	Template string        // reply with a fixed template
	Intent   intent.Intent // ask the provider for Intent with Query
	Query    string
}

// Label renders the button text in lang, falling back to English.
func (c Choice) Label(lang string) string {
	l, ok := c.Labels[lang]
	if !ok {
		l = c.Labels["en"]
	}
	return c.Emoji + " " + l
}

func back() Choice {
	return Choice{Emoji: "🔙", Labels: map[string]string{"en": "Back", "hi": "वापस", "ta": "பின்னே"}, Goto: session.NavMain}
}

// menus lists the quick replies valid in each menu position.
var menus = map[session.Nav][]Choice{
	session.NavMain: {
		{Emoji: "🌦️", Labels: map[string]string{"en": "Weather", "hi": "मौसम", "ta": "வானிலை"}, Goto: session.NavWeather},
		{Emoji: "⚖️", Labels: map[string]string{"en": "Legal Info", "hi": "कानूनी जानकारी", "ta": "சட்ட தகவல்"}, Goto: session.NavLegal},
		{Emoji: "🦺", Labels: map[string]string{"en": "Safety", "hi": "सुरक्षा", "ta": "பாதுகாப்பு"}, Goto: session.NavSafety},
		{Emoji: "🆘", Labels: map[string]string{"en": "Emergency", "hi": "आपातकाल", "ta": "அவசரம்"}, Template: "emergency"},
		{Emoji: "🏠", Labels: map[string]string{"en": "Main Menu", "hi": "मुख्य मेनू", "ta": "முதன்மை மெனு"}, Goto: session.NavMain},
	},
	session.NavWeather: {
		{Emoji: "🌤️", Labels: map[string]string{"en": "Current Weather", "hi": "वर्तमान मौसम", "ta": "தற்போதைய வானிலை"}, Intent: intent.Weather, Query: "current weather"},
		{Emoji: "📅", Labels: map[string]string{"en": "3-Day Forecast", "hi": "3-दिन का पूर्वानुमान", "ta": "3-நாள் முன்னறிவிப்பு"}, Intent: intent.Weather, Query: "weather forecast"},
		{Emoji: "🌊", Labels: map[string]string{"en": "Marine Conditions", "hi": "समुद्री स्थितियां", "ta": "கடல் நிலைமைகள்"}, Intent: intent.Weather, Query: "marine sea conditions"},
		{Emoji: "⚠️", Labels: map[string]string{"en": "Weather Alerts", "hi": "मौसम चेतावनी", "ta": "வானிலை எச்சரிக்கைகள்"}, Intent: intent.Weather, Query: "weather warning"},
		back(),
	},
	session.NavLegal: {
		{Emoji: "🚫", Labels: map[string]string{"en": "Seasonal Bans", "hi": "मौसमी प्रतिबंध", "ta": "பருவகால தடைகள்"}, Intent: intent.Legal, Query: "seasonal fishing ban"},
		{Emoji: "📋", Labels: map[string]string{"en": "License Info", "hi": "लाइसेंस जानकारी", "ta": "உரிமம் தகவல்"}, Intent: intent.Legal, Query: "fishing license"},
		{Emoji: "🦺", Labels: map[string]string{"en": "Safety Rules", "hi": "सुरक्षा नियम", "ta": "பாதுகாப்பு விதிகள்"}, Intent: intent.Legal, Query: "legal safety requirements"},
		{Emoji: "📞", Labels: map[string]string{"en": "Contact Dept", "hi": "विभाग संपर्क", "ta": "துறை தொடர்பு"}, Intent: intent.Legal, Query: "fisheries department contact"},
		back(),
	},
	session.NavSafety: {
		{Emoji: "✅", Labels: map[string]string{"en": "Pre-fishing Checklist", "hi": "मछली पकड़ने से पहले जांच", "ta": "மீன்பிடி முன் சரிபார்ப்பு"}, Intent: intent.Safety, Query: "safety checklist"},
		{Emoji: "⚓", Labels: map[string]string{"en": "At-Sea Safety", "hi": "समुद्र में सुरक्षा", "ta": "கடலில் பாதுகாப்பு"}, Intent: intent.Safety, Query: "safety at sea"},
		{Emoji: "🚨", Labels: map[string]string{"en": "Emergency Procedures", "hi": "आपातकालीन प्रक्रिया", "ta": "அவசர நடைமுறைகள்"}, Intent: intent.Safety, Query: "safety emergency procedure"},
		{Emoji: "🏥", Labels: map[string]string{"en": "First Aid", "hi": "प्राथमिक चिकित्सा", "ta": "முதலுதவி"}, Intent: intent.Safety, Query: "safety first aid"},
		back(),
	},
}

// menuTemplate is the catalog key shown on entering nav.
func menuTemplate(nav session.Nav) string {
	switch nav {
	case session.NavWeather:
		return "weather_menu"
	case session.NavLegal:
		return "legal_menu"
	case session.NavSafety:
		return "safety_menu"
	default:
		return "main_menu"
	}
}

// Choices returns the quick replies for nav labelled in lang.
func Choices(nav session.Nav, lang string) []string {
	opts := menus[nav]
	out := make([]string, 0, len(opts))
	for _, c := range opts {
		out = append(out, c.Label(lang))
	}
	return out
}

// stripVS drops emoji variation selectors so "🌦" and "🌦️" compare equal.
func stripVS(s string) string {
	return strings.ReplaceAll(s, "\ufe0f", "")
}

// match finds the quick reply text selects in nav. A reply matches when it
// starts with the button emoji or equals a label in any language.
func match(nav session.Nav, text string) (Choice, bool) {
	t := stripVS(strings.TrimSpace(text))
	if t == "" {
		return Choice{}, false
	}
	lower := strings.ToLower(t)
	for _, c := range menus[nav] {
		if strings.HasPrefix(t, stripVS(c.Emoji)) {
			return c, true
		}
		for _, l := range c.Labels {
			if lower == strings.ToLower(l) {
				return c, true
			}
		}
	}
	return Choice{}, false
}
