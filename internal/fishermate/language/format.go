package language

import (
	"strconv"
	"strings"
	"time"
)

// Phrase keys understood by Phrase.
const (
	PhraseGreeting       = "greeting"
	PhraseWeatherAlert   = "weather_alert"
	PhraseSafetyReminder = "safety_reminder"
)

var phrases = map[string]map[string]string{
	PhraseGreeting: {
		"en": "Hello! I am FisherMate, your fishing assistant.",
		"hi": "नमस्ते! मैं फिशरमेट हूं, आपका मछली पकड़ने का सहायक।",
		"ta": "வணக்கம்! நான் ஃபிஷர்மேட், உங்கள் மீன்பிடித் துணை.",
		"te": "నమస్తే! నేను ఫిషర్మేట్, మీ చేపల వేట సహాయకుడు.",
		"ml": "നമസ്തേ! ഞാൻ ഫിഷർമേറ്റ്, നിങ്ങളുടെ മത്സ്യബന്ധന സഹായി.",
		"kn": "ನಮಸ್ತೆ! ನಾನು ಫಿಶರ್ಮೇಟ್, ನಿಮ್ಮ ಮೀನುಗಾರಿಕೆ ಸಹಾಯಕ.",
		"bn": "নমস্কার! আমি ফিশারমেট, আপনার মাছ ধরার সহায়ক।",
		"gu": "નમસ્તે! હું ફિશરમેટ છું, તમારો માછલી પકડવાનો સહાયક.",
		"mr": "नमस्कार! मी फिशरमेट आहे, तुमचा मासेमारी सहाय्यक.",
		"or": "ନମସ୍କାର! ମୁଁ ଫିସରମେଟ, ତୁମର ମାଛ ଧରିବା ସହାୟକ।",
		"pa": "ਸਤ ਸ੍ਰੀ ਅਕਾਲ! ਮੈਂ ਫਿਸ਼ਰਮੇਟ ਹਾਂ, ਤੁਹਾਡਾ ਮੱਛੀ ਫੜਨ ਦਾ ਸਹਾਇਕ।",
		"ur": "السلام علیکم! میں فشرمیٹ ہوں، آپ کا ماہی گیری کا مددگار۔",
	},
	PhraseWeatherAlert: {
		"en": "Weather Alert: Strong winds expected. Please stay safe.",
		"hi": "मौसम चेतावनी: तेज हवाओं की संभावना। कृपया सुरक्षित रहें।",
		"ta": "வானிலை எச்சரிக்கை: பலமான காற்று எதிர்பார்க்கப்படுகிறது. பாதுகாப்பாக இருங்கள்.",
		"te": "వాతావరణ హెచ్చరిక: బలమైన గాలులు అనుకున్నాయి. దయచేసి సురక్షితంగా ఉండండి.",
		"ml": "കാലാവസ്ഥാ മുന്നറിയിപ്പ്: ശക്തമായ കാറ്റ് പ്രതീക്ഷിക്കുന്നു. ദയവായി സുരക്ഷിതരായിരിക്കുക.",
		"kn": "ಹವಾಮಾನ ಎಚ್ಚರಿಕೆ: ಬಲವಾದ ಗಾಳಿ ನಿರೀಕ್ಷೆ. ದಯವಿಟ್ಟು ಸುರಕ್ಷಿತವಾಗಿರಿ.",
		"bn": "আবহাওয়া সতর্কতা: প্রবল বাতাস প্রত্যাশিত। অনুগ্রহ করে নিরাপদ থাকুন।",
		"gu": "હવામાન ચેતવણી: તીવ્ર પવનની અપેક્ષા. કૃપા કરીને સુરક્ષિત રહો.",
		"mr": "हवामान सावधानता: जोरदार वारे अपेक्षित. कृपया सुरक्षित रहा.",
		"or": "ପାଣିପାଗ ଚେତାବନୀ: ଶକ୍ତିଶାଳୀ ପବନ ଆଶା କରାଯାଇଛି। ଦୟାକରି ସୁରକ୍ଷିତ ରୁହନ୍ତୁ।",
		"pa": "ਮੌਸਮ ਚੇਤਾਵਨੀ: ਤੇਜ਼ ਹਵਾਵਾਂ ਦੀ ਸੰਭਾਵਨਾ। ਕਿਰਪਾ ਕਰਕੇ ਸੁਰੱਖਿਅਤ ਰਹੋ।",
		"ur": "موسمی انتباہ: تیز ہوائیں متوقع ہیں۔ براہ کرم محفوظ رہیں۔",
	},
	PhraseSafetyReminder: {
		"en": "Safety Reminder: Always wear life jackets while fishing.",
		"hi": "सुरक्षा अनुस्मारक: मछली पकड़ते समय हमेशा लाइफ जैकेट पहनें।",
		"ta": "பாதுகாப்பு நினைவூட்டல்: மீன்பிடிக்கும் போது எப்போதும் உயிர்காக்கும் ஜாக்கெட் அணியுங்கள்.",
		"te": "భద్రతా గుర్తింపు: చేపలు పట్టేటప్పుడు ఎల్లప్పుడూ లైఫ్ జాకెట్‌లు ధరించండి.",
		"ml": "സുരക്ഷാ ഓർമ്മപ്പെടുത്തൽ: മത്സ്യബന്ധനത്തിന് പോകുമ്പോൾ എപ്പോഴും ലൈഫ് ജാക്കറ്റ് ധരിക്കുക.",
		"kn": "ಸುರಕ್ಷತಾ ಜ್ಞಾಪನೆ: ಮೀನುಗಾರಿಕೆ ಮಾಡುವಾಗ ಯಾವಾಗಲೂ ಲೈಫ್ ಜಾಕೆಟ್ ಧರಿಸಿ.",
		"bn": "নিরাপত্তা স্মরণীয়: মাছ ধরার সময় সর্বদা লাইফ জ্যাকেট পরুন।",
		"gu": "સુરક્ષા યાદ: માછલી પકડતી વખતે હંમેશા લાઈફ જેકેટ પહેરો.",
		"mr": "सुरक्षा आठवण: मासेमारी करताना नेहमी लाइफ जॅकेट घाला.",
		"or": "ସୁରକ୍ଷା ସ୍ମାରକ: ମାଛ ଧରିବା ସମୟରେ ସର୍ବଦା ଲାଇଫ୍ ଜ୍ୟାକେଟ୍ ପିନ୍ଧନ୍ତୁ।",
		"pa": "ਸੁਰੱਖਿਆ ਯਾਦ: ਮੱਛੀ ਫੜਦੇ ਸਮੇਂ ਹਮੇਸ਼ਾ ਲਾਇਫ ਜੈਕਟ ਪਹਿਨੋ।",
		"ur": "حفاظتی یاد دہانی: مچھلی پکڑتے وقت ہمیشہ لائف جیکٹ پہنیں۔",
	},
}

// Phrase returns a stock phrase in lang, falling back to English. Unknown
// keys yield "".
func Phrase(key, lang string) string {
	set := phrases[key]
	if p, ok := set[lang]; ok {
		return p
	}
	return set[Default]
}

// indian lists the languages that use lakh/crore and a 12-hour clock.
var indian = map[string]bool{
	"hi": true, "ta": true, "te": true, "ml": true, "kn": true,
	"bn": true, "gu": true, "mr": true, "or": true, "pa": true,
}

// FormatNumber renders n for lang. Indian languages use lakh and crore
// above 1e5; everything else is comma grouped.
func FormatNumber(n int64, lang string) string {
	if indian[lang] {
		switch {
		case n >= 10_000_000:
			return strconv.FormatFloat(float64(n)/10_000_000, 'f', 1, 64) + " " + unit("crore", lang)
		case n >= 100_000:
			return strconv.FormatFloat(float64(n)/100_000, 'f', 1, 64) + " " + unit("lakh", lang)
		}
	}
	return groupThousands(n)
}

func unit(word, lang string) string {
	if lang != "hi" {
		return word
	}
	if word == "crore" {
		return "करोड़"
	}
	return "लाख"
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatTime renders the clock time of t: 12-hour for Indian languages,
// 24-hour otherwise.
func FormatTime(t time.Time, lang string) string {
	if indian[lang] {
		return t.Format("03:04 PM")
	}
	return t.Format("15:04")
}

var fishingTerms = map[string][][2]string{
	"hi": {
		{"trawling", "ट्रॉलिंग"}, {"net", "जाल"}, {"boat", "नाव"}, {"catch", "पकड़"},
		{"fish", "मछली"}, {"sea", "समुद्र"}, {"harbor", "बंदरगाह"}, {"tide", "ज्वार"},
		{"wave", "लहर"}, {"storm", "तूफान"},
	},
	"ta": {
		{"trawling", "இழுவலை"}, {"net", "வலை"}, {"boat", "படகு"}, {"catch", "பிடிப்பு"},
		{"fish", "மீன்"}, {"sea", "கடல்"}, {"harbor", "துறைமுகம்"}, {"tide", "அலை"},
		{"wave", "அலை"}, {"storm", "புயல்"},
	},
}

// LocalizeTerms replaces English fishing vocabulary in text with the
// local term for lang. Languages without a glossary return text as is.
func LocalizeTerms(text, lang string) string {
	terms, ok := fishingTerms[lang]
	if !ok {
		return text
	}
	pairs := make([]string, 0, 2*len(terms))
	for _, t := range terms {
		pairs = append(pairs, t[0], t[1])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
