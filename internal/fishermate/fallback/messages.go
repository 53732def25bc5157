package fallback

// Kind selects which canned message a failed call degrades to.
type Kind string

const (
	KindGeneric  Kind = "generic"
	KindWeather  Kind = "weather"
	KindLegal    Kind = "legal"
	KindSafety   Kind = "safety"
	KindGeneral  Kind = "general"
	KindInternal Kind = "internal"
)

// defaultLanguage is used for any language without its own message.
const defaultLanguage = "en"

var messages = map[Kind]map[string]string{
	KindGeneric: {
		"en": "I'm sorry, I couldn't process your request. Please try again.",
		"hi": "क्षमा करें, मैं आपके अनुरोध को पूरा नहीं कर सका। कृपया फिर से प्रयास करें।",
		"ta": "மன்னிக்கவும், உங்கள் கோரிக்கையை செயல்படுத்த முடியவில்லை. மீண்டும் முயற்சிக்கவும்.",
		"te": "క్షమించండి, మీ అభ్యర్థనను ప్రాసెస్ చేయలేకపోయాను. దయచేసి మళ్లీ ప్రయత్నించండి.",
		"bn": "দুঃখিত, আপনার অনুরোধটি প্রক্রিয়া করা যায়নি। অনুগ্রহ করে আবার চেষ্টা করুন।",
	},
	KindWeather: {
		"en": "Weather information temporarily unavailable. Please try again later.",
		"hi": "मौसम की जानकारी अभी उपलब्ध नहीं है। कृपया बाद में फिर से प्रयास करें।",
		"ta": "வானிலை தகவல் தற்போது கிடைக்கவில்லை. பின்னர் மீண்டும் முயற்சிக்கவும்.",
		"te": "వాతావరణ సమాచారం ప్రస్తుతం అందుబాటులో లేదు. దయచేసి తర్వాత మళ్లీ ప్రయత్నించండి.",
		"bn": "আবহাওয়ার তথ্য এখন পাওয়া যাচ্ছে না। অনুগ্রহ করে পরে আবার চেষ্টা করুন।",
	},
	KindLegal: {
		"en": "Legal information service is temporarily unavailable. Please try again later.",
		"hi": "कानूनी जानकारी सेवा अभी उपलब्ध नहीं है। कृपया बाद में फिर से प्रयास करें।",
		"ta": "சட்ட தகவல் சேவை தற்போது கிடைக்கவில்லை. பின்னர் மீண்டும் முயற்சிக்கவும்.",
		"te": "చట్టపరమైన సమాచార సేవ ప్రస్తుతం అందుబాటులో లేదు. దయచేసి తర్వాత మళ్లీ ప్రయత్నించండి.",
		"bn": "আইনি তথ্য পরিষেবা এখন পাওয়া যাচ্ছে না। অনুগ্রহ করে পরে আবার চেষ্টা করুন।",
	},
	KindSafety: {
		"en": "Safety information service is temporarily unavailable. Please try again later. In an emergency call the Coast Guard on 1554.",
		"hi": "सुरक्षा जानकारी सेवा अभी उपलब्ध नहीं है। आपातकाल में कोस्ट गार्ड 1554 पर कॉल करें।",
		"ta": "பாதுகாப்பு தகவல் சேவை தற்போது கிடைக்கவில்லை. அவசரத்தில் கடலோர காவல்படை 1554 ஐ அழைக்கவும்.",
		"te": "భద్రతా సమాచార సేవ ప్రస్తుతం అందుబాటులో లేదు. అత్యవసర పరిస్థితిలో కోస్ట్ గార్డ్‌కు 1554 కు కాల్ చేయండి.",
		"bn": "নিরাপত্তা তথ্য পরিষেবা এখন পাওয়া যাচ্ছে না। জরুরি অবস্থায় কোস্ট গার্ডকে 1554 নম্বরে ফোন করুন।",
	},
	KindGeneral: {
		"en": "I'm here to help with your fishing-related questions. Please ask me about weather, safety, or fishing laws.",
		"hi": "मैं मछली पकड़ने से जुड़े आपके सवालों में मदद के लिए हूं। कृपया मौसम, सुरक्षा या मछली पकड़ने के नियमों के बारे में पूछें।",
		"ta": "மீன்பிடி தொடர்பான உங்கள் கேள்விகளுக்கு உதவ நான் இருக்கிறேன். வானிலை, பாதுகாப்பு அல்லது மீன்பிடி சட்டங்கள் பற்றி கேளுங்கள்.",
		"te": "మీ చేపల వేట ప్రశ్నలకు సహాయం చేయడానికి నేను ఇక్కడ ఉన్నాను. వాతావరణం, భద్రత లేదా చేపల వేట చట్టాల గురించి అడగండి.",
		"bn": "মাছ ধরা সংক্রান্ত প্রশ্নে সাহায্য করতে আমি আছি। আবহাওয়া, নিরাপত্তা বা মাছ ধরার আইন সম্পর্কে জিজ্ঞাসা করুন।",
	},
	KindInternal: {
		"en": "Something went wrong. Please try again.",
		"hi": "कुछ गलत हुआ है। कृपया फिर से कोशिश करें।",
		"ta": "ஏதோ தவறு நடந்தது. மீண்டும் முயற்சிக்கவும்.",
		"te": "ఏదో తప్పు జరిగింది. దయచేసి మళ్లీ ప్రయత్నించండి.",
		"bn": "কিছু একটা ভুল হয়েছে। অনুগ্রহ করে আবার চেষ্টা করুন।",
	},
}

// Message returns the canned text for kind in lang, falling back to English
// for unknown languages and to the generic apology for unknown kinds.
func Message(kind Kind, lang string) string {
	set, ok := messages[kind]
	if !ok {
		set = messages[KindGeneric]
	}
	if m, ok := set[lang]; ok {
		return m
	}
	return set[defaultLanguage]
}

// For returns an onFailure function bound to kind.
func For(kind Kind) func(lang string) string {
	return func(lang string) string { return Message(kind, lang) }
}

// Apology is the generic onFailure function.
func Apology(lang string) string { return Message(KindGeneric, lang) }
