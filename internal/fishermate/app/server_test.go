package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/fishermate/fishermate/internal/fishermate/app"
	"github.com/fishermate/fishermate/internal/fishermate/channel/twilio"
	"github.com/fishermate/fishermate/internal/fishermate/content/legal"
	"github.com/fishermate/fishermate/internal/fishermate/content/safety"
	"github.com/fishermate/fishermate/internal/fishermate/content/weather"
	"github.com/fishermate/fishermate/internal/fishermate/fallback"
	"github.com/fishermate/fishermate/internal/fishermate/intent"
	"github.com/fishermate/fishermate/internal/fishermate/language"
	"github.com/fishermate/fishermate/internal/fishermate/session"
	"github.com/fishermate/fishermate/internal/fishermate/store"
	"github.com/fishermate/fishermate/internal/fishermate/voice"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type fakeWeather struct {
	err error
}

func (f *fakeWeather) Current(_ context.Context, lat, lon float64) (weather.Current, error) {
	if f.err != nil {
		return weather.Current{}, f.err
	}
	return weather.Current{Place: "Chennai", Lat: lat, Lon: lon, Temperature: 30, WindKmh: 12, Visibility: 10, Description: "clear sky"}, nil
}

func (f *fakeWeather) Forecast(context.Context, float64, float64, int) (weather.Forecast, error) {
	return weather.Forecast{Place: "Chennai"}, f.err
}

type fakeSpeech struct {
	heard string
}

func (f *fakeSpeech) Synthesize(context.Context, string, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("ID3 fake mp3")), nil
}

func (f *fakeSpeech) Transcribe(_ context.Context, audio io.Reader, _, _ string) (string, error) {
	b, _ := io.ReadAll(audio)
	if len(b) == 0 {
		return "", errors.New("no audio")
	}
	return f.heard, nil
}

type fixedStats struct{ st session.Stats }

func (f fixedStats) Stats(context.Context) (session.Stats, error) { return f.st, nil }

type stubAPI struct{ sent []string }

func (s *stubAPI) CreateMessage(p *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	s.sent = append(s.sent, *p.To)
	sid := "SM1"
	return &openapi.ApiV2010Message{Sid: &sid}, nil
}

type fixture struct {
	server  *app.Server
	weather *fakeWeather
	api     *stubAPI
}

func newFixture(t *testing.T, mutate ...func(*app.Deps)) *fixture {
	t.Helper()
	f := &fixture{weather: &fakeWeather{}, api: &stubAPI{}}

	wrapper := fallback.New(time.Second, nil)
	weatherP := weather.NewProvider(f.weather)
	legalP, err := legal.NewProvider(legal.WithClock(func() time.Time {
		return time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatal(err)
	}
	safetyP, err := safety.NewProvider()
	if err != nil {
		t.Fatal(err)
	}
	voiceSvc, err := voice.NewService(&fakeSpeech{heard: "weather forecast"}, t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	db, err := store.Open(t.TempDir() + "/log.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	deps := app.Deps{
		Router: intent.NewRouter(intent.DefaultKeywordTable(),
			intent.WithFallback(wrapper),
			intent.WithProvider(intent.Weather, weatherP),
			intent.WithProvider(intent.Legal, legalP),
			intent.WithProvider(intent.Safety, safetyP),
		),
		Resolver:       language.NewResolver("en", nil),
		Wrapper:        wrapper,
		Weather:        weatherP,
		Legal:          legalP,
		Safety:         safetyP,
		Voice:          voiceSvc,
		RelayStats:     fixedStats{session.Stats{Total: 3, Active: 1}},
		SMSStats:       fixedStats{session.Stats{Total: 5}},
		Broadcaster:    twilio.NewBroadcaster(twilio.NewSender(f.api, "+14155550100", 160, nil), 1000),
		BroadcastToken: "s3cret",
		Exchanges:      db,
	}
	for _, m := range mutate {
		m(&deps)
	}
	f.server = app.NewServer(deps)
	return f
}

func (f *fixture) do(t *testing.T, method, target string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return out
}

var jsonHeader = http.Header{"Content-Type": {"application/json"}}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func TestRootHealthAndStatus(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/", nil, nil)
	resp := decode(t, w)
	if resp["status"] != "healthy" || resp["service"] != app.ServiceName || resp["timestamp"] == "" {
		t.Errorf("root: %v", resp)
	}
	if w.Header().Get("X-Trace-Id") == "" {
		t.Error("trace header missing")
	}

	if resp := decode(t, f.do(t, http.MethodGet, "/health", nil, nil)); resp["status"] != "ok" {
		t.Errorf("health: %v", resp)
	}

	resp = decode(t, f.do(t, http.MethodGet, "/status", nil, nil))
	sessions, _ := resp["sessions"].(map[string]any)
	if sessions["relay"] != float64(3) || sessions["sms"] != float64(5) {
		t.Errorf("status sessions: %v", resp["sessions"])
	}
	if _, ok := resp["exchanges_24h"]; !ok {
		t.Error("exchange summary missing")
	}
}

// ---------------------------------------------------------------------------
// Chat
// ---------------------------------------------------------------------------

func TestChat_RoutesByIntent(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		body string
		typ  string
	}{
		{`{"message":"weather today","language":"en","location":{"lat":13.08,"lon":80.27}}`, "weather"},
		{`{"message":"fishing ban license","language":"en"}`, "legal"},
		{`{"message":"life jacket safety","language":"en"}`, "safety"},
	}
	for _, tt := range tests {
		w := f.do(t, http.MethodPost, "/api/chat", strings.NewReader(tt.body), jsonHeader)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status %d", tt.body, w.Code)
		}
		resp := decode(t, w)
		if resp["type"] != tt.typ || resp["language"] != "en" || resp["text"] == "" {
			t.Errorf("%s: got %v", tt.body, resp)
		}
		if _, ok := resp["audio_url"]; ok {
			t.Errorf("%s: unexpected audio", tt.body)
		}
	}
}

func TestChat_GeneralWithoutModelDegrades(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/chat", strings.NewReader(`{"message":"tell me a story","language":"ta"}`), jsonHeader)
	resp := decode(t, w)
	if w.Code != http.StatusOK || resp["type"] != "error" || resp["text"] != fallback.Message(fallback.KindGeneral, "ta") {
		t.Errorf("got %d %v", w.Code, resp)
	}
}

func TestChat_WeatherProviderDown(t *testing.T) {
	f := newFixture(t)
	f.weather.err = errors.New("503 from upstream")
	resp := decode(t, f.do(t, http.MethodPost, "/api/chat", strings.NewReader(`{"message":"आज मौसम कैसा है","language":"hi"}`), jsonHeader))
	if resp["text"] != fallback.Message(fallback.KindWeather, "hi") || resp["language"] != "hi" {
		t.Errorf("got %v", resp)
	}
}

func TestChat_InvalidBodies(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{
		`not json`,
		`{"message": 5}`,
		`{"type":"voice","message":"x"}`,
		`{"message":"x","location":{"lat":123,"lon":80}}`,
		`{"language":"en"}`,
	} {
		if w := f.do(t, http.MethodPost, "/api/chat", strings.NewReader(body), jsonHeader); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", body, w.Code)
		}
	}
}

func TestChat_InternalFault(t *testing.T) {
	f := newFixture(t, func(d *app.Deps) { d.Router = nil })
	w := f.do(t, http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hello"}`), jsonHeader)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", w.Code)
	}
	resp := decode(t, w)
	if resp["error"] != "Internal server error" || resp["message"] != fallback.Message(fallback.KindInternal, "hi") {
		t.Errorf("got %v", resp)
	}
}

func TestChat_VoiceInAndOut(t *testing.T) {
	f := newFixture(t)
	body := `{"type":"voice","language":"en","voice_response":true,"audio_data":"data:audio/webm;base64,` +
		"AAECAwQF" + `"}`
	w := f.do(t, http.MethodPost, "/api/chat", strings.NewReader(body), jsonHeader)
	resp := decode(t, w)
	if resp["type"] != "weather" {
		t.Fatalf("transcript should route to weather: %v", resp)
	}
	url, _ := resp["audio_url"].(string)
	if !strings.HasPrefix(url, voice.URLPrefix) {
		t.Fatalf("audio_url: %q", url)
	}

	audio := f.do(t, http.MethodGet, url, nil, nil)
	if audio.Code != http.StatusOK || !strings.HasPrefix(audio.Body.String(), "ID3") {
		t.Errorf("audio fetch: %d %q", audio.Code, audio.Body.String())
	}
	if w := f.do(t, http.MethodGet, "/audio/notes.txt", nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("non-audio file: got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// Content endpoints
// ---------------------------------------------------------------------------

func TestWeatherEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/weather?lat=13.08", nil, nil)
	if w.Code != http.StatusBadRequest || decode(t, w)["error"] != "Location coordinates required" {
		t.Errorf("missing lon: %d", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/weather?lat=13.08&lon=80.27&language=en", nil, nil)
	resp := decode(t, w)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if _, ok := resp["safety_assessment"]; !ok {
		t.Errorf("assessment missing: %v", resp)
	}
	if !strings.Contains(resp["summary"].(string), "Chennai") {
		t.Errorf("summary: %v", resp["summary"])
	}

	f.weather.err = errors.New("timeout")
	w = f.do(t, http.MethodGet, "/api/weather?lat=13.08&lon=80.27", nil, nil)
	if w.Code != http.StatusInternalServerError || decode(t, w)["error"] != "Weather service unavailable" {
		t.Errorf("provider down: %d", w.Code)
	}
}

func TestLegalEndpoint(t *testing.T) {
	f := newFixture(t)

	resp := decode(t, f.do(t, http.MethodGet, "/api/legal", nil, nil))
	if resp["state"] != legal.DefaultState || resp["language"] != "en" {
		t.Errorf("default: %v", resp)
	}

	resp = decode(t, f.do(t, http.MethodGet, "/api/legal?state=kerala&language=ml", nil, nil))
	if resp["state"] != "Kerala" || resp["language"] != "ml" {
		t.Errorf("kerala: %v", resp)
	}

	w := f.do(t, http.MethodGet, "/api/legal?state=Atlantis", nil, nil)
	resp = decode(t, w)
	if w.Code != http.StatusNotFound || len(resp["available"].([]any)) != 9 {
		t.Errorf("unknown state: %d %v", w.Code, resp)
	}

	resp = decode(t, f.do(t, http.MethodGet, "/api/legal?question=boat+registration", nil, nil))
	if !strings.Contains(resp["answer"].(string), "register your fishing boat") {
		t.Errorf("faq: %v", resp)
	}
}

func TestSafetyEndpoint(t *testing.T) {
	f := newFixture(t)

	resp := decode(t, f.do(t, http.MethodGet, "/api/safety", nil, nil))
	if resp["category"] != "pre_fishing_checklist" {
		t.Errorf("default: %v", resp)
	}
	resp = decode(t, f.do(t, http.MethodGet, "/api/safety?category=first_aid_basics", nil, nil))
	if resp["category"] != "first_aid_basics" {
		t.Errorf("first aid: %v", resp)
	}

	w := f.do(t, http.MethodGet, "/api/safety?category=juggling", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown category: %d", w.Code)
	}

	resp = decode(t, f.do(t, http.MethodGet, "/api/safety?emergency=fire", nil, nil))
	if !strings.Contains(resp["procedure"].(string), "1.") {
		t.Errorf("procedure: %v", resp)
	}
}

func TestLanguagesEndpoint(t *testing.T) {
	f := newFixture(t)
	resp := decode(t, f.do(t, http.MethodGet, "/api/languages", nil, nil))
	langs := resp["languages"].([]any)
	if resp["default"] != "en" || len(langs) != len(language.Supported()) {
		t.Errorf("got default %v and %d languages", resp["default"], len(langs))
	}
}

// ---------------------------------------------------------------------------
// Voice
// ---------------------------------------------------------------------------

func TestTTSAndSTT(t *testing.T) {
	f := newFixture(t)

	resp := decode(t, f.do(t, http.MethodPost, "/api/voice/tts", strings.NewReader(`{"text":"Stay safe","language":"ta"}`), jsonHeader))
	if resp["status"] != "success" || !strings.HasSuffix(resp["audio_url"].(string), "_ta.mp3") {
		t.Errorf("tts: %v", resp)
	}

	if w := f.do(t, http.MethodPost, "/api/voice/stt", strings.NewReader(""), nil); w.Code != http.StatusBadRequest {
		t.Errorf("stt without file: %d", w.Code)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("audio", "note.ogg")
	part.Write([]byte("OggS"))
	mw.WriteField("language", "hi")
	mw.Close()
	w := f.do(t, http.MethodPost, "/api/voice/stt", &buf, http.Header{"Content-Type": {mw.FormDataContentType()}})
	resp = decode(t, w)
	if w.Code != http.StatusOK || resp["text"] != "weather forecast" {
		t.Errorf("stt: %d %v", w.Code, resp)
	}
}

func TestTTS_NotConfigured(t *testing.T) {
	f := newFixture(t, func(d *app.Deps) { d.Voice = nil })
	w := f.do(t, http.MethodPost, "/api/voice/tts", strings.NewReader(`{"text":"hi"}`), jsonHeader)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// Channels
// ---------------------------------------------------------------------------

func TestStatsEndpoints(t *testing.T) {
	f := newFixture(t)
	resp := decode(t, f.do(t, http.MethodGet, "/api/whatsapp/stats", nil, nil))
	if resp["total_sessions"] != float64(3) || resp["active_sessions"] != float64(1) {
		t.Errorf("relay stats: %v", resp)
	}
	resp = decode(t, f.do(t, http.MethodGet, "/api/sms/stats", nil, nil))
	if resp["total_sessions"] != float64(5) {
		t.Errorf("sms stats: %v", resp)
	}
}

func TestBroadcast(t *testing.T) {
	f := newFixture(t)
	body := `{"numbers":["+919000000001","123"],"message":"Cyclone warning: stay ashore"}`

	if w := f.do(t, http.MethodPost, "/api/sms/broadcast", strings.NewReader(body), jsonHeader); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d", w.Code)
	}
	wrong := http.Header{"Authorization": {"Bearer nope"}}
	if w := f.do(t, http.MethodPost, "/api/sms/broadcast", strings.NewReader(body), wrong); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: %d", w.Code)
	}

	auth := http.Header{"Authorization": {"Bearer s3cret"}}
	w := f.do(t, http.MethodPost, "/api/sms/broadcast", strings.NewReader(body), auth)
	var res twilio.BroadcastResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 || len(res.Success) != 1 || len(res.Failed) != 1 {
		t.Errorf("result: %+v", res)
	}

	alert := `{"numbers":["+919000000002"],"weather":{"level":"dangerous","description":"Cyclone","wind_speed":65}}`
	if w := f.do(t, http.MethodPost, "/api/sms/broadcast", strings.NewReader(alert), auth); w.Code != http.StatusOK {
		t.Errorf("alert: %d", w.Code)
	}
	if len(f.api.sent) != 2 {
		t.Errorf("sent: %v", f.api.sent)
	}

	if w := f.do(t, http.MethodPost, "/api/sms/broadcast", strings.NewReader(`{"numbers":[]}`), auth); w.Code != http.StatusBadRequest {
		t.Errorf("empty: %d", w.Code)
	}
}
