package app

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fishermate/fishermate/internal/fishermate/content"
	"github.com/fishermate/fishermate/internal/fishermate/fallback"
	"github.com/fishermate/fishermate/internal/fishermate/observability"
)

// maxChatBody bounds /api/chat bodies; voice notes arrive inline.
const maxChatBody = 10 << 20

//go:embed chat.schema.json
var chatSchemaSource string

var chatSchema = jsonschema.MustCompileString("chat.schema.json", chatSchemaSource)

type chatLocation struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type chatRequest struct {
	Message       string        `json:"message"`
	Language      string        `json:"language"`
	Location      *chatLocation `json:"location"`
	Type          string        `json:"type"`
	AudioData     string        `json:"audio_data"`
	VoiceResponse bool          `json:"voice_response"`
}

func (r chatRequest) location() *content.Location {
	if r.Location == nil || r.Location.Lat == nil || r.Location.Lon == nil {
		return nil
	}
	return &content.Location{Lat: *r.Location.Lat, Lon: *r.Location.Lon}
}

type chatResponse struct {
	Text     string       `json:"text"`
	Type     content.Type `json:"type"`
	Language string       `json:"language"`
	AudioURL string       `json:"audio_url,omitempty"`
}

// decodeChat reads and validates a chat body.
func decodeChat(body io.Reader) (chatRequest, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return chatRequest{}, err
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return chatRequest{}, err
	}
	if err := chatSchema.Validate(doc); err != nil {
		return chatRequest{}, err
	}
	var req chatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return chatRequest{}, err
	}
	return req, nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := observability.WithTrace(ctx, s.logger)
	defer func() {
		if p := recover(); p != nil {
			log.Error("chat handler panicked", "panic", p)
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Error:   "Internal server error",
				Message: fallback.Message(fallback.KindInternal, "hi"),
			})
		}
	}()

	req, err := decodeChat(http.MaxBytesReader(w, r.Body, maxChatBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	lang := s.deps.Resolver.Resolve(req.Language, req.Message)
	message := req.Message
	if req.Type == "voice" {
		text, err := s.transcribeInline(ctx, req.AudioData, lang)
		if err != nil {
			resp := fallback.Failure(lang, fallback.Apology)
			writeJSON(w, http.StatusOK, chatResponse{Text: resp.Text, Type: resp.Type, Language: lang})
			return
		}
		message = text
	}

	i, resp := s.deps.Router.Route(ctx, content.Query{Message: message, Language: lang, Location: req.location()})
	out := chatResponse{Text: resp.Text, Type: resp.Type, Language: lang}

	if req.VoiceResponse && s.deps.Voice != nil {
		audio := fallback.Try(ctx, s.deps.Wrapper, "tts", func(ctx context.Context) (string, error) {
			return s.deps.Voice.TextToSpeech(ctx, resp.Text, lang)
		})
		out.AudioURL = audio.Or("")
	}
	log.Info("chat answered", "intent", string(i), "language", lang, "type", string(resp.Type))
	writeJSON(w, http.StatusOK, out)
}

var errNoVoice = errors.New("voice input unavailable")

// transcribeInline decodes base64 audio and runs it through STT under the
// fallback wrapper.
func (s *Server) transcribeInline(ctx context.Context, data, lang string) (string, error) {
	if s.deps.Voice == nil {
		return "", errNoVoice
	}
	// Browsers send data URLs.
	if _, after, ok := strings.Cut(data, ";base64,"); ok {
		data = after
	}
	audio, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", err
	}
	res := fallback.Try(ctx, s.deps.Wrapper, "stt", func(ctx context.Context) (string, error) {
		return s.deps.Voice.SpeechToText(ctx, bytes.NewReader(audio), "voice.webm", lang)
	})
	return res.Value, res.Err
}
