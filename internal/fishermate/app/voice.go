package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fishermate/fishermate/internal/fishermate/observability"
	"github.com/fishermate/fishermate/internal/fishermate/voice"
)

const maxUpload = 32 << 20

type ttsRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type ttsResponse struct {
	AudioURL string `json:"audio_url"`
	Status   string `json:"status"`
}

type sttResponse struct {
	Text   string `json:"text"`
	Status string `json:"status"`
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text required")
		return
	}
	lang := s.deps.Resolver.Resolve(req.Language, req.Text)

	if s.deps.Voice == nil {
		s.voiceError(w, r, "Text-to-speech service error", voice.ErrNotConfigured)
		return
	}
	url, err := s.deps.Voice.TextToSpeech(r.Context(), req.Text, lang)
	if err != nil {
		s.voiceError(w, r, "Text-to-speech service error", err)
		return
	}
	writeJSON(w, http.StatusOK, ttsResponse{AudioURL: url, Status: "success"})
}

func (s *Server) handleSTT(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Audio file required")
		return
	}
	defer file.Close()
	lang := s.deps.Resolver.Resolve(r.FormValue("language"), "")

	if s.deps.Voice == nil {
		s.voiceError(w, r, "Speech-to-text service error", voice.ErrNotConfigured)
		return
	}
	text, err := s.deps.Voice.SpeechToText(r.Context(), file, header.Filename, lang)
	if err != nil {
		s.voiceError(w, r, "Speech-to-text service error", err)
		return
	}
	writeJSON(w, http.StatusOK, sttResponse{Text: text, Status: "success"})
}

func (s *Server) voiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	observability.WithTrace(r.Context(), s.logger).Error(msg, "err", err)
	if errors.Is(err, voice.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, msg)
		return
	}
	writeError(w, http.StatusInternalServerError, msg)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["file"]
	if s.deps.Voice == nil || name != filepath.Base(name) || !strings.HasSuffix(name, ".mp3") {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, filepath.Join(s.deps.Voice.Dir(), name))
}
