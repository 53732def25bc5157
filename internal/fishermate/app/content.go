package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fishermate/fishermate/internal/fishermate/content"
	"github.com/fishermate/fishermate/internal/fishermate/content/legal"
	"github.com/fishermate/fishermate/internal/fishermate/content/safety"
	"github.com/fishermate/fishermate/internal/fishermate/content/weather"
	"github.com/fishermate/fishermate/internal/fishermate/fallback"
	"github.com/fishermate/fishermate/internal/fishermate/language"
	"github.com/fishermate/fishermate/internal/fishermate/observability"
)

type weatherResponse struct {
	weather.Report
	Location  content.Location `json:"location"`
	Summary   string           `json:"summary"`
	Language  string           `json:"language"`
	Timestamp string           `json:"timestamp"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	lat, err1 := strconv.ParseFloat(q.Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(q.Get("lon"), 64)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "Location coordinates required")
		return
	}
	lang := s.deps.Resolver.Resolve(q.Get("language"), "")
	loc := content.Location{Lat: lat, Lon: lon}

	res := fallback.Try(ctx, s.deps.Wrapper, "weather", func(ctx context.Context) (weather.Report, error) {
		if s.deps.Weather == nil {
			return weather.Report{}, errors.New("weather provider not configured")
		}
		return s.deps.Weather.Report(ctx, loc)
	})
	if !res.OK() {
		writeError(w, http.StatusInternalServerError, "Weather service unavailable")
		return
	}
	summary := language.Translate(ctx, s.deps.Wrapper, s.deps.Translator, weather.FormatCurrent(res.Value), "en", lang)
	writeJSON(w, http.StatusOK, weatherResponse{
		Report:    res.Value,
		Location:  loc,
		Summary:   summary,
		Language:  lang,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

type faqResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Language string `json:"language"`
}

type unknownResponse struct {
	Error     string   `json:"error"`
	Available []string `json:"available"`
}

func (s *Server) handleLegal(w http.ResponseWriter, r *http.Request) {
	if s.deps.Legal == nil {
		writeError(w, http.StatusInternalServerError, "Legal information service unavailable")
		return
	}
	q := r.URL.Query()
	lang := s.deps.Resolver.Resolve(q.Get("language"), "")

	if question := strings.TrimSpace(q.Get("question")); question != "" {
		answer := language.Translate(r.Context(), s.deps.Wrapper, s.deps.Translator, legal.FAQ(question), "en", lang)
		writeJSON(w, http.StatusOK, faqResponse{Question: question, Answer: answer, Language: lang})
		return
	}

	state := strings.TrimSpace(q.Get("state"))
	if state == "" || strings.EqualFold(state, "general") {
		state = legal.DefaultState
	}
	info, err := s.deps.Legal.Info(state, lang)
	switch {
	case errors.Is(err, legal.ErrUnknownState):
		writeJSON(w, http.StatusNotFound, unknownResponse{Error: "Unknown state", Available: s.deps.Legal.States()})
	case err != nil:
		observability.WithTrace(r.Context(), s.logger).Error("legal info failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Legal information service unavailable")
	default:
		writeJSON(w, http.StatusOK, info)
	}
}

type emergencyResponse struct {
	Emergency string `json:"emergency"`
	Procedure string `json:"procedure"`
	Language  string `json:"language"`
}

func (s *Server) handleSafety(w http.ResponseWriter, r *http.Request) {
	if s.deps.Safety == nil {
		writeError(w, http.StatusInternalServerError, "Safety information service unavailable")
		return
	}
	q := r.URL.Query()
	lang := s.deps.Resolver.Resolve(q.Get("language"), "")

	if kind := strings.TrimSpace(q.Get("emergency")); kind != "" {
		text := language.Translate(r.Context(), s.deps.Wrapper, s.deps.Translator, s.deps.Safety.Emergency(kind), "en", lang)
		writeJSON(w, http.StatusOK, emergencyResponse{Emergency: kind, Procedure: text, Language: lang})
		return
	}

	category := strings.TrimSpace(q.Get("category"))
	if category == "" || strings.EqualFold(category, "general") {
		category = s.deps.Safety.Classify("")
	}
	info, err := s.deps.Safety.Info(category, lang)
	switch {
	case errors.Is(err, safety.ErrUnknownCategory):
		writeJSON(w, http.StatusNotFound, unknownResponse{Error: "Unknown category", Available: s.deps.Safety.Categories()})
	case err != nil:
		observability.WithTrace(r.Context(), s.logger).Error("safety info failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Safety information service unavailable")
	default:
		writeJSON(w, http.StatusOK, info)
	}
}

type languagesResponse struct {
	Default   string          `json:"default"`
	Languages []language.Info `json:"languages"`
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, languagesResponse{
		Default:   s.deps.Resolver.DefaultLanguage(),
		Languages: language.All(),
	})
}
