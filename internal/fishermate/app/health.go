package app

import (
	"net/http"
	"time"

	"github.com/fishermate/fishermate/common/version"
)

// ServiceName identifies the service in the root health payload.
const ServiceName = "FisherMate.AI Backend"

type rootResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

type statusResponse struct {
	Status     string         `json:"status"`
	Version    string         `json:"version"`
	Commit     string         `json:"commit"`
	BuildTime  string         `json:"build_time"`
	StartedAt  time.Time      `json:"started_at"`
	UptimeSecs float64        `json:"uptime_seconds"`
	Sessions   map[string]int `json:"sessions"`
	// Exchanges covers the last 24 hours when the exchange log is enabled.
	Exchanges any `json:"exchanges_24h,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Status:    "healthy",
		Service:   ServiceName,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.Version,
		Commit:  version.GitCommit,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessions := map[string]int{}
	for name, src := range map[string]StatsSource{"relay": s.deps.RelayStats, "sms": s.deps.SMSStats} {
		if src == nil {
			continue
		}
		if st, err := src.Stats(ctx); err == nil {
			sessions[name] = st.Total
		}
	}

	resp := statusResponse{
		Status:     "ok",
		Version:    version.Version,
		Commit:     version.GitCommit,
		BuildTime:  version.BuildTime,
		StartedAt:  s.startedAt,
		UptimeSecs: time.Since(s.startedAt).Seconds(),
		Sessions:   sessions,
	}
	if s.deps.Exchanges != nil {
		if sum, err := s.deps.Exchanges.Summarize(ctx, time.Now().Add(-24*time.Hour)); err == nil {
			resp.Exchanges = sum
		} else {
			s.logger.Warn("exchange summary failed", "err", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
