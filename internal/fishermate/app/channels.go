package app

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fishermate/fishermate/common/trace"
	"github.com/fishermate/fishermate/internal/fishermate/channel/sms"
	"github.com/fishermate/fishermate/internal/fishermate/observability"
)

// maxBroadcastNumbers caps one broadcast request.
const maxBroadcastNumbers = 1000

func (s *Server) statsHandler(src StatsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if src == nil {
			writeError(w, http.StatusServiceUnavailable, "Channel not configured")
			return
		}
		st, err := src.Stats(r.Context())
		if err != nil {
			observability.WithTrace(r.Context(), s.logger).Error("channel stats failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Statistics unavailable")
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

type weatherAlert struct {
	Level       string  `json:"level"`
	Description string  `json:"description"`
	WindKmh     float64 `json:"wind_speed"`
	Language    string  `json:"language"`
}

type broadcastRequest struct {
	Numbers []string      `json:"numbers"`
	Message string        `json:"message"`
	Weather *weatherAlert `json:"weather"`
}

func (s *Server) authorized(r *http.Request) bool {
	if s.deps.BroadcastToken == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(s.deps.BroadcastToken)) == 1
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := observability.WithTrace(ctx, s.logger)

	if s.deps.Broadcaster == nil {
		writeError(w, http.StatusServiceUnavailable, "SMS sending not configured")
		return
	}
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req broadcastRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if len(req.Numbers) == 0 || len(req.Numbers) > maxBroadcastNumbers {
		writeError(w, http.StatusBadRequest, "Between 1 and 1000 numbers required")
		return
	}
	message := strings.TrimSpace(req.Message)
	if req.Weather != nil {
		lang := s.deps.Resolver.Resolve(req.Weather.Language, "")
		message = sms.FormatAlert(lang, req.Weather.Level, req.Weather.Description, req.Weather.WindKmh)
	}
	if message == "" {
		writeError(w, http.StatusBadRequest, "Message required")
		return
	}

	res := s.deps.Broadcaster.Broadcast(ctx, req.Numbers, message)
	log.Info("broadcast finished", "total", res.Total, "success", len(res.Success), "failed", len(res.Failed))
	if s.deps.Exchanges != nil {
		if err := s.deps.Exchanges.RecordBroadcast(ctx, trace.FromContext(ctx), res.Total, len(res.Success), len(res.Failed)); err != nil {
			log.Warn("broadcast log write failed", "err", err)
		}
	}
	writeJSON(w, http.StatusOK, res)
}
