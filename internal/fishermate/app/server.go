package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fishermate/fishermate/common/trace"
	"github.com/fishermate/fishermate/internal/fishermate/channel/twilio"
	"github.com/fishermate/fishermate/internal/fishermate/content/legal"
	"github.com/fishermate/fishermate/internal/fishermate/content/safety"
	"github.com/fishermate/fishermate/internal/fishermate/content/weather"
	"github.com/fishermate/fishermate/internal/fishermate/fallback"
	"github.com/fishermate/fishermate/internal/fishermate/intent"
	"github.com/fishermate/fishermate/internal/fishermate/language"
	"github.com/fishermate/fishermate/internal/fishermate/observability"
	"github.com/fishermate/fishermate/internal/fishermate/session"
	"github.com/fishermate/fishermate/internal/fishermate/store"
	"github.com/fishermate/fishermate/internal/fishermate/voice"
)

// StatsSource reports a channel's session statistics.
type StatsSource interface {
	Stats(ctx context.Context) (session.Stats, error)
}

// ExchangeLog summarizes logged exchanges and records broadcasts.
type ExchangeLog interface {
	Summarize(ctx context.Context, since time.Time) (store.Summary, error)
	RecordBroadcast(ctx context.Context, traceID string, total, succeeded, failed int) error
}

// Deps are the collaborators behind the HTTP API. Nil optional fields
// disable the routes that need them.
type Deps struct {
	Router     *intent.Router
	Resolver   *language.Resolver
	Wrapper    *fallback.Wrapper
	Translator language.Translator

	Weather *weather.Provider
	Legal   *legal.Provider
	Safety  *safety.Provider
	Voice   *voice.Service // optional

	WhatsApp   http.Handler
	SMS        http.Handler
	RelayStats StatsSource
	SMSStats   StatsSource

	Broadcaster    *twilio.Broadcaster // optional
	BroadcastToken string
	Exchanges      ExchangeLog // optional

	Logger *slog.Logger
}

// Server is the FisherMate HTTP API.
type Server struct {
	deps      Deps
	logger    *slog.Logger
	router    *mux.Router
	startedAt time.Time
	server    *http.Server
}

// NewServer builds the router. It does not listen.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Wrapper == nil {
		deps.Wrapper = fallback.New(fallback.DefaultTimeout, deps.Logger)
	}
	if deps.Resolver == nil {
		deps.Resolver = language.NewResolver(language.Default, nil)
	}
	s := &Server{
		deps:      deps,
		logger:    deps.Logger,
		router:    mux.NewRouter(),
		startedAt: time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.traceMiddleware)

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	api.HandleFunc("/weather", s.handleWeather).Methods(http.MethodGet)
	api.HandleFunc("/legal", s.handleLegal).Methods(http.MethodGet)
	api.HandleFunc("/safety", s.handleSafety).Methods(http.MethodGet)
	api.HandleFunc("/languages", s.handleLanguages).Methods(http.MethodGet)
	api.HandleFunc("/voice/tts", s.handleTTS).Methods(http.MethodPost)
	api.HandleFunc("/voice/stt", s.handleSTT).Methods(http.MethodPost)

	if s.deps.WhatsApp != nil {
		api.Handle("/whatsapp", s.deps.WhatsApp).Methods(http.MethodPost)
	}
	if s.deps.SMS != nil {
		api.Handle("/sms", s.deps.SMS).Methods(http.MethodPost)
	}
	api.HandleFunc("/whatsapp/stats", s.statsHandler(s.deps.RelayStats)).Methods(http.MethodGet)
	api.HandleFunc("/sms/stats", s.statsHandler(s.deps.SMSStats)).Methods(http.MethodGet)
	api.HandleFunc("/sms/broadcast", s.handleBroadcast).Methods(http.MethodPost)

	r.HandleFunc(voice.URLPrefix+"{file}", s.handleAudio).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// traceMiddleware attaches a trace ID to every request, reusing the
// caller's X-Trace-Id when present.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := r.Header.Get(trace.HeaderName)
		if id == "" {
			id = trace.GenerateID()
		}
		ctx = trace.WithTraceID(ctx, id)
		w.Header().Set(trace.HeaderName, id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		observability.WithTrace(ctx, s.logger).Debug("request served",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// Start listens on addr in the background and shuts down when ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http server: listen %s: %w", addr, err)
	}

	s.server = &http.Server{
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("http server shutdown error", "err", err)
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode JSON response", "err", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
