package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fishermate/fishermate/common/environment"
	"github.com/fishermate/fishermate/common/version"
	"github.com/fishermate/fishermate/internal/fishermate/app"
	"github.com/fishermate/fishermate/internal/fishermate/observability"
	"github.com/fishermate/fishermate/internal/fishermate/session"
)

func main() {
	fmt.Printf("FisherMate\n")
	fmt.Printf("Version: %s\n", version.Version)
	fmt.Printf("Commit: %s\n", version.GitCommit)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Println()

	observability.Setup(environment.StringOr("LOG_LEVEL", "info"), environment.StringOr("LOG_FORMAT", "text"))

	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if config.SessionBackend == session.StoreTypeRedis && config.RedisURL == "" {
		fmt.Fprintf(os.Stderr, "Error: REDIS_URL is required when SESSION_BACKEND=redis\n")
		os.Exit(1)
	}
	if config.ValidateSignature && config.PublicBaseURL == "" {
		slog.Warn("PUBLIC_BASE_URL is not set; Twilio signatures are checked against the request host")
	}
	if config.Providers.OpenWeatherKey == "" {
		slog.Warn("OPENWEATHER_API_KEY is not set; weather answers will use the fallback message")
	}

	fm, err := app.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize FisherMate: %v\n", err)
		os.Exit(1)
	}
	defer fm.Stop()

	if err := fm.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error running FisherMate: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads server settings with the environment helpers and
// provider credentials with app.LoadProviderConfig.
func loadConfig() (app.Config, error) {
	providers, err := app.LoadProviderConfig()
	if err != nil {
		return app.Config{}, err
	}
	return app.Config{
		HTTPAddr:          environment.StringOr("HTTP_ADDR", ":5000"),
		DefaultLanguage:   environment.StringOr("DEFAULT_LANGUAGE", "en"),
		ProviderTimeout:   environment.DurationOr("PROVIDER_TIMEOUT", 10*time.Second),
		SessionBackend:    session.StoreType(environment.StringOr("SESSION_BACKEND", string(session.StoreTypeMemory))),
		RedisURL:          environment.StringOr("REDIS_URL", ""),
		RelayTTL:          environment.DurationOr("RELAY_SESSION_TTL", 24*time.Hour),
		SMSTTL:            environment.DurationOr("SMS_SESSION_TTL", 168*time.Hour),
		SweepSchedule:     environment.StringOr("SESSION_SWEEP_SCHEDULE", session.DefaultSchedule),
		DatabasePath:      environment.StringOr("DATABASE_PATH", ""),
		AudioDir:          environment.StringOr("AUDIO_DIR", "./audio"),
		AudioMaxAge:       environment.DurationOr("AUDIO_MAX_AGE", 24*time.Hour),
		ValidateSignature: environment.BoolOr("TWILIO_VALIDATE_SIGNATURE", false),
		PublicBaseURL:     environment.StringOr("PUBLIC_BASE_URL", ""),
		BroadcastToken:    environment.StringOr("BROADCAST_TOKEN", ""),
		RateLimit:         environment.IntOr("WEBHOOK_RATE_LIMIT", 20),
		Providers:         providers,
	}, nil
}
