// Package app wires the FisherMate service: content providers, the intent
// router, per-channel session stores and state machines, the Twilio and
// Matrix transports, and the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/fishermate/fishermate/common/retry"
	"github.com/fishermate/fishermate/internal/fishermate/channel"
	"github.com/fishermate/fishermate/internal/fishermate/channel/matrix"
	"github.com/fishermate/fishermate/internal/fishermate/channel/relay"
	"github.com/fishermate/fishermate/internal/fishermate/channel/sms"
	"github.com/fishermate/fishermate/internal/fishermate/channel/twilio"
	"github.com/fishermate/fishermate/internal/fishermate/content/general"
	"github.com/fishermate/fishermate/internal/fishermate/content/legal"
	"github.com/fishermate/fishermate/internal/fishermate/content/safety"
	"github.com/fishermate/fishermate/internal/fishermate/content/weather"
	"github.com/fishermate/fishermate/internal/fishermate/fallback"
	"github.com/fishermate/fishermate/internal/fishermate/intent"
	"github.com/fishermate/fishermate/internal/fishermate/language"
	"github.com/fishermate/fishermate/internal/fishermate/llm"
	"github.com/fishermate/fishermate/internal/fishermate/session"
	"github.com/fishermate/fishermate/internal/fishermate/store"
	"github.com/fishermate/fishermate/internal/fishermate/voice"
)

// App is the running service.
type App struct {
	config Config
	logger *slog.Logger

	db      *store.Store // nil when the exchange log is disabled
	stores  []session.Store
	sweeper *session.Sweeper
	server  *Server
	matrix  *matrix.Client
	bot     *matrix.Bot
}

// New builds every component from config. Nothing is started.
func New(config Config) (*App, error) {
	logger := slog.Default()
	a := &App{config: config, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.Stop()
		}
	}()

	timeout := config.ProviderTimeout
	if timeout <= 0 {
		timeout = fallback.DefaultTimeout
	}
	wrapper := fallback.New(timeout, logger)
	resolver := language.NewResolver(config.DefaultLanguage, language.WhatlangDetector{})

	// Chat model for translation and general chat; without a key both
	// degrade to their canned answers.
	var translator language.Translator
	model, err := llm.New(config.Providers.LLM(timeout))
	switch {
	case errors.Is(err, llm.ErrNoAPIKey):
		logger.Warn("no chat model configured; general chat and translation are disabled")
	case err != nil:
		return nil, err
	default:
		translator = language.NewModelTranslator(model)
	}

	weatherP := weather.NewProvider(weather.NewClient(weather.ClientConfig{
		APIKey:  config.Providers.OpenWeatherKey,
		Timeout: timeout,
	}))
	legalP, err := legal.NewProvider()
	if err != nil {
		return nil, err
	}
	safetyP, err := safety.NewProvider()
	if err != nil {
		return nil, err
	}

	router := intent.NewRouter(intent.DefaultKeywordTable(),
		intent.WithProvider(intent.Weather, weatherP),
		intent.WithProvider(intent.Legal, legalP),
		intent.WithProvider(intent.Safety, safetyP),
		intent.WithProvider(intent.General, general.NewProvider(model)),
		intent.WithTranslator(translator),
		intent.WithFallback(wrapper),
		intent.WithLogger(logger),
	)

	var recorder channel.Recorder
	var exchanges ExchangeLog
	if config.DatabasePath != "" {
		a.db, err = store.Open(config.DatabasePath)
		if err != nil {
			return nil, err
		}
		recorder, exchanges = a.db, a.db
	}

	newStore := func(ch session.Channel, prefix string, ttl time.Duration) (session.Store, error) {
		opts := []session.StoreOption{
			session.WithChannel(ch),
			session.WithDefaultLanguage(resolver.DefaultLanguage()),
		}
		if config.SessionBackend == session.StoreTypeRedis {
			opts = append(opts,
				session.WithRedisURL(config.RedisURL),
				session.WithKeyPrefix(prefix),
				session.WithKeyTTL(2*ttl))
		}
		s, err := session.NewStore(config.SessionBackend, opts...)
		if err != nil {
			return nil, fmt.Errorf("%s session store: %w", ch, err)
		}
		a.stores = append(a.stores, s)
		return s, nil
	}

	relayStore, err := newStore(session.ChannelRelay, "fishermate:session:", config.RelayTTL)
	if err != nil {
		return nil, err
	}
	smsStore, err := newStore(session.ChannelSMS, "fishermate:session:", config.SMSTTL)
	if err != nil {
		return nil, err
	}

	relayOpts := []relay.Option{relay.WithLogger(logger)}
	smsOpts := []sms.Option{sms.WithLogger(logger), sms.WithLocator(weather.Lookup)}
	if recorder != nil {
		relayOpts = append(relayOpts, relay.WithRecorder(recorder))
		smsOpts = append(smsOpts, sms.WithRecorder(recorder))
	}
	relayMachine := relay.New(relayStore, router, resolver, relayOpts...)
	smsMachine := sms.New(smsStore, router, resolver, smsOpts...)

	limiter := channel.NewLimiter(config.RateLimit)
	hookCfg := twilio.WebhookConfig{PublicURL: config.PublicBaseURL, Limiter: limiter, Logger: logger}
	if config.ValidateSignature {
		if config.Providers.TwilioAuthToken == "" {
			return nil, errors.New("signature validation needs TWILIO_AUTH_TOKEN")
		}
		hookCfg.AuthToken = config.Providers.TwilioAuthToken
	}

	var broadcaster *twilio.Broadcaster
	if api := twilio.NewMessageAPI(config.Providers.TwilioAccountSID, config.Providers.TwilioAuthToken); api != nil && config.Providers.TwilioSMSNumber != "" {
		sender := twilio.NewSender(api, config.Providers.TwilioSMSNumber, sms.DefaultBudget, logger).WithRetry(retry.Default)
		broadcaster = twilio.NewBroadcaster(sender, twilio.DefaultBroadcastRate)
	}

	var speech voice.Speech
	if speechCfg, ok := config.Providers.Speech(timeout); ok {
		speech = voice.NewOpenAISpeech(speechCfg)
	}
	voiceSvc, err := voice.NewService(speech, config.AudioDir, logger)
	if err != nil {
		return nil, err
	}

	targets := []session.SweepTarget{
		{Name: string(session.ChannelRelay), Store: relayStore, TTL: config.RelayTTL},
		{Name: string(session.ChannelSMS), Store: smsStore, TTL: config.SMSTTL},
		{Name: "audio", Store: voiceSvc, TTL: config.AudioMaxAge},
	}

	if mcfg, enabled := config.Providers.Matrix(); enabled {
		matrixStore, err := newStore(session.ChannelRelay, "fishermate:matrix:", config.RelayTTL)
		if err != nil {
			return nil, err
		}
		targets = append(targets, session.SweepTarget{Name: "matrix", Store: matrixStore, TTL: config.RelayTTL})
		mcfg.Logger = logger
		if a.db != nil {
			mcfg.State = a.db
		}
		a.matrix, err = matrix.New(mcfg)
		if err != nil {
			return nil, err
		}
		machine := relay.New(matrixStore, router, resolver, relayOpts...)
		a.bot = matrix.NewBot(machine, a.matrix.Sender(), a.matrix.UserID(), limiter, logger)
	}

	a.sweeper, err = session.NewSweeper(config.SweepSchedule, logger, targets...)
	if err != nil {
		return nil, err
	}

	a.server = NewServer(Deps{
		Router:         router,
		Resolver:       resolver,
		Wrapper:        wrapper,
		Translator:     translator,
		Weather:        weatherP,
		Legal:          legalP,
		Safety:         safetyP,
		Voice:          voiceSvc,
		WhatsApp:       twilio.NewWebhook(relayMachine, hookCfg),
		SMS:            twilio.NewWebhook(smsMachine, hookCfg),
		RelayStats:     relayMachine,
		SMSStats:       smsMachine,
		Broadcaster:    broadcaster,
		BroadcastToken: config.BroadcastToken,
		Exchanges:      exchanges,
		Logger:         logger,
	})

	ok = true
	return a, nil
}

// Handler exposes the HTTP API, mainly for tests.
func (a *App) Handler() *Server { return a.server }

// Run starts the API, the sweeper and the Matrix bot, then blocks until
// ctx is done or the process is interrupted.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.server.Start(ctx, a.config.HTTPAddr); err != nil {
		return err
	}
	go a.sweeper.Run(ctx)

	if a.matrix != nil {
		a.logger.Info("starting Matrix sync")
		if err := a.matrix.Start(ctx, a.bot); err != nil {
			return fmt.Errorf("start Matrix client: %w", err)
		}
	}

	a.logger.Info("FisherMate is running", "addr", a.config.HTTPAddr)
	<-ctx.Done()
	a.logger.Info("shutting down")
	return nil
}

// Stop releases every component. Safe on a partially built App.
func (a *App) Stop() {
	if a.matrix != nil {
		a.matrix.Stop()
	}
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	if a.server != nil {
		a.server.Stop()
	}
	for _, s := range a.stores {
		if err := s.Close(); err != nil {
			a.logger.Warn("closing session store", "err", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
