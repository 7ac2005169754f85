// Command docbot runs the document archive bot: a Telegram long-poll loop
// feeding the ingestion/search core, plus a read-only admin HTTP API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"docbot/internal/bot"
	"docbot/internal/config"
	"docbot/internal/dispatch"
	httpapi "docbot/internal/http"
	"docbot/internal/observability"
	"docbot/internal/repo"
	"docbot/internal/search"
	"docbot/internal/services"
	"docbot/internal/state"
	"docbot/internal/sysutil"
	"docbot/internal/transport/telegram"
)

const version = "1.2.0"

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	if cfg.BotToken == "" {
		log.Fatal().Msg("BOT_TOKEN is required")
	}

	// Process epoch, shown in the greeting only.
	startedAt := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOTel(c)
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	archive := &services.ArchiveService{DB: db, Suffix: cfg.FileSuffix}
	searcher := &services.SearchService{
		Engine: &search.Engine{
			Store:  repo.DocumentStore{DB: db},
			Window: cfg.SearchWindow,
		},
	}

	client := &telegram.Client{Token: cfg.BotToken}

	var limiter *rate.Limiter
	if cfg.ReplyRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.ReplyRPS), cfg.ReplyBurst)
	}
	dispatcher := &dispatch.Dispatcher{
		Sender:     client,
		Limiter:    limiter,
		WindowDays: int(cfg.SearchWindow.Hours() / 24),
		Log:        log.With().Str("component", "dispatch").Logger(),
	}

	router := &bot.Router{
		Archive:    archive,
		Search:     searcher,
		States:     state.NewTracker(),
		Dispatcher: dispatcher,
		StartedAt:  startedAt,
		Trigger:    cfg.Trigger,
		Log:        log.With().Str("component", "bot").Logger(),
	}

	if err := client.SetCommands(ctx, []telegram.Command{
		{Command: cfg.Trigger[1:], Description: "Search stored documents"},
	}); err != nil {
		log.Warn().Err(err).Msg("command registration failed")
	}

	// Admin HTTP server.
	engine := gin.New()
	httpapi.RegisterRoutes(engine, archive, cfg)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("admin server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("admin server failed")
			stop()
		}
	}()

	poller := &telegram.Poller{
		Client:  client,
		Handler: router.Handle,
		Trigger: cfg.Trigger,
		Timeout: cfg.PollTimeout,
		Log:     log.With().Str("component", "poller").Logger(),
	}

	log.Info().
		Time("started_at", startedAt).
		Str("db_path", cfg.DBPath).
		Str("trigger", cfg.Trigger).
		Msg("docbot running")

	if err := poller.Run(ctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("poller stopped")
	}

	// Drain the admin server before exit.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("admin server shutdown failed")
	}
	log.Info().Msg("docbot stopped")
}
