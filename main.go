// main.go
//
// Entrypoint of the game-session server.
// Wires config, logging, word lists, the SQLite archive, the in-process Wordle
// service, the session orchestrator, and the HTTP API, then runs until SIGINT/SIGTERM.

package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/game-session/internal/config"
	"github.com/robalobadob/wordle/apps/game-session/internal/game"
	"github.com/robalobadob/wordle/apps/game-session/internal/history"
	"github.com/robalobadob/wordle/apps/game-session/internal/httpserver"
	"github.com/robalobadob/wordle/apps/game-session/internal/notify"
	"github.com/robalobadob/wordle/apps/game-session/internal/session"
	"github.com/robalobadob/wordle/apps/game-session/internal/store"
	"github.com/robalobadob/wordle/apps/game-session/internal/wordle"
	"github.com/robalobadob/wordle/apps/game-session/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	if err := words.Init(words.Files{AnswersFile: cfg.AnswersFile, AllowedFile: cfg.AllowedFile}); err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	db, err := history.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()
	if err := history.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	svc := wordle.New(game.Identity(cfg.WordleServiceID), picker(cfg), wordle.WithDelay(cfg.WordleReplyDelay))
	hub := notify.NewHub()
	d, err := session.New(
		session.Config{
			Self:   game.Identity(cfg.SessionServiceID),
			Wordle: svc.ID(),
			Tick:   cfg.Tick,
		},
		store.NewMemoryStore(),
		svc,
		session.WithNotifier(hub),
		session.WithRecorder(history.NewStore(db)),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("session dispatcher")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = svc.Run(ctx, d) }()
	go func() { defer wg.Done(); _ = d.Run(ctx) }()

	srv := httpserver.New(cfg, d, hub, db)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
	}()

	answers, allowed := words.Stats()
	log.Info().
		Str("port", cfg.Port).
		Str("mode", cfg.WordleMode).
		Int("answers", answers).
		Int("allowed", allowed).
		Dur("timeout", time.Duration(session.DefaultTimeoutTicks)*cfg.Tick).
		Msg("starting game-session server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server exited")
		stop()
	}
	wg.Wait()
	log.Info().Msg("bye")
}

// setupLogging applies LOG_LEVEL and LOG_FORMAT to the global zerolog logger.
func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// picker selects how the Wordle service chooses secrets.
func picker(cfg config.Config) wordle.Picker {
	switch cfg.WordleMode {
	case config.ModeDaily:
		return wordle.DailyPicker(cfg.WordleDailySalt, nil)
	case config.ModeFixed:
		return wordle.FixedPicker(cfg.WordleFixedAnswer)
	default:
		return wordle.RandomPicker()
	}
}
