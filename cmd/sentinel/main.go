// Command sentinel serves the fraud analysis HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/scamwatch/sentinel/internal/api"
	"github.com/scamwatch/sentinel/internal/config"
	"github.com/scamwatch/sentinel/internal/database"
	"github.com/scamwatch/sentinel/internal/fraud"
	"github.com/scamwatch/sentinel/internal/lexicon"
	"github.com/scamwatch/sentinel/internal/samples"
)

func main() {
	configPath := flag.String("config", "sentinel.yaml", "Path to config file")
	generate := flag.Bool("generate-config", false, "Write a sample config to -config and exit")
	flag.Parse()

	// a missing .env is normal
	_ = godotenv.Load()

	if *generate {
		if err := config.GenerateSample(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Sample config written to %s\n", *configPath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.Logging)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func run(cfg *config.Config) error {
	lex := lexicon.Default()
	if cfg.Lexicon.Path != "" {
		var err error
		if lex, err = lexicon.Load(cfg.Lexicon.Path); err != nil {
			return err
		}
		log.Info().Str("path", cfg.Lexicon.Path).Msg("Loaded lexicon")
	}

	set, err := loadSamples(cfg.Samples.Dir)
	if err != nil {
		return err
	}

	store, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := seedKeys(cfg, store); err != nil {
		return err
	}

	engine := fraud.NewEngine(lex, engineOptions(cfg))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(cfg, engine, store, set),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("db", cfg.Database.Driver).Bool("auth", cfg.Auth.Enabled).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedKeys stores the configured bootstrap key so a fresh deployment with
// auth on can reach the admin routes.
func seedKeys(cfg *config.Config, store database.Store) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	created, err := api.SeedBootstrapKey(ctx, store, cfg.Auth.BootstrapKey, cfg.RateLimits.RequestsPerMinute)
	if err != nil {
		return err
	}
	switch {
	case created:
		log.Info().Msg("Bootstrap API key stored")
	case cfg.Auth.Enabled && cfg.Auth.BootstrapKey == "":
		log.Warn().Msg("Auth is enabled without a bootstrap key; admin routes need an existing key")
	}
	return nil
}

func loadSamples(dir string) (*samples.Set, error) {
	if dir == "" {
		return samples.Load()
	}
	return samples.LoadFS(os.DirFS(dir))
}

func engineOptions(cfg *config.Config) fraud.Options {
	w, th := cfg.Scoring.Weights, cfg.Scoring.Thresholds
	return fraud.Options{
		Weights: fraud.Weights{
			Keyword:     w.Keyword,
			Urgency:     w.Urgency,
			Domain:      w.Domain,
			CallerSpoof: w.CallerSpoof,
			Deepfake:    w.Deepfake,
		},
		Thresholds: fraud.Thresholds{
			MinBlinkRatePerMin: th.MinBlinkRatePerMin,
			MinLipSyncScore:    th.MinLipSyncScore,
		},
		Workers: cfg.Batch.Workers,
	}
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Format == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
