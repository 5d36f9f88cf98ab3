package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sanjith314/gradescope-api/lib/configutil"
	"github.com/sanjith314/gradescope-api/lib/scrapers/gradescope"
	"github.com/sanjith314/gradescope-api/lib/telemetry"
	"github.com/sanjith314/gradescope-api/lib/timezone"
	"github.com/sanjith314/gradescope-api/services/api"
)

type Config struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// BaseUrl overrides the portal origin, mainly for staging against
	// a recorded copy of the site.
	BaseUrl string `json:"base_url"`
	// Timezone is the institution's IANA zone name, e.g. "America/New_York".
	Timezone string `json:"timezone"`
	// SessionTtlMinutes is how long an idle API session survives.
	SessionTtlMinutes int `json:"session_ttl_minutes"`
	// FetchDelayMs is the spacing between per-submission portal fetches.
	FetchDelayMs int `json:"fetch_delay_ms"`
}

func run() error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if config.Port == 0 {
		config.Port = 8000
	}
	if config.SessionTtlMinutes == 0 {
		config.SessionTtlMinutes = 60
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.SetupFromEnv(ctx, "gradescope-api")
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown telemetry", "err", err)
		}
	}()

	loc := timezone.Load(config.Timezone)

	store := api.NewSessionStore(time.Duration(config.SessionTtlMinutes) * time.Minute)
	go store.SweepDaemon(ctx)

	service := api.NewService(store, func(ctx context.Context) (*gradescope.Client, error) {
		return gradescope.NewClient(ctx, gradescope.ClientOptions{
			BaseUrl:    config.BaseUrl,
			Timezone:   loc,
			FetchDelay: time.Duration(config.FetchDelayMs) * time.Millisecond,
		})
	})

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: service.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", "err", err)
		}
	}()

	slog.Info("serving gradescope api", "addr", addr, "timezone", loc.String())
	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}
