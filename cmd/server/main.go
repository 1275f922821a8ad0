package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/gamesync/internal/api"
	"github.com/DoyleJ11/gamesync/internal/auth"
	"github.com/DoyleJ11/gamesync/internal/config"
	"github.com/DoyleJ11/gamesync/internal/httpapi"
	"github.com/DoyleJ11/gamesync/internal/hub"
	"github.com/DoyleJ11/gamesync/internal/logging"
	"github.com/DoyleJ11/gamesync/internal/metrics"
	"github.com/DoyleJ11/gamesync/internal/session"
	"github.com/DoyleJ11/gamesync/internal/store"
	"github.com/DoyleJ11/gamesync/internal/ui"
	"github.com/DoyleJ11/gamesync/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("bridge stopped", zap.Error(err))
	}
	logger.Info("exiting")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return err
	}
	defer kv.Close()

	tokens := auth.NewTokens(kv)
	if cfg.AccessToken != "" {
		if err := tokens.Set(ctx, cfg.AccessToken, cfg.RefreshToken); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := api.New(cfg.APIBaseURL, tokens, api.WithTimeout(cfg.RequestTimeout))
	relay := ws.NewRelay()
	h := hub.NewHub(ctx)

	srv := &httpapi.Server{
		Hub:    h,
		Client: client,
		Deps: session.Deps{
			Backend:   client,
			Sequences: store.NewSequences(kv),
			UI:        ui.Fanout{ui.LogNotifier{Log: logger}, relay},
			Clock:     clockwork.NewRealClock(),
			Log:       logger,
			Metrics:   metrics.New(reg),
		},
		Config:   cfg.Session(),
		Identity: tokens.LocalUserID,
		Log:      logger,
	}

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpapi.SetupRoutes(srv, relay, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr), zap.String("api", cfg.APIBaseURL))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		// sessions flush their caches before the store closes
		if herr := h.Shutdown(shutdownCtx); herr != nil {
			logger.Warn("closing sessions", zap.Error(herr))
		}
		return err
	})
	return g.Wait()
}
