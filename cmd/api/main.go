package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/marcelsud/artemis-inbox/config"
	"github.com/marcelsud/artemis-inbox/event"
	"github.com/marcelsud/artemis-inbox/eventtypes"
	"github.com/marcelsud/artemis-inbox/inbox"
	inboxredis "github.com/marcelsud/artemis-inbox/inbox/redis"
	"github.com/marcelsud/artemis-inbox/internal/http/chi"
	"github.com/marcelsud/artemis-inbox/internal/logger"
	"github.com/marcelsud/artemis-inbox/metrics"
)

/*
 * main only wires packages together: config, the inbox service and its
 * dispatcher, the optional Redis mirror, metrics, and the HTTP listeners.
 * Imports go one way, down: cmd -> inbox -> storage
 */
func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	table := eventtypes.NewTable()
	if cfg.Inbox.EventTypesFile != "" {
		if err := eventtypes.NewLoader(table).Load(cfg.Inbox.EventTypesFile); err != nil {
			log.Fatal().Err(err).Msg("loading event types")
		}
	}

	buffer := inbox.NewBuffer(cfg.Inbox.Capacity)
	defer buffer.Close(ctx)
	s := inbox.NewService(buffer, event.NewParser(table), log)

	var mirror metrics.MirrorSource
	if cfg.Redis.Enabled {
		repo, err := inboxredis.NewRepository(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			inboxredis.WithKey(cfg.Redis.Key),
			inboxredis.WithCapacity(buffer.Cap()),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("starting redis mirror")
		}
		defer repo.Close(context.Background())
		s.AddMirror(repo)
		mirror = repo
		log.Info().Str("addr", cfg.Redis.Addr).Str("key", cfg.Redis.Key).Msg("mirroring inbox to redis")
	}

	dispatcher := inbox.NewDispatcher(s, cfg.Inbox.QueueSize, log)
	// queued requests are still drained after a shutdown signal
	dispatcher.Start(context.WithoutCancel(ctx))
	defer dispatcher.Stop()

	opts := chi.Options{
		Logger:         log,
		ReceiveTimeout: cfg.Server.ReceiveTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	}
	if cfg.Metrics.Enabled {
		exporter, err := metrics.NewOTelExporter(metrics.NewInboxCollector(s, dispatcher, mirror))
		if err != nil {
			log.Fatal().Err(err).Msg("starting metrics exporter")
		}
		defer exporter.Shutdown(context.Background())
		opts.Metrics = exporter.ServeHTTP()
	}

	r := chi.InboxHandlers(ctx, s, dispatcher, opts)

	servers := []*http.Server{newServer(cfg.Server.Port, r, cfg.Server.ReceiveTimeout)}
	tlsEnabled := fileExists(cfg.Server.CertFile) && fileExists(cfg.Server.KeyFile)
	if tlsEnabled {
		servers = append(servers, newServer(cfg.Server.TLSPort, r, cfg.Server.ReceiveTimeout))
	} else {
		log.Warn().Str("cert", cfg.Server.CertFile).Str("key", cfg.Server.KeyFile).Msg("certificate not found, https listener disabled")
	}

	errServe := make(chan error, len(servers))
	for i, srv := range servers {
		secure := tlsEnabled && i == 1
		go func() {
			var err error
			if secure {
				log.Info().Str("addr", srv.Addr).Str("scheme", "https").Str("callback", chi.CallbackPath).Msg("listening")
				err = srv.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
			} else {
				log.Info().Str("addr", srv.Addr).Str("scheme", "http").Str("callback", chi.CallbackPath).Msg("listening")
				err = srv.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				errServe <- fmt.Errorf("serving %s: %w", srv.Addr, err)
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errServe:
		log.Error().Err(err).Msg("listener failed")
		stop()
	}

	if err := shutdown(servers, cfg); err != nil {
		log.Error().Err(err).Msg("shutting down")
		return
	}
	log.Info().Interface("stats", s.Stats()).Msg("server stopped")
}

// newServer bounds header reads only; callback bodies carry their own deadline
func newServer(port int, h http.Handler, headerTimeout time.Duration) *http.Server {
	return &http.Server{
		ReadHeaderTimeout: headerTimeout,
		Addr:              ":" + strconv.Itoa(port),
		Handler:           h,
	}
}

func shutdown(servers []*http.Server, cfg *config.Config) error {
	ctxTimeout, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctxTimeout); err != nil {
			errs = append(errs, fmt.Errorf("forcing close of %s: %w", srv.Addr, err))
		}
	}
	return errors.Join(errs...)
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
