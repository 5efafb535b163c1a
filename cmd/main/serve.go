package main

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"commission-service/internal/cache"
	"commission-service/internal/commission/handler"
	"commission-service/internal/commission/service"
	serverhttp "commission-service/server/http"
)

var pprofAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "HTTP API (varsayılan komut)",
	RunE:  runServe,
}

func init() {
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pprofAddr, "pprof", "", "serve net/http/pprof on this address, e.g. 127.0.0.1:6060")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup("")
	if err != nil {
		return err
	}
	logger := a.log

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := a.st.Refresh(ctx, true); err != nil {
		return err
	}
	for _, m := range a.st.Marketplaces() {
		if !m.Available {
			logger.Warn().Str("marketplace", m.ID).Str("path", m.Path).Str("error", m.Error).Msg("no data")
		}
	}

	c, err := cache.New(a.cfg.CacheOptions())
	if err != nil {
		// без кэша работаем, просто медленнее
		logger.Warn().Err(err).Str("driver", a.cfg.Cache.Driver).Msg("cache disabled")
		c = cache.Noop{}
	}
	defer c.Close()

	h := handler.New(a.st, a.svc, c, handler.Options{
		CacheTTL:         a.cfg.Cache.TTL,
		LookupEmptyQuery: service.EmptyQueryMode(a.cfg.Search.EmptyQuery),
	}, logger)
	a.st.OnReload(h.Invalidate)

	go func() {
		if err := a.st.Watch(ctx, a.cfg.Data.ReloadInterval, a.cfg.Data.Watch); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("watch")
		}
	}()

	if pprofAddr != "" {
		go func() {
			logger.Info().Str("addr", pprofAddr).Msg("pprof")
			if err := http.ListenAndServe(pprofAddr, nil); err != nil {
				logger.Error().Err(err).Msg("pprof")
			}
		}()
	}

	r := serverhttp.NewRouter(a.cfg.Server, h, logger)
	srv := &http.Server{Addr: a.cfg.Addr(), Handler: r, ReadHeaderTimeout: 10 * time.Second}
	logger.Info().Str("addr", a.cfg.Addr()).Int("marketplaces", len(a.cfg.Marketplaces)).Msg("server starting")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("bye")
	return nil
}
