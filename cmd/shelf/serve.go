package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joestump/shelf/internal/api"
	"github.com/joestump/shelf/internal/auth"
	"github.com/joestump/shelf/internal/build"
	"github.com/joestump/shelf/internal/catalog"
	"github.com/joestump/shelf/internal/config"
	"github.com/joestump/shelf/internal/db"
	"github.com/joestump/shelf/internal/logger"
	"github.com/joestump/shelf/internal/metrics"
	"github.com/joestump/shelf/internal/store"
)

const (
	gaugeInterval   = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			userStore := store.NewUserStore(database)
			authorStore := store.NewAuthorStore(database)
			bookStore := store.NewBookStore(database)
			favoriteStore := store.NewFavoriteStore(database)

			issuer := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
			router := api.NewRouter(api.Deps{
				Catalog:    catalog.NewService(authorStore, bookStore, favoriteStore, log.Named("catalog")),
				BearerAuth: auth.NewBearerTokenMiddleware(issuer, userStore),
				Login: auth.NewHandlers(userStore, issuer, auth.HandlersConfig{
					LoginsPerMinute: cfg.Login.Rate,
					LoginBurst:      cfg.Login.Burst,
					BcryptCost:      cfg.BcryptCost,
				}, log.Named("auth")),
				Log:  log.Named("http"),
				Ping: database.PingContext,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				runGaugeRefresher(gctx, gaugeInterval, bookStore, userStore, log)
				return nil
			})
			g.Go(func() error {
				log.Info("listening", zap.String("addr", cfg.HTTP.Addr), zap.String("version", build.Version))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
				defer cancel()
				log.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}

type counter interface {
	Count(ctx context.Context) (int, error)
}

// runGaugeRefresher keeps the catalog size gauges current until ctx is done.
func runGaugeRefresher(ctx context.Context, every time.Duration, books, users counter, log *zap.Logger) {
	refresh := func() {
		if n, err := books.Count(ctx); err != nil {
			log.Warn("count books", zap.Error(err))
		} else {
			metrics.BooksTotal.Set(float64(n))
		}
		if n, err := users.Count(ctx); err != nil {
			log.Warn("count users", zap.Error(err))
		} else {
			metrics.UsersTotal.Set(float64(n))
		}
	}

	refresh()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			refresh()
		case <-ctx.Done():
			return
		}
	}
}
