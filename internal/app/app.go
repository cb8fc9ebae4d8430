package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ykvlv/calendar-bot/internal/commands"
	"github.com/ykvlv/calendar-bot/internal/config"
	"github.com/ykvlv/calendar-bot/internal/delivery"
	"github.com/ykvlv/calendar-bot/internal/discord"
	"github.com/ykvlv/calendar-bot/internal/domain"
	"github.com/ykvlv/calendar-bot/internal/scheduler"
	"github.com/ykvlv/calendar-bot/internal/store"
	"github.com/ykvlv/calendar-bot/internal/telegram"
)

// platform is a chat platform connection.
type platform interface {
	delivery.Sink
	// Ready is closed once the connection is usable.
	Ready() <-chan struct{}
	// Run blocks until ctx is canceled or the connection fails.
	Run(ctx context.Context) error
}

type App struct {
	cfg      config.Config
	log      *zap.Logger
	repo     store.Repo
	marker   *store.RedisMarker
	platform platform
	sched    *scheduler.Scheduler
	httpSrv  *http.Server
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	repo, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("store ready", zap.String("driver", cfg.StoreDriver))

	a := &App{cfg: cfg, log: log, repo: repo}

	handlerOpts := []commands.Option{commands.WithInvitationURL(cfg.InvitationURL)}
	if cfg.Platform == config.PlatformTelegram {
		handlerOpts = append(handlerOpts, commands.WithChannelMention(func(id string) string { return "chat " + id }))
	}
	registry := commands.New(repo, log.Named("commands"), handlerOpts...).NewRegistry()

	a.platform, err = newPlatform(cfg, registry, log)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if cfg.NotifyInterval != domain.FireWindow {
		log.Warn("notify interval differs from the firing window; reminders may be skipped or repeated",
			zap.Duration("interval", cfg.NotifyInterval), zap.Duration("window", domain.FireWindow))
	}
	schedOpts := []scheduler.Option{
		scheduler.WithInterval(cfg.NotifyInterval),
		scheduler.WithMetrics(scheduler.NewMetrics(reg)),
	}
	if cfg.RedisAddr != "" {
		a.marker = store.NewRedisMarker(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SentMarkerTTL)
		if err := a.marker.Ping(ctx); err != nil {
			log.Warn("redis unavailable, sent-marker degrades to firing window", zap.Error(err))
		}
		schedOpts = append(schedOpts, scheduler.WithMarker(a.marker))
	}
	a.sched = scheduler.New(repo, a.platform, log.Named("scheduler"), schedOpts...)

	a.httpSrv = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      newMux(reg),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	return a, nil
}

func openStore(ctx context.Context, cfg config.Config) (store.Repo, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		repo, err := store.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return repo, nil
	default:
		repo, err := store.OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return repo, nil
	}
}

func newPlatform(cfg config.Config, registry *commands.Registry, log *zap.Logger) (platform, error) {
	switch cfg.Platform {
	case config.PlatformTelegram:
		bot, err := telegram.New(cfg.BotToken, registry, log)
		if err != nil {
			return nil, err
		}
		return bot, nil
	default:
		bot, err := discord.New(cfg.BotToken, cfg.ApplicationID, registry, log)
		if err != nil {
			return nil, err
		}
		return bot, nil
	}
}

func newMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting calendar-bot",
		zap.String("platform", a.cfg.Platform),
		zap.String("http", a.cfg.HTTPAddr),
		zap.Bool("sentMarker", a.marker != nil),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutdown signal received")

		// Create a short-lived shutdown context and cancel it immediately after use.
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpSrv.Shutdown(shCtx); err != nil {
			a.log.Warn("http server shutdown error", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		return a.platform.Run(gctx)
	})
	g.Go(func() error {
		a.sched.Run(gctx, a.platform.Ready())
		return nil
	})

	err := g.Wait()
	a.close()
	return err
}

// close releases storage once every goroutine has stopped.
func (a *App) close() {
	if a.marker != nil {
		if err := a.marker.Close(); err != nil {
			a.log.Warn("redis close error", zap.Error(err))
		}
	}
	if err := a.repo.Close(); err != nil {
		a.log.Warn("store close error", zap.Error(err))
	}
}
