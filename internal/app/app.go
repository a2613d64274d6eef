package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/nnamon/hippo/internal/config"
	"github.com/nnamon/hippo/internal/domain"
	"github.com/nnamon/hippo/internal/hydration"
	"github.com/nnamon/hippo/internal/scheduler"
	"github.com/nnamon/hippo/internal/store"
	"github.com/nnamon/hippo/internal/telegram"
)

type App struct {
	cfg      config.Config
	log      *zap.Logger
	bot      *tgbotapi.BotAPI
	httpSrv  *http.Server
	repo     *store.SQLiteRepo
	router   *telegram.Router
	registry *scheduler.Registry
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting hippo",
		zap.String("http", a.cfg.HTTPAddr),
		zap.Duration("checkPeriod", a.cfg.CheckPeriod))

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	fallback, _ := domain.ResolveLocation(a.cfg.DefaultTZ, time.UTC)
	estimator := hydration.NewEstimator(repo)

	// The router is the scheduler's dispatch port, and the registry drives
	// the scheduler; the timer binding closes the loop afterwards.
	a.router = telegram.NewRouter(a.bot, a.log, repo, estimator, a.cfg.DefaultTZ)
	sched := scheduler.New(repo, a.router, estimator, a.log, fallback)
	a.registry = scheduler.NewRegistry(sched, repo, a.log, a.cfg.CheckPeriod)
	a.router.BindTimers(a.registry)

	if err := a.registry.StartAll(ctx); err != nil {
		a.log.Error("start reminder timers failed", zap.Error(err))
		return err
	}

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.shutdown()
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

func (a *App) shutdown() {
	// Stop dispatching before closing the store the ticks write to.
	a.registry.StopAll()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}

	if a.repo != nil {
		_ = a.repo.Close()
	}
}
