package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kvolkov/quizroom/internal/engine"
	"github.com/kvolkov/quizroom/internal/gateway"
	"github.com/kvolkov/quizroom/internal/httpapi"
	"github.com/kvolkov/quizroom/internal/session"
	"github.com/kvolkov/quizroom/internal/timers"
	"github.com/kvolkov/quizroom/internal/transport"
)

type config struct {
	ServerURL string `env:"QUIZROOM_SERVER_URL,required"`
	UserName  string `env:"QUIZROOM_USER_NAME,required"`
	Avatar    string `env:"QUIZROOM_AVATAR"`
	Automatic bool   `env:"QUIZROOM_AUTOMATIC_GAME"`
	DebugAddr string `env:"QUIZROOM_DEBUG_ADDR" envDefault:"127.0.0.1:8080"`
	DevLog    bool   `env:"QUIZROOM_DEV_LOG"`
}

func main() {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := buildLogger(cfg.DevLog)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("exited", zap.Error(err))
	}
}

func buildLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := transport.Dial(ctx, logger, cfg.ServerURL, cfg.UserName)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	sess := session.New(cfg.UserName)
	tm := timers.NewSet()
	gw := gateway.New(logger, client, sess)
	gw.SetConnected(true)

	opts := []engine.Option{engine.WithAvatar(cfg.Avatar)}
	if cfg.Automatic {
		opts = append(opts, engine.WithAutomaticGame())
	}

	ctrl := engine.New(ctx, logger, sess, tm, gw, opts...)

	srv := &http.Server{
		Addr:    cfg.DebugAddr,
		Handler: httpapi.SetupRoutes(ctrl),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(ctrl.Run)

	g.Go(func() error {
		for {
			select {
			case msg, ok := <-client.Messages():
				if !ok {
					return errors.New("server connection lost")
				}
				ctrl.Post(engine.FromServer{Message: msg})

			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	g.Go(func() error {
		logger.Info("debug endpoint up", zap.String("addr", cfg.DebugAddr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		ctrl.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Ask for a full resync right away; the server replies with the
	// roster and current stage.
	if err := gw.RequestInfo(); err != nil {
		logger.Warn("initial resync request failed", zap.Error(err))
	}

	return g.Wait()
}
