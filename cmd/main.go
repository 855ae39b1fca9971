package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"
	"golang.org/x/sync/errgroup"

	"cartflow/cmd/server"
	"cartflow/config"
	"cartflow/internal/infra"
	"cartflow/internal/middlewares"
	apperrors "cartflow/pkg/errors"
	"cartflow/pkg/logger"
)

func main() {
	injector := do.New()
	e := echo.New()

	cfg := config.MustLoad()
	config.SetDebugMode(e, cfg.App.Debug)
	logger.Init(cfg.App.Debug, cfg.Log().Pretty)
	apperrors.SetServiceName(cfg.App.Name)

	infra.Setup(injector, cfg)
	middlewares.Init(e, cfg)
	infra.Wire(injector, cfg)

	server.SetupRestRoutes(injector, e, cfg)
	apperrors.Setup(e)

	for _, route := range e.Routes() {
		if route.Method == "" && route.Path == "" {
			continue
		}
		logger.Debugf("route mapped: %s %s", route.Method, route.Path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		address := fmt.Sprintf(":%d", cfg.Http().Port)
		logger.Infof("starting http server at %s", address)
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Messaging().Enabled {
		group.Go(func() error {
			return server.StartWebhookConsumer(groupCtx, injector, cfg)
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()

		logger.Infof("received shutdown signal...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("shutting down with error: %v", err)
	}

	logger.Infof("shutting down services...")
	injector.Shutdown()
	logger.Infof("goodbye!")
}
