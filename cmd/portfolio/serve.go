package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio/internal/db"
	"portfolio/internal/server"

	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "migrate",
			Usage: "Apply pending migrations before serving",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(config)

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, config, logger, awsConfig)
	if err != nil {
		return err
	}
	defer a.close()

	if cCtx.Bool("migrate") {
		if err := db.Migrate(ctx, a.pool, db.MigrateUp); err != nil {
			return err
		}
	}

	authenticator, err := a.authenticator(ctx, awsConfig)
	if err != nil {
		return err
	}

	srv, err := server.New(
		config,
		logger,
		a.resolver,
		a.reconciler,
		a.messages,
		authenticator,
		a.gateway,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
