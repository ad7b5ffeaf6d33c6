package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amartya2002/uptime-notifier/config"
	"github.com/amartya2002/uptime-notifier/uptime"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Monitor the configured targets until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := setup(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app.checker.Start()
			go drain(ctx, app.checker.Results())
			app.logger.Info("Monitoring started", zap.Int("sites", len(app.checker.ListSites())))
			<-ctx.Done()
			app.logger.Info("Shutting down")
			return nil
		},
	}
}

// app is a checker built from the config file, plus what must be released on exit.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	checker    *uptime.Checker
	closeSinks func() error
}

func setup(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, err := cfg.BuildLogger()
	if err != nil {
		return nil, err
	}
	sinks, closeSinks, err := cfg.BuildSinks(logger)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options(logger, sinks)
	if err != nil {
		_ = closeSinks()
		return nil, err
	}

	c := uptime.New(opts...)
	if err := c.AddSitesBulk(cfg.Endpoints()); err != nil {
		_ = closeSinks()
		return nil, fmt.Errorf("register targets: %w", err)
	}
	return &app{cfg: cfg, logger: logger, checker: c, closeSinks: closeSinks}, nil
}

func (a *app) close() {
	a.checker.Stop()
	if err := a.closeSinks(); err != nil {
		a.logger.Warn("Closing sinks failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// drain discards results so the checker's buffer never fills while nobody consumes it.
func drain(ctx context.Context, results <-chan uptime.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-results:
			if !ok {
				return
			}
		}
	}
}
