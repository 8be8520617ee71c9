package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/cli/config"
	controller "github.com/arbadacarbaYK/gittr-mcp/pkg/controller/http"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		relayCfg  config.Relay
		bridgeCfg config.Bridge
		keysCfg   config.Keys
	)

	flags := serverCfg.Flags()
	flags = append(flags, relayCfg.Flags()...)
	flags = append(flags, bridgeCfg.Flags()...)
	flags = append(flags, keysCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server exposing the tools as a REST API",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting gittr-mcp server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("relays", relayCfg.Relays),
				slog.String("bridge", bridgeCfg.URL),
			)

			registry, pool := buildRegistry(relayCfg, bridgeCfg, keysCfg)
			defer pool.Close()

			server, err := controller.NewServer(ctx, registry,
				controller.WithAddr(serverCfg.Addr),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
