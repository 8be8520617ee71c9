package cli

import (
	"context"
	"log/slog"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/cli/config"
	controller "github.com/arbadacarbaYK/gittr-mcp/pkg/controller/mcp"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdMCP() *cli.Command {
	var (
		relayCfg  config.Relay
		bridgeCfg config.Bridge
		keysCfg   config.Keys
	)

	flags := relayCfg.Flags()
	flags = append(flags, bridgeCfg.Flags()...)
	flags = append(flags, keysCfg.Flags()...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the tools over MCP stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Info("Starting MCP stdio server",
				slog.Any("relays", relayCfg.Relays),
				slog.String("bridge", bridgeCfg.URL),
			)

			registry, pool := buildRegistry(relayCfg, bridgeCfg, keysCfg)
			defer pool.Close()

			server, err := controller.NewServer(registry)
			if err != nil {
				return goerr.Wrap(err, "failed to create MCP server")
			}
			return server.Serve()
		},
	}
}
