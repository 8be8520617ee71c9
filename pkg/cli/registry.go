package cli

import (
	"github.com/arbadacarbaYK/gittr-mcp/pkg/cli/config"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/controller/toolset"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/infra/bridge"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/infra/relay"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/usecase"
)

// buildRegistry assembles the relay pool, bridge client, and tool registry
// from the parsed configuration. The returned pool must be closed by the
// caller when the command ends.
func buildRegistry(relayCfg config.Relay, bridgeCfg config.Bridge, keysCfg config.Keys) (*toolset.Registry, *relay.Pool) {
	pool := relay.New()
	uc := usecase.New(pool, bridge.New(bridgeCfg.URL), usecase.Config{
		Relays:       relayCfg.Relays,
		GraspServers: relayCfg.GraspServers,
		KeyFile:      keysCfg.KeyFile,
	})
	return toolset.New(uc), pool
}
