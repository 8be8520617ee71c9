package config

import (
	"github.com/urfave/cli/v3"
)

// defaultRelays are git-aware relays; general-purpose relays rate-limit the
// repository kinds too aggressively to be useful defaults.
var defaultRelays = []string{
	"wss://relay.noderunners.network",
	"wss://relay.ngit.dev",
	"wss://git.shakespeare.diy",
	"wss://ngit-relay.nostrver.se",
	"wss://git-01.uid.ovh",
	"wss://git-02.uid.ovh",
	"wss://ngit.danconwaydev.com",
	"wss://nostr.wine",
}

// defaultGraspServers are known combined git+relay endpoints.
var defaultGraspServers = []string{
	"wss://relay.ngit.dev",
}

// Relay holds the relay network configuration
type Relay struct {
	Relays       []string
	GraspServers []string
}

// Flags returns CLI flags for relay configuration
func (c *Relay) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "relay",
			Usage:       "Relay URL (repeatable)",
			Value:       defaultRelays,
			Destination: &c.Relays,
			Sources:     cli.EnvVars("GITTR_RELAYS"),
		},
		&cli.StringSliceFlag{
			Name:        "grasp-server",
			Usage:       "Combined git+relay server used for new repositories (repeatable)",
			Value:       defaultGraspServers,
			Destination: &c.GraspServers,
			Sources:     cli.EnvVars("GITTR_GRASP_SERVERS"),
		},
	}
}
