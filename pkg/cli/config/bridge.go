package config

import "github.com/urfave/cli/v3"

// Bridge holds the git bridge configuration
type Bridge struct {
	URL string
}

// Flags returns CLI flags for bridge configuration
func (c *Bridge) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bridge-url",
			Usage:       "Base URL of the git bridge",
			Value:       "https://git.gittr.space",
			Destination: &c.URL,
			Sources:     cli.EnvVars("GITTR_BRIDGE_URL"),
		},
	}
}
