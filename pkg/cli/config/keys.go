package config

import "github.com/urfave/cli/v3"

// Keys holds the credential file configuration
type Keys struct {
	KeyFile string
}

// Flags returns CLI flags for credential configuration
func (c *Keys) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "key-file",
			Usage:       "Credential file path, overrides the default search locations",
			Destination: &c.KeyFile,
			Sources:     cli.EnvVars("GITTR_KEY_FILE"),
		},
	}
}
