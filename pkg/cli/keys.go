package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/cli/config"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/keys"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdKeys() *cli.Command {
	return &cli.Command{
		Name:  "keys",
		Usage: "Manage the local Nostr identity",
		Commands: []*cli.Command{
			cmdKeysGenerate(),
			cmdKeysInspect(),
		},
	}
}

func cmdKeysGenerate() *cli.Command {
	var outFile string

	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a fresh identity and print it (or write a key file)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Usage:       "Write the identity to this file instead of stdout",
				Destination: &outFile,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			secret := keys.Generate()
			pubkey, err := keys.DerivePublicKey(secret)
			if err != nil {
				return err
			}
			nsec, err := keys.EncodeSecret(secret)
			if err != nil {
				return err
			}
			npub, err := keys.EncodePublicKey(pubkey)
			if err != nil {
				return err
			}

			identity := map[string]string{
				"nsec":   nsec,
				"npub":   npub,
				"pubkey": pubkey,
			}
			raw, err := json.MarshalIndent(identity, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to encode identity")
			}

			if outFile == "" {
				fmt.Println(string(raw))
				return nil
			}
			if _, err := os.Stat(outFile); err == nil {
				return goerr.New("key file already exists, refusing to overwrite",
					goerr.V("path", outFile))
			}
			if err := os.WriteFile(outFile, raw, 0o600); err != nil {
				return goerr.Wrap(err, "failed to write key file", goerr.V("path", outFile))
			}
			ctxlog.From(ctx).Info("identity written", "path", outFile, "npub", npub)
			return nil
		},
	}
}

func cmdKeysInspect() *cli.Command {
	var keysCfg config.Keys

	return &cli.Command{
		Name:  "inspect",
		Usage: "Locate the stored identity and print a masked view",
		Flags: keysCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			// only credential loading is needed, clients stay nil
			uc := usecase.New(nil, nil, usecase.Config{KeyFile: keysCfg.KeyFile})
			creds, err := uc.LoadCredentials(ctx)
			if err != nil {
				return err
			}

			raw, err := json.MarshalIndent(creds.View(), "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to encode credentials view")
			}
			fmt.Println(string(raw))
			return nil
		},
	}
}
