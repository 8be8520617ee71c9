package usecase

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/types"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/keys"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// keyFile is the on-disk credential shape. Different writers used different
// field names over time, so every known alias is accepted.
type keyFile struct {
	Nsec       string `json:"nsec"`
	SecretKey  string `json:"secretKey"`
	PrivateKey string `json:"private_key"`
	Npub       string `json:"npub"`
	PublicKey  string `json:"publicKey"`
	Pubkey     string `json:"pubkey"`
}

func (f keyFile) secret() string {
	switch {
	case f.Nsec != "":
		return f.Nsec
	case f.SecretKey != "":
		return f.SecretKey
	default:
		return f.PrivateKey
	}
}

func (f keyFile) public() string {
	switch {
	case f.Npub != "":
		return f.Npub
	case f.PublicKey != "":
		return f.PublicKey
	default:
		return f.Pubkey
	}
}

// credentialPaths lists the locations searched for a stored identity, in
// priority order.
func (uc *UseCase) credentialPaths() []string {
	if uc.cfg.KeyFile != "" {
		return []string{uc.cfg.KeyFile}
	}
	paths := []string{".nostr-keys.json"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".nostr-identity.json"),
			filepath.Join(home, ".config", "gittr", "keys.json"),
		)
	}
	return paths
}

func loadKeyFile(path string) (*model.Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f keyFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, goerr.Wrap(err, "credential file is not valid JSON", goerr.V("path", path))
	}

	secret := f.secret()
	if secret == "" {
		return nil, goerr.New("credential file has no secret key",
			goerr.T(types.ErrTagMissingField), goerr.V("path", path))
	}
	sk, err := keys.NormalizeSecret(secret)
	if err != nil {
		return nil, err
	}
	derived, err := keys.DerivePublicKey(sk)
	if err != nil {
		return nil, err
	}

	// a stored pubkey that disagrees with the secret means the file is stale
	if pub := f.public(); pub != "" {
		hexPub, err := keys.NormalizePublicKey(pub)
		if err != nil {
			return nil, err
		}
		if hexPub != derived {
			return nil, goerr.New("credential file pubkey does not match secret key",
				goerr.T(types.ErrTagInvalidKey), goerr.V("path", path))
		}
	}

	npub, err := keys.EncodePublicKey(derived)
	if err != nil {
		return nil, err
	}
	return &model.Credentials{
		SecretKey: sk,
		Pubkey:    derived,
		Npub:      npub,
		Source:    path,
	}, nil
}

// LoadCredentials finds a stored identity by searching the well-known file
// locations. A missing file moves on to the next path; a present-but-broken
// file is an error.
func (uc *UseCase) LoadCredentials(ctx context.Context) (*model.Credentials, error) {
	logger := ctxlog.From(ctx)

	for _, path := range uc.credentialPaths() {
		creds, err := loadKeyFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		logger.Debug("loaded credentials", "source", path)
		return creds, nil
	}

	return nil, goerr.New("no stored credentials found",
		goerr.T(types.ErrTagNotFound), goerr.V("searched", uc.credentialPaths()))
}

// resolveSecret returns the secret to sign with: an explicit caller-supplied
// key wins, otherwise the stored identity is used.
func (uc *UseCase) resolveSecret(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return keys.NormalizeSecret(explicit)
	}
	creds, err := uc.LoadCredentials(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "no secret key given and no stored credentials",
			goerr.T(types.ErrTagAuthRequired))
	}
	return creds.SecretKey, nil
}

// PublicKeyInfo is the derived identity view, safe to return to callers.
type PublicKeyInfo struct {
	Pubkey string `json:"pubkey"`
	Npub   string `json:"npub"`
}

// GetPublicKey derives the public identity from an explicit secret key or the
// stored credentials. The secret itself is never part of the result.
func (uc *UseCase) GetPublicKey(ctx context.Context, secretKey string) (*PublicKeyInfo, error) {
	_, pubkey, err := uc.resolvePubkey(ctx, secretKey)
	if err != nil {
		return nil, err
	}
	npub, err := keys.EncodePublicKey(pubkey)
	if err != nil {
		return nil, err
	}
	return &PublicKeyInfo{Pubkey: pubkey, Npub: npub}, nil
}

// resolvePubkey returns the pubkey matching resolveSecret's choice.
func (uc *UseCase) resolvePubkey(ctx context.Context, explicitSecret string) (string, string, error) {
	secret, err := uc.resolveSecret(ctx, explicitSecret)
	if err != nil {
		return "", "", err
	}
	pubkey, err := keys.DerivePublicKey(secret)
	if err != nil {
		return "", "", err
	}
	return secret, pubkey, nil
}
