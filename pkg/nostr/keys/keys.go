// Package keys derives and encodes Nostr identities. All functions are pure;
// a secret key is accepted either as 64 hex characters or in nsec bech32 form.
package keys

import (
	"encoding/hex"
	"strings"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

// NormalizeSecret converts a secret key into lowercase hex. nsec input is
// bech32-decoded; hex input is validated as a 32-byte value.
func NormalizeSecret(secret string) (string, error) {
	if secret == "" {
		return "", goerr.New("secret key is required", goerr.T(types.ErrTagInvalidKey))
	}

	if strings.HasPrefix(secret, "nsec1") {
		prefix, value, err := nip19.Decode(secret)
		if err != nil {
			return "", goerr.Wrap(err, "failed to decode nsec key", goerr.T(types.ErrTagDecode))
		}
		if prefix != "nsec" {
			return "", goerr.New("unexpected bech32 prefix for secret key",
				goerr.T(types.ErrTagDecode), goerr.V("prefix", prefix))
		}
		return value.(string), nil
	}

	hexKey := strings.ToLower(secret)
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return "", goerr.Wrap(err, "secret key is not valid hex", goerr.T(types.ErrTagInvalidKey))
	}
	if len(raw) != 32 {
		return "", goerr.New("secret key must be 32 bytes",
			goerr.T(types.ErrTagInvalidKey), goerr.V("bytes", len(raw)))
	}
	return hexKey, nil
}

// DerivePublicKey returns the hex public key for a secret in hex or nsec form.
// The derivation is deterministic.
func DerivePublicKey(secret string) (string, error) {
	sk, err := NormalizeSecret(secret)
	if err != nil {
		return "", err
	}
	pub, err := nostr.GetPublicKey(sk)
	if err != nil {
		return "", goerr.Wrap(err, "failed to derive public key", goerr.T(types.ErrTagInvalidKey))
	}
	return pub, nil
}

// DecodeKey decodes an npub or nsec value into hex.
func DecodeKey(encoded string) (string, error) {
	prefix, value, err := nip19.Decode(encoded)
	if err != nil {
		return "", goerr.Wrap(err, "failed to decode bech32 key", goerr.T(types.ErrTagDecode))
	}
	if prefix != "npub" && prefix != "nsec" {
		return "", goerr.New("unexpected bech32 prefix",
			goerr.T(types.ErrTagDecode), goerr.V("prefix", prefix))
	}
	return value.(string), nil
}

// EncodeSecret encodes a hex secret key as nsec.
func EncodeSecret(hexKey string) (string, error) {
	encoded, err := nip19.EncodePrivateKey(hexKey)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode secret key", goerr.T(types.ErrTagInvalidKey))
	}
	return encoded, nil
}

// EncodePublicKey encodes a hex public key as npub.
func EncodePublicKey(hexKey string) (string, error) {
	encoded, err := nip19.EncodePublicKey(hexKey)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode public key", goerr.T(types.ErrTagInvalidKey))
	}
	return encoded, nil
}

// NormalizePublicKey converts npub input to hex and passes hex through.
func NormalizePublicKey(pubkey string) (string, error) {
	if strings.HasPrefix(pubkey, "npub1") {
		return DecodeKey(pubkey)
	}
	raw, err := hex.DecodeString(pubkey)
	if err != nil || len(raw) != 32 {
		return "", goerr.New("public key must be 32 bytes of hex or npub",
			goerr.T(types.ErrTagInvalidKey))
	}
	return strings.ToLower(pubkey), nil
}

// Generate creates a fresh secret key in hex form.
func Generate() string {
	return nostr.GeneratePrivateKey()
}
