package keys_test

import (
	"testing"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/keys"
	"github.com/m-mizutani/gt"
)

func TestDerivePublicKeyDeterminism(t *testing.T) {
	secret := keys.Generate()

	first := gt.R1(keys.DerivePublicKey(secret)).NoError(t)
	second := gt.R1(keys.DerivePublicKey(secret)).NoError(t)

	gt.Value(t, first).Equal(second)
	gt.Value(t, len(first)).Equal(64)
}

func TestDerivePublicKeyAcceptsNsec(t *testing.T) {
	secret := keys.Generate()
	nsec := gt.R1(keys.EncodeSecret(secret)).NoError(t)

	fromHex := gt.R1(keys.DerivePublicKey(secret)).NoError(t)
	fromNsec := gt.R1(keys.DerivePublicKey(nsec)).NoError(t)

	gt.Value(t, fromHex).Equal(fromNsec)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	secret := keys.Generate()
	pubkey := gt.R1(keys.DerivePublicKey(secret)).NoError(t)

	nsec := gt.R1(keys.EncodeSecret(secret)).NoError(t)
	gt.Value(t, gt.R1(keys.DecodeKey(nsec)).NoError(t)).Equal(secret)

	npub := gt.R1(keys.EncodePublicKey(pubkey)).NoError(t)
	gt.Value(t, gt.R1(keys.DecodeKey(npub)).NoError(t)).Equal(pubkey)
}

func TestNormalizeSecretRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"not hex", "zzzz"},
		{"too short", "abcd1234"},
		{"wrong prefix bech32", "npub180cvv07tjdrrgpa0j7j7tmnyl2yr6yr7l8j2gdjqcjfls0uep3usjaxf3f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := keys.NormalizeSecret(tt.secret); err == nil {
				t.Errorf("NormalizeSecret(%q) expected error, got nil", tt.secret)
			}
		})
	}
}

func TestNormalizePublicKey(t *testing.T) {
	secret := keys.Generate()
	pubkey := gt.R1(keys.DerivePublicKey(secret)).NoError(t)
	npub := gt.R1(keys.EncodePublicKey(pubkey)).NoError(t)

	gt.Value(t, gt.R1(keys.NormalizePublicKey(npub)).NoError(t)).Equal(pubkey)
	gt.Value(t, gt.R1(keys.NormalizePublicKey(pubkey)).NoError(t)).Equal(pubkey)

	if _, err := keys.NormalizePublicKey("not-a-key"); err == nil {
		t.Error("NormalizePublicKey accepted malformed input")
	}
}
