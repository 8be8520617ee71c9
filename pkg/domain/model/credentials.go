package model

// Credentials is a locally stored Nostr identity. SecretKey is hex; the
// loader normalizes nsec input and verifies that Pubkey matches the key
// derived from SecretKey before trusting the pair.
type Credentials struct {
	SecretKey string `json:"-"`
	Pubkey    string `json:"pubkey"`
	Npub      string `json:"npub,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Masked returns a copy safe for tool output: the secret is reduced to a
// short prefix.
func (c Credentials) Masked() Credentials {
	out := c
	if len(out.SecretKey) > 8 {
		out.SecretKey = out.SecretKey[:8] + "..."
	}
	return out
}

// MaskedView is the JSON shape returned by the loadCredentials tool.
type MaskedView struct {
	SecretKey string `json:"secretKey"`
	Pubkey    string `json:"pubkey"`
	Npub      string `json:"npub,omitempty"`
	Source    string `json:"source,omitempty"`
}

// View converts masked credentials into the serializable tool response.
func (c Credentials) View() MaskedView {
	m := c.Masked()
	return MaskedView{
		SecretKey: m.SecretKey,
		Pubkey:    m.Pubkey,
		Npub:      m.Npub,
		Source:    m.Source,
	}
}
