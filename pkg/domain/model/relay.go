package model

// PublishAck is the per-relay outcome of a best-effort publish. A rejected or
// unreachable relay never fails the overall publish; callers inspect the ack
// list to decide whether enough relays accepted.
type PublishAck struct {
	Relay string `json:"relay"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
