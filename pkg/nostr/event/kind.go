// Package event builds the signed Nostr records used by the git workflow
// (NIP-34 plus the reaction/watch/auth kinds the bridge and social tools use).
// Builders only construct and sign; publishing is a separate step.
package event

// NIP-34 and related event kinds.
const (
	KindRepository      = 30617 // repository announcement (addressable)
	KindRepositoryState = 30618 // repository state: refs and commits (addressable)
	KindCommit          = 30620 // commit record published after a bridge push
	KindPatch           = 1617  // patch / bounty claim
	KindPullRequest     = 1618
	KindPRUpdate        = 1619
	KindIssue           = 1621
	KindStatusOpen      = 1630
	KindStatusApplied   = 1631
	KindStatusClosed    = 1632
	KindStatusDraft     = 1633
	KindReaction        = 7     // star / unstar
	KindWatch           = 10001 // repository watch marker
	KindBridgeAuth      = 24242 // bridge push-challenge assertion
)
