package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures across the module. Tool controllers map any
// tagged error to a uniform error payload so transports never see internal
// error types.
var (
	// ErrTagInvalidKey: secret key is not 32 bytes of hex nor a valid nsec
	ErrTagInvalidKey = goerr.NewTag("InvalidKeyFormat")

	// ErrTagDecode: bech32 decode failed (bad checksum or unexpected prefix)
	ErrTagDecode = goerr.NewTag("DecodeError")

	// ErrTagMissingField: caller omitted a required parameter
	ErrTagMissingField = goerr.NewTag("MissingField")

	// ErrTagSigning: event could not be signed with the supplied key
	ErrTagSigning = goerr.NewTag("SigningError")

	// ErrTagAllRelaysUnreachable: every relay in a query/publish set failed
	ErrTagAllRelaysUnreachable = goerr.NewTag("AllRelaysUnreachable")

	// ErrTagAuthRequired: bridge push attempted without a secret key
	ErrTagAuthRequired = goerr.NewTag("AuthenticationRequired")

	// ErrTagBridgePushFailed: bridge rejected the push, its error text is attached
	ErrTagBridgePushFailed = goerr.NewTag("BridgePushFailed")

	// ErrTagBridgeUnreachable: transport-level failure talking to the bridge
	ErrTagBridgeUnreachable = goerr.NewTag("BridgeUnreachable")

	// ErrTagSourceNotFound: referenced parent entity (e.g. fork source) is absent
	ErrTagSourceNotFound = goerr.NewTag("SourceNotFound")

	// ErrTagNotFound: requested object (file, repo) does not exist
	ErrTagNotFound = goerr.NewTag("NotFound")
)

// ErrorTag returns the taxonomy name of the first matching tag on err, or
// "InternalError" when the error carries no known tag.
func ErrorTag(err error) string {
	// goerr/v2's tag type is unexported, so the tag/name pairs cannot be
	// held in a slice; check them in order instead.
	switch {
	case goerr.HasTag(err, ErrTagInvalidKey):
		return "InvalidKeyFormat"
	case goerr.HasTag(err, ErrTagDecode):
		return "DecodeError"
	case goerr.HasTag(err, ErrTagMissingField):
		return "MissingField"
	case goerr.HasTag(err, ErrTagSigning):
		return "SigningError"
	case goerr.HasTag(err, ErrTagAllRelaysUnreachable):
		return "AllRelaysUnreachable"
	case goerr.HasTag(err, ErrTagAuthRequired):
		return "AuthenticationRequired"
	case goerr.HasTag(err, ErrTagBridgePushFailed):
		return "BridgePushFailed"
	case goerr.HasTag(err, ErrTagBridgeUnreachable):
		return "BridgeUnreachable"
	case goerr.HasTag(err, ErrTagSourceNotFound):
		return "SourceNotFound"
	case goerr.HasTag(err, ErrTagNotFound):
		return "NotFound"
	}
	return "InternalError"
}
