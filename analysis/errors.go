package analysis

import "errors"

var (
	// ErrStaleEdit rejects a change notification whose version is not
	// exactly one greater than the document's current version. The
	// session logs and ignores the edit; state is unchanged and the
	// client is expected to resync with a full document.
	ErrStaleEdit = errors.New("analysis: stale edit rejected")

	// ErrSuperseded abandons a read query when the document changed
	// while the result was being computed, so stale completions are
	// never served after the user kept typing.
	ErrSuperseded = errors.New("analysis: query superseded by a newer edit")

	// ErrUnknownDocument reports an operation against a document that
	// is not open in the session.
	ErrUnknownDocument = errors.New("analysis: unknown document")
)
