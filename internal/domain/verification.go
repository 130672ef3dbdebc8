package domain

import "time"

// FailureReason names the terminal failure states of the verification state
// machine. Reasons are data, not errors: the engine never raises across the
// verification boundary.
type FailureReason string

const (
	FailureMissingContent         FailureReason = "MISSING_CONTENT"
	FailureCIDMismatch            FailureReason = "CID_MISMATCH"
	FailureVerifyFailed           FailureReason = "VERIFY_FAILED"
	FailurePubKeyMismatch         FailureReason = "PUBKEY_MISMATCH"
	FailureKIDNotFound            FailureReason = "KID_NOT_FOUND"
	FailureInvalidSignatureFormat FailureReason = "INVALID_SIGNATURE_FORMAT"
	FailureNoKeySet               FailureReason = "NO_KEY_SET"
	FailureInvalidKey             FailureReason = "INVALID_KEY"
	FailureSignatureInvalid       FailureReason = "SIGNATURE_INVALID"
	FailureKeySetFetchFailed      FailureReason = "KEY_SET_FETCH_FAILED"
)

// Verification is the immutable outcome of a single verify call. ContentID
// carries the recomputed identifier and KeyID whichever kid was in scope,
// even on failure, for diagnostics. FailureReason is non-empty exactly when
// OK is false.
type Verification struct {
	OK            bool          `json:"ok"`
	ContentID     string        `json:"content_id,omitempty"`
	KeyID         string        `json:"key_id,omitempty"`
	FailureReason FailureReason `json:"failure_reason,omitempty"`
}

// VerificationReceipt is the persisted audit record of a verification
// performed by the daemon.
type VerificationReceipt struct {
	ID            string
	ContentID     string
	KeyID         string
	OK            bool
	FailureReason string
	ProofKind     string
	VerifiedAt    time.Time
}
