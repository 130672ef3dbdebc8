package domain

import "encoding/base64"

// ProofEnvelope is the wire wrapper carried alongside a response payload. It
// is read-only once received; verification never mutates it.
type ProofEnvelope struct {
	ContentID    string  `json:"content_id"`
	KeyID        string  `json:"key_id"`
	ProofBlob    string  `json:"proof_blob"`
	KeySetURL    string  `json:"key_set_url,omitempty"`
	InlineKeySet *KeySet `json:"inline_key_set,omitempty"`

	// ContentBase64 holds the exact canonical bytes that were signed,
	// base64url encoded. Verification fails hard when it is absent; the
	// content is never inferred from the payload.
	ContentBase64 string `json:"content_bytes,omitempty"`
}

// ContentBytes decodes the signed content. The second return is false when
// the field is absent or not valid base64url.
func (e ProofEnvelope) ContentBytes() ([]byte, bool) {
	if e.ContentBase64 == "" {
		return nil, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(e.ContentBase64)
	if err != nil {
		return nil, false
	}
	return raw, true
}

// StructuredProof is the self-describing JSON proof format (OPE). It embeds
// its own public key, so it can verify without a key set; a resolvable key
// set is used only as a cross-check.
type StructuredProof struct {
	Version     int    `json:"version"`
	Algorithm   string `json:"algorithm"`
	TimestampNS uint64 `json:"timestamp_ns"`
	KeyID       string `json:"key_id"`
	PublicKey   string `json:"public_key"`
	ContentHash string `json:"content_hash"`
	Signature   string `json:"signature"`
	ContentID   string `json:"content_id,omitempty"`
}

// ProofKind tags the two wire encodings a proof blob can take.
type ProofKind string

const (
	ProofKindStructured ProofKind = "structured"
	ProofKindRaw        ProofKind = "raw"
)

// DecodedProof is the result of disambiguating a proof blob. Exactly one of
// Structured or Raw is populated, selected by Kind.
type DecodedProof struct {
	Kind       ProofKind
	Structured *StructuredProof
	Raw        []byte
}
