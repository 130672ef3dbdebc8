package usecase

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"

	"provelope/internal/domain"
	"provelope/internal/infra/cid"
	cryptoinfra "provelope/internal/infra/crypto"
	"provelope/internal/infra/keyset"
)

// VerifyOptions carries the caller's side of a verification: an expected
// content identifier to pin, an explicitly supplied key set, the fetch
// capability used when a key set must come off the network, and a fallback
// key set location for envelopes that carry none. The fetcher is an explicit
// dependency; nothing here reaches for ambient network access.
type VerifyOptions struct {
	ExpectedContentID string
	KeySet            *domain.KeySet
	Fetcher           keyset.Fetcher
	DefaultKeySetURL  string
}

// VerifyEnvelope runs the verification state machine over a proof envelope.
// It never returns an error: every outcome, including transport trouble
// while fetching keys, lands in the Verification as data. The envelope is
// treated as a read-only view.
func VerifyEnvelope(ctx context.Context, env domain.ProofEnvelope, opts VerifyOptions) domain.Verification {
	content, ok := env.ContentBytes()
	if !ok {
		return fail("", env.KeyID, domain.FailureMissingContent)
	}

	computedID := cid.ComputeContentID(content)
	if opts.ExpectedContentID != "" && opts.ExpectedContentID != computedID {
		return fail(computedID, env.KeyID, domain.FailureCIDMismatch)
	}

	keySetURL := env.KeySetURL
	if keySetURL == "" {
		keySetURL = opts.DefaultKeySetURL
	}

	proof := decodeProofBlob(env.ProofBlob)
	switch proof.Kind {
	case domain.ProofKindStructured:
		return verifyStructured(ctx, proof.Structured, content, computedID, env, keySetURL, opts)
	default:
		return verifyRaw(ctx, proof.Raw, content, computedID, env, keySetURL, opts)
	}
}

// ProofKindOf reports which wire encoding an envelope's proof blob takes,
// using the same disambiguation the engine applies.
func ProofKindOf(env domain.ProofEnvelope) domain.ProofKind {
	return decodeProofBlob(env.ProofBlob).Kind
}

// decodeProofBlob disambiguates the two wire encodings. A blob whose bytes
// parse as JSON with the full structured-proof shape takes the structured
// path; anything else is treated as a raw detached signature.
func decodeProofBlob(blob string) domain.DecodedProof {
	raw, err := base64.RawURLEncoding.DecodeString(blob)
	if err != nil {
		return domain.DecodedProof{Kind: domain.ProofKindRaw}
	}
	var sp domain.StructuredProof
	if err := json.Unmarshal(raw, &sp); err == nil && structuredProofComplete(sp) {
		return domain.DecodedProof{Kind: domain.ProofKindStructured, Structured: &sp}
	}
	return domain.DecodedProof{Kind: domain.ProofKindRaw, Raw: raw}
}

func structuredProofComplete(sp domain.StructuredProof) bool {
	if sp.Version < 1 || sp.Algorithm != "Ed25519" || sp.KeyID == "" {
		return false
	}
	if pub, err := base64.RawURLEncoding.DecodeString(sp.PublicKey); err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	if hash, err := base64.RawURLEncoding.DecodeString(sp.ContentHash); err != nil || len(hash) != 32 {
		return false
	}
	if sig, err := base64.RawURLEncoding.DecodeString(sp.Signature); err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return true
}

func verifyStructured(ctx context.Context, sp *domain.StructuredProof, content []byte, computedID string, env domain.ProofEnvelope, keySetURL string, opts VerifyOptions) domain.Verification {
	pub, _ := base64.RawURLEncoding.DecodeString(sp.PublicKey)
	sig, _ := base64.RawURLEncoding.DecodeString(sp.Signature)

	message := cryptoinfra.SigningMessage(sp.TimestampNS, content, sp.ContentID)
	if err := cryptoinfra.VerifyDetached(pub, message, sig); err != nil {
		return fail(computedID, sp.KeyID, domain.FailureVerifyFailed)
	}

	// Cross-check against a key set when one resolves. The embedded key is
	// self-authenticating, so an unresolvable key set (including a failed
	// fetch) skips this step rather than failing the call.
	ks, _ := keyset.Resolve(ctx, opts.KeySet, env.InlineKeySet, keySetURL, opts.Fetcher)
	if ks != nil {
		record := keyset.Select(ks, sp.KeyID)
		if record == nil {
			return fail(computedID, sp.KeyID, domain.FailureKIDNotFound)
		}
		known, err := record.PublicKey()
		if err != nil || !bytes.Equal(known, pub) {
			return fail(computedID, sp.KeyID, domain.FailurePubKeyMismatch)
		}
	}

	return domain.Verification{OK: true, ContentID: computedID, KeyID: sp.KeyID}
}

func verifyRaw(ctx context.Context, sig, content []byte, computedID string, env domain.ProofEnvelope, keySetURL string, opts VerifyOptions) domain.Verification {
	if len(sig) != ed25519.SignatureSize {
		return fail(computedID, env.KeyID, domain.FailureInvalidSignatureFormat)
	}

	ks, fetchErr := keyset.Resolve(ctx, opts.KeySet, env.InlineKeySet, keySetURL, opts.Fetcher)
	if ks == nil {
		if fetchErr != nil {
			return fail(computedID, env.KeyID, domain.FailureKeySetFetchFailed)
		}
		return fail(computedID, env.KeyID, domain.FailureNoKeySet)
	}

	record := keyset.Select(ks, env.KeyID)
	if record == nil {
		return fail(computedID, env.KeyID, domain.FailureKIDNotFound)
	}
	pub, err := record.PublicKey()
	if err != nil {
		return fail(computedID, env.KeyID, domain.FailureInvalidKey)
	}

	// Legacy mode: the signature covers the raw content bytes directly, with
	// no domain-separation framing.
	if err := cryptoinfra.VerifyDetached(pub, content, sig); err != nil {
		return fail(computedID, env.KeyID, domain.FailureSignatureInvalid)
	}
	return domain.Verification{OK: true, ContentID: computedID, KeyID: env.KeyID}
}

func fail(contentID, keyID string, reason domain.FailureReason) domain.Verification {
	return domain.Verification{ContentID: contentID, KeyID: keyID, FailureReason: reason}
}
