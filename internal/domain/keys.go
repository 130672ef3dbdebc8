package domain

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
)

// KeyRecord is a single JWKS-style public key entry. Only OKP/Ed25519 keys
// are usable for envelope verification; anything else is skipped during
// selection.
type KeyRecord struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use,omitempty"`
}

// PublicKey decodes the key material. Errors when X is absent or does not
// decode to a 32-byte Ed25519 public key.
func (k KeyRecord) PublicKey() (ed25519.PublicKey, error) {
	if k.X == "" {
		return nil, errors.New("key record has no public key material")
	}
	raw, err := base64.RawURLEncoding.DecodeString(k.X)
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.New("invalid ed25519 public key length")
	}
	return ed25519.PublicKey(raw), nil
}

// KeySet is an ordered collection of key records. Order only matters for the
// first-usable tie-break when no kid is requested.
type KeySet struct {
	Keys []KeyRecord `json:"keys"`
}
