package cid

import (
	"encoding/base32"

	"lukechampine.com/blake3"
)

// Multihash framing for a BLAKE3-256 digest: function code then digest
// length in bytes.
const (
	funcCodeBlake3 = 0x1e
	digestSize     = 32
)

// multibasePrefix identifies base32 lowercase. This is the only wire format;
// producers and consumers must agree on it exactly.
const multibasePrefix = "b"

var base32Lower = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// ComputeContentID derives the self-describing content identifier for the
// given bytes. Pure function: identical input always yields an identical
// identifier, on any host.
func ComputeContentID(content []byte) string {
	digest := blake3.Sum256(content)

	framed := make([]byte, 0, 2+digestSize)
	framed = append(framed, funcCodeBlake3, digestSize)
	framed = append(framed, digest[:]...)

	return multibasePrefix + base32Lower.EncodeToString(framed)
}
