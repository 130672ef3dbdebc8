package crypto

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
)

// Domain separation for structured proofs. The prefix and separators keep a
// signature from being replayed against unrelated content or protocols.
const (
	signingPrefix = "OPE1"
	separator     = byte(0x00)
)

// SigningMessage rebuilds the exact byte message a structured proof signs:
// prefix, separator, 8-byte big-endian timestamp, separator, content bytes,
// and, only when the proof binds a content id, a separator followed by the
// UTF-8 bytes of that id.
func SigningMessage(timestampNS uint64, content []byte, contentID string) []byte {
	msg := make([]byte, 0, len(signingPrefix)+10+len(content)+1+len(contentID))
	msg = append(msg, signingPrefix...)
	msg = append(msg, separator)
	msg = binary.BigEndian.AppendUint64(msg, timestampNS)
	msg = append(msg, separator)
	msg = append(msg, content...)
	if contentID != "" {
		msg = append(msg, separator)
		msg = append(msg, contentID...)
	}
	return msg
}

// VerifyDetached checks a detached Ed25519 signature over message.
func VerifyDetached(pub ed25519.PublicKey, message, sig []byte) error {
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid ed25519 public key length: %d", len(pub))
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid ed25519 signature length: %d", len(sig))
	}
	if !ed25519.Verify(pub, message, sig) {
		return errors.New("signature verification failed")
	}
	return nil
}
