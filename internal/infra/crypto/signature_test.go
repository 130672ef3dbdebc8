package crypto

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

func TestSigningMessageFraming(t *testing.T) {
	content := []byte("payload")
	withID := SigningMessage(7, content, "bexample")
	withoutID := SigningMessage(7, content, "")

	if !bytes.HasPrefix(withID, []byte("OPE1\x00")) {
		t.Fatalf("message missing domain prefix: %q", withID)
	}
	wantTS := []byte{0, 0, 0, 0, 0, 0, 0, 7}
	if !bytes.Equal(withID[5:13], wantTS) {
		t.Fatalf("timestamp not big-endian 8 bytes: %v", withID[5:13])
	}
	if !bytes.HasSuffix(withID, append([]byte{0}, []byte("bexample")...)) {
		t.Fatalf("content id not appended: %q", withID)
	}
	if bytes.Equal(withID, withoutID) {
		t.Fatal("content id binding did not change the message")
	}
	if !bytes.HasSuffix(withoutID, content) {
		t.Fatalf("content bytes not at message tail: %q", withoutID)
	}
}

func TestVerifyDetachedRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	message := SigningMessage(1234567890, []byte(`{"x":1}`+"\n"), "bsomecid")
	sig := ed25519.Sign(priv, message)

	if err := VerifyDetached(pub, message, sig); err != nil {
		t.Fatalf("round trip verify failed: %v", err)
	}

	t.Run("flipped message byte", func(t *testing.T) {
		for i := range message {
			mutated := append([]byte(nil), message...)
			mutated[i] ^= 0x01
			if err := VerifyDetached(pub, mutated, sig); err == nil {
				t.Fatalf("verify succeeded with mutated message byte %d", i)
			}
		}
	})

	t.Run("flipped signature byte", func(t *testing.T) {
		mutated := append([]byte(nil), sig...)
		mutated[0] ^= 0x01
		if err := VerifyDetached(pub, message, mutated); err == nil {
			t.Fatal("verify succeeded with mutated signature")
		}
	})

	t.Run("flipped key byte", func(t *testing.T) {
		mutated := append(ed25519.PublicKey(nil), pub...)
		mutated[0] ^= 0x01
		if err := VerifyDetached(mutated, message, sig); err == nil {
			t.Fatal("verify succeeded with mutated public key")
		}
	})
}

func TestVerifyDetachedLengthChecks(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	message := []byte("msg")
	sig := ed25519.Sign(priv, message)

	if err := VerifyDetached(pub[:31], message, sig); err == nil {
		t.Fatal("expected error for short public key")
	}
	if err := VerifyDetached(pub, message, sig[:63]); err == nil {
		t.Fatal("expected error for short signature")
	}
}
