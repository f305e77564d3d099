package signing_test

import (
	"testing"

	"github.com/jonesrussell/north-cloud/spotlight/infrastructure/signing"
)

func TestSign_Length(t *testing.T) {
	t.Parallel()

	sig := signing.NewSigner("secret").Sign("message")
	if len(sig) != signing.SignatureLength {
		t.Fatalf("expected signature length %d, got %d", signing.SignatureLength, len(sig))
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	signerA := signing.NewSigner("secret-a")
	signerB := signing.NewSigner("secret-b")
	msg := signing.Message("_pts_featured_post_nonce", "7", "42", "123")

	sig := signerA.Sign(msg)

	if !signerA.Verify(msg, sig) {
		t.Error("expected valid signature to verify")
	}
	if signerB.Verify(msg, sig) {
		t.Error("expected signature from a different secret to fail")
	}
	if signerA.Verify(signing.Message("_pts_featured_post_nonce", "7", "43", "123"), sig) {
		t.Error("expected signature for a different message to fail")
	}
	if signerA.Verify(msg, "") {
		t.Error("expected empty signature to fail")
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	if got := signing.Message("a", "b", "c"); got != "a|b|c" {
		t.Errorf("Message() = %q, want %q", got, "a|b|c")
	}
}
