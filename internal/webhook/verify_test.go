package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"action":"closed"}`)
	secret := "webhook-secret"

	tests := []struct {
		name      string
		signature string
		secret    string
		want      bool
	}{
		{
			name:      "valid signature",
			signature: sign(payload, secret),
			secret:    secret,
			want:      true,
		},
		{
			name:      "wrong secret",
			signature: sign(payload, "other-secret"),
			secret:    secret,
			want:      false,
		},
		{
			name:      "missing prefix",
			signature: "deadbeef",
			secret:    secret,
			want:      false,
		},
		{
			name:      "empty signature",
			signature: "",
			secret:    secret,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifySignature(payload, tt.signature, tt.secret); got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateSignatureHeader(t *testing.T) {
	if err := ValidateSignatureHeader(""); err == nil {
		t.Error("expected error for empty header")
	}
	if err := ValidateSignatureHeader("sha1=abc"); err == nil {
		t.Error("expected error for sha1 header")
	}
	if err := ValidateSignatureHeader("sha256=abc"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
