package crypto

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func testKey() []byte {
	return bytes.Repeat([]byte{7}, 32)
}

func TestPINCipher_RoundTrip(t *testing.T) {
	c, err := NewPINCipher(testKey())
	if err != nil {
		t.Fatalf("NewPINCipher() error = %v", err)
	}

	sealed, err := c.Encrypt("LRN-0042")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if sealed == "LRN-0042" {
		t.Fatal("Encrypt() returned plaintext")
	}

	again, _ := c.Encrypt("LRN-0042")
	if again == sealed {
		t.Error("Encrypt() reused a nonce")
	}

	plain, err := c.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if plain != "LRN-0042" {
		t.Errorf("Decrypt() = %q", plain)
	}
}

func TestPINCipher_DecryptFailures(t *testing.T) {
	c, _ := NewPINCipher(testKey())
	other, _ := NewPINCipher(bytes.Repeat([]byte{9}, 32))
	foreign, _ := other.Encrypt("LRN-0042")

	tests := []struct {
		name       string
		ciphertext string
	}{
		{"not base64", "%%%"},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"wrong key", foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Decrypt(tt.ciphertext); !errors.Is(err, ErrInvalidCiphertext) {
				t.Errorf("Decrypt() error = %v, want ErrInvalidCiphertext", err)
			}
		})
	}
}

func TestNewPINCipherFromBase64(t *testing.T) {
	if _, err := NewPINCipherFromBase64(base64.StdEncoding.EncodeToString(testKey())); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
	if _, err := NewPINCipherFromBase64(base64.StdEncoding.EncodeToString([]byte("short"))); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("short key error = %v", err)
	}
	if _, err := NewPINCipherFromBase64("not base64!"); err == nil {
		t.Error("garbage key accepted")
	}
}
