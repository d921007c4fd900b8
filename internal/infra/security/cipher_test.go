package security

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestAESCipherRoundTrip(t *testing.T) {
	cipher, err := NewAESCipher(testKey(t))
	if err != nil {
		t.Fatalf("NewAESCipher returned error: %v", err)
	}

	plaintext := "correct horse battery staple"

	encrypted, err := cipher.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	if encrypted == "" {
		t.Fatal("Encrypt returned empty ciphertext")
	}
	if encrypted == plaintext {
		t.Fatal("ciphertext equals plaintext")
	}

	decrypted, err := cipher.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt returned error: %v", err)
	}
	if decrypted != plaintext {
		t.Fatalf("expected %q, got %q", plaintext, decrypted)
	}
}

func TestAESCipherEncryptIsNonDeterministic(t *testing.T) {
	cipher, err := NewAESCipher(testKey(t))
	if err != nil {
		t.Fatalf("NewAESCipher returned error: %v", err)
	}

	first, err := cipher.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	second, err := cipher.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	if first == second {
		t.Fatal("expected distinct ciphertexts for the same plaintext")
	}
}

func TestAESCipherDecryptWithWrongKey(t *testing.T) {
	cipher, err := NewAESCipher(testKey(t))
	if err != nil {
		t.Fatalf("NewAESCipher returned error: %v", err)
	}

	encrypted, err := cipher.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	other, err := NewAESCipher([]byte("fedcba9876543210fedcba9876543210"))
	if err != nil {
		t.Fatalf("NewAESCipher returned error: %v", err)
	}

	if _, err := other.Decrypt(encrypted); !errors.Is(err, ErrDecryption) {
		t.Fatalf("expected ErrDecryption, got %v", err)
	}
}

func TestAESCipherDecryptCorruptInput(t *testing.T) {
	cipher, err := NewAESCipher(testKey(t))
	if err != nil {
		t.Fatalf("NewAESCipher returned error: %v", err)
	}

	cases := map[string]string{
		"not base64":       "%%%not-base64%%%",
		"too short":        base64.StdEncoding.EncodeToString([]byte("abc")),
		"garbage payload":  base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 64))),
		"empty ciphertext": "",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := cipher.Decrypt(input); !errors.Is(err, ErrDecryption) {
				t.Fatalf("expected ErrDecryption, got %v", err)
			}
		})
	}
}

func TestNewAESCipherRejectsBadKeys(t *testing.T) {
	if _, err := NewAESCipher([]byte("short")); err == nil {
		t.Fatal("expected error for invalid key size")
	}

	if _, err := NewAESCipherFromBase64(""); err == nil {
		t.Fatal("expected error for missing key")
	}

	if _, err := NewAESCipherFromBase64("!!!not-base64!!!"); err == nil {
		t.Fatal("expected error for malformed key encoding")
	}
}

func TestNewAESCipherFromBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(testKey(t))

	cipher, err := NewAESCipherFromBase64(encoded)
	if err != nil {
		t.Fatalf("NewAESCipherFromBase64 returned error: %v", err)
	}

	encrypted, err := cipher.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	decrypted, err := cipher.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt returned error: %v", err)
	}
	if decrypted != "secret" {
		t.Fatalf("expected %q, got %q", "secret", decrypted)
	}
}
