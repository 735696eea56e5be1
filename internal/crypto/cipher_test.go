package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, KeySize)
}

func TestNewAESGCM_RejectsShortKey(t *testing.T) {
	if _, err := NewAESGCM([]byte("too-short")); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c, err := NewAESGCM(testKey(0x42))
	if err != nil {
		t.Fatalf("NewAESGCM error: %v", err)
	}

	plaintexts := [][]byte{
		[]byte("x"),
		[]byte(`{"platform":"woocommerce","baseUrl":"https://shop.example","secrets":{"consumerKey":"ck_live_1"}}`),
		bytes.Repeat([]byte{0x00, 0xFF}, 512),
	}
	for _, p := range plaintexts {
		token, err := c.Encrypt(p)
		if err != nil {
			t.Fatalf("Encrypt error: %v", err)
		}
		got, err := c.Decrypt(token)
		if err != nil {
			t.Fatalf("Decrypt error: %v", err)
		}
		if !bytes.Equal(got, p) {
			t.Fatalf("round trip mismatch: got %q, want %q", got, p)
		}
	}
}

func TestEncrypt_NonDeterministicNonce(t *testing.T) {
	c, _ := NewAESGCM(testKey(0x42))

	t1, err := c.Encrypt([]byte("same plaintext"))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	t2, err := c.Encrypt([]byte("same plaintext"))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if t1 == t2 {
		t.Fatal("expected distinct tokens for same plaintext")
	}
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	c1, _ := NewAESGCM(testKey(0x01))
	c2, _ := NewAESGCM(testKey(0x02))

	token, err := c1.Encrypt([]byte("secret material"))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if _, err := c2.Decrypt(token); err == nil {
		t.Fatal("expected decryption under a different key to fail")
	}
}

func TestDecrypt_MalformedToken(t *testing.T) {
	c, _ := NewAESGCM(testKey(0x42))

	for _, token := range []string{"", "not base64!!", "YQ=="} {
		if _, err := c.Decrypt(token); err == nil {
			t.Fatalf("expected error for token %q", token)
		}
	}
}

func TestParseKey(t *testing.T) {
	raw := strings.Repeat("k", KeySize)
	key, err := ParseKey(raw)
	if err != nil {
		t.Fatalf("ParseKey raw error: %v", err)
	}
	if !bytes.Equal(key, []byte(raw)) {
		t.Fatal("raw key not preserved")
	}

	hexKey := strings.Repeat("ab", KeySize)
	key, err = ParseKey(hexKey)
	if err != nil {
		t.Fatalf("ParseKey hex error: %v", err)
	}
	if len(key) != KeySize {
		t.Fatalf("hex key length = %d, want %d", len(key), KeySize)
	}

	if _, err := ParseKey("short"); err == nil {
		t.Fatal("expected error for short key string")
	}
}
