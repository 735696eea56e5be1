package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Cipher turns a credential bundle into an opaque text-safe token and
// back. Implementations must guarantee Decrypt(Encrypt(p)) == p and
// must fail on a token produced under a different key.
type Cipher interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(token string) ([]byte, error)
}

// KeySize is AES-256.
const KeySize = 32

var ErrInvalidKey = errors.New("encryption key must be 32 bytes")

type aesgcm struct {
	key []byte
}

// NewAESGCM returns a Cipher sealing with AES-256-GCM. Tokens are
// base64 of nonce (12 bytes) followed by the ciphertext, so the
// decrypting side can split the nonce back out.
func NewAESGCM(key []byte) (Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &aesgcm{key: k}, nil
}

// ParseKey accepts the ENCRYPTION_KEY env value either as 64 hex
// characters or as 32 raw bytes.
func ParseKey(s string) ([]byte, error) {
	if len(s) == KeySize*2 {
		if key, err := hex.DecodeString(s); err == nil {
			return key, nil
		}
	}
	if len(s) == KeySize {
		return []byte(s), nil
	}
	return nil, ErrInvalidKey
}

func (a *aesgcm) Encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(a.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	blob := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(blob), nil
}

func (a *aesgcm) Decrypt(token string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	block, err := aes.NewCipher(a.key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	// An Open failure means a wrong key or a corrupted blob; GCM's
	// auth tag does not distinguish the two.
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
