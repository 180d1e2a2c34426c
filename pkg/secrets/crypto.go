package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

// Cipher seals secret values at rest with nacl/secretbox. The nonce is
// prepended to the sealed payload.
type Cipher struct {
	key [32]byte
}

// NewCipher builds a Cipher from a 64-character hex key (32 bytes).
func NewCipher(hexKey string) (*Cipher, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("secret key must be 32 bytes, got %d", len(raw))
	}

	c := &Cipher{}
	copy(c.key[:], raw)
	return c, nil
}

// GenerateKey returns a fresh random key in hex form.
func GenerateKey() (string, error) {
	var key [32]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(key[:]), nil
}

// Seal encrypts plaintext.
func (c *Cipher) Seal(plaintext string) ([]byte, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key), nil
}

// Open decrypts a payload produced by Seal.
func (c *Cipher) Open(sealed []byte) (string, error) {
	if len(sealed) < 24 {
		return "", errors.New("sealed secret too short")
	}

	var nonce [24]byte
	copy(nonce[:], sealed[:24])

	plaintext, ok := secretbox.Open(nil, sealed[24:], &nonce, &c.key)
	if !ok {
		return "", errors.New("secret decryption failed")
	}
	return string(plaintext), nil
}
