// Package cryptox seals the locally persisted session state so a copied
// state database is useless without the per-device secret file.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"

	"github.com/akashshetty1997/devmatch-cli/internal/common"
)

const (
	secretSize = 32
	nonceSize  = 12
	saltSize   = 16
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// DeriveKey derives a 256-bit AES key from a device secret and salt
// using argon2id.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// LoadOrCreateDeviceSecret reads the device secret from path, creating it
// with a fresh random value on first use. The file is created 0600.
func LoadOrCreateDeviceSecret(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil {
		if len(secret) != secretSize {
			return nil, fmt.Errorf("device secret %s: unexpected size %d", path, len(secret))
		}
		return secret, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read device secret: %w", err)
	}

	secret = common.GenerateRandByteArray(secretSize)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("mkdir for device secret: %w", err)
	}
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("write device secret: %w", err)
	}
	return secret, nil
}

// Seal encrypts plaintext with AES-GCM under the given key. The output is
// salt || nonce || ciphertext, where salt is the argon2 salt used together
// with the caller's secret to derive the actual cipher key.
func Seal(plaintext, secret []byte) ([]byte, error) {
	salt := common.GenerateRandByteArray(saltSize)
	nonce := common.GenerateRandByteArray(nonceSize)

	aead, err := newAEAD(DeriveKey(secret, salt))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal. It returns an error if the data is
// truncated, was sealed under a different secret, or was tampered with.
func Open(data, secret []byte) ([]byte, error) {
	if len(data) < saltSize+nonceSize {
		return nil, ErrCiphertextTooShort
	}
	salt, nonce, ciphertext := data[:saltSize], data[saltSize:saltSize+nonceSize], data[saltSize+nonceSize:]

	aead, err := newAEAD(DeriveKey(secret, salt))
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed state: %w", err)
	}
	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
