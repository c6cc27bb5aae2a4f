package envelope

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

const (
	FileKeySize = 32
	IVSize      = aes.BlockSize
)

// Engine implements envelope encryption: each file gets a random AES-256 key,
// the payload is encrypted under that key, and the key itself is wrapped
// under a master key derived from a configured secret. AES-CBC carries no
// integrity tag; tampering is caught by the plaintext hash check at
// retrieval.
type Engine struct {
	masterKey []byte
}

// NewEngine derives the master key as SHA-256 of the configured secret.
func NewEngine(masterSecret string) (*Engine, error) {
	if masterSecret == "" {
		return nil, errors.New("master secret is required")
	}
	sum := sha256.Sum256([]byte(masterSecret))
	return &Engine{masterKey: sum[:]}, nil
}

func (e *Engine) NewFileKey() ([]byte, error) {
	return randomBytes(FileKeySize)
}

func (e *Engine) NewIV() ([]byte, error) {
	return randomBytes(IVSize)
}

// Encrypt encrypts plaintext with AES-256-CBC and PKCS#7 padding.
func (e *Engine) Encrypt(plaintext, key, iv []byte) ([]byte, error) {
	block, err := newBlock(key, iv)
	if err != nil {
		return nil, err
	}
	padded := pad(plaintext)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt reverses Encrypt. A padding or format mismatch returns
// ErrDecryptionFailed rather than garbage.
func (e *Engine) Decrypt(ciphertext, key, iv []byte) ([]byte, error) {
	block, err := newBlock(key, iv)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, domain.ErrDecryptionFailed
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return unpad(out)
}

// WrapKey encrypts a file key under the master key. The wrap IV is generated
// independently of the file-cipher IV; the original system reused one IV for
// both, which weakens CBC, so both IVs are stored per record instead.
func (e *Engine) WrapKey(fileKey, wrapIV []byte) (string, error) {
	if len(fileKey) != FileKeySize {
		return "", fmt.Errorf("file key must be %d bytes, got %d", FileKeySize, len(fileKey))
	}
	wrapped, err := e.Encrypt(fileKey, e.masterKey, wrapIV)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(wrapped), nil
}

// UnwrapKey recovers a file key from its hex-encoded wrapped form. A wrong
// master key surfaces as ErrDecryptionFailed or as a key of the wrong length.
func (e *Engine) UnwrapKey(keyEncryptedHex string, wrapIV []byte) ([]byte, error) {
	wrapped, err := hex.DecodeString(keyEncryptedHex)
	if err != nil {
		return nil, domain.ErrDecryptionFailed
	}
	fileKey, err := e.Decrypt(wrapped, e.masterKey, wrapIV)
	if err != nil {
		return nil, err
	}
	if len(fileKey) != FileKeySize {
		return nil, domain.ErrDecryptionFailed
	}
	return fileKey, nil
}

// KeyHashHex is the on-chain commitment to the unwrapped file key.
func KeyHashHex(fileKey []byte) string {
	sum := sha256.Sum256(fileKey)
	return hex.EncodeToString(sum[:])
}

func newBlock(key, iv []byte) (cipher.Block, error) {
	if len(key) != FileKeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", FileKeySize, len(key))
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("iv must be %d bytes, got %d", IVSize, len(iv))
	}
	return aes.NewCipher(key)
}

func pad(in []byte) []byte {
	n := aes.BlockSize - len(in)%aes.BlockSize
	return append(append([]byte{}, in...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(in []byte) ([]byte, error) {
	if len(in) == 0 {
		return nil, domain.ErrDecryptionFailed
	}
	n := int(in[len(in)-1])
	if n == 0 || n > aes.BlockSize || n > len(in) {
		return nil, domain.ErrDecryptionFailed
	}
	for _, b := range in[len(in)-n:] {
		if int(b) != n {
			return nil, domain.ErrDecryptionFailed
		}
	}
	return in[:len(in)-n], nil
}

func randomBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, out); err != nil {
		return nil, err
	}
	return out, nil
}
