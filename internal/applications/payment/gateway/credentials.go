package gateway

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"

	apperrors "cartflow/pkg/errors"
)

// CredentialCipher seals and opens gateway credential blobs with
// AES-256-GCM. The key comes from configuration; blobs live in the
// gateway_configurations table and are opened only at dispatch time.
type CredentialCipher struct {
	aead cipher.AEAD
}

func NewCredentialCipher(hexKey string) (*CredentialCipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != 32 {
		return nil, apperrors.PaymentService(apperrors.ErrCodePaymentGatewayExternal).
			Errorf("credential encryption key must be 32 bytes hex-encoded")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &CredentialCipher{aead: aead}, nil
}

// Seal encrypts the credential map; the nonce is prefixed to the blob.
func (c *CredentialCipher) Seal(creds Credentials) ([]byte, error) {
	plaintext, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a blob produced by Seal.
func (c *CredentialCipher) Open(blob []byte) (Credentials, error) {
	if len(blob) < c.aead.NonceSize() {
		return nil, apperrors.PaymentService(apperrors.ErrCodePaymentGatewayExternal).
			Errorf("credential blob truncated")
	}
	nonce, ciphertext := blob[:c.aead.NonceSize()], blob[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, apperrors.PaymentService(apperrors.ErrCodePaymentGatewayExternal).
			Wrap(err)
	}
	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, err
	}
	return creds, nil
}
