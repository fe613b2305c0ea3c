package middleware

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/ports"
	"github.com/aretw0/portflow/pkg/schema"
)

// EncryptedKey is the only metadata key of an encrypted processor.
const EncryptedKey = "__encrypted__"

// ErrMissingEnvelope is returned when a processor with metadata was stored
// without encryption.
var ErrMissingEnvelope = errors.New("metadata is missing encrypted envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.DefinitionStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts processor
// metadata using AES-GCM. The topology (ids, classes, ports, connections)
// stays readable in the underlying store.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.DefinitionStore) ports.DefinitionStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, name string, def *domain.NetworkDefinition) error {
	envelope := cloneDefinition(def)
	for i, p := range envelope.Processors {
		if len(p.Metadata) == 0 {
			continue
		}
		plainText, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata of %q: %w", p.ID, err)
		}
		ciphertext, err := encrypt(plainText, m.config.ActiveKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt metadata of %q: %w", p.ID, err)
		}
		envelope.Processors[i].Metadata = map[string]any{
			EncryptedKey: base64.StdEncoding.EncodeToString(ciphertext),
		}
	}
	return m.next.Save(ctx, name, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, name string) (*domain.NetworkDefinition, error) {
	def, err := m.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	for i, p := range def.Processors {
		if len(p.Metadata) == 0 {
			continue
		}
		encoded, ok := p.Metadata[EncryptedKey].(string)
		if !ok || len(p.Metadata) != 1 {
			return nil, fmt.Errorf("processor %q: %w", p.ID, ErrMissingEnvelope)
		}
		ciphertext, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
		}
		plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt metadata of %q: %w", p.ID, err)
		}
		var md map[string]any
		dec := json.NewDecoder(bytes.NewReader(plainText))
		dec.UseNumber()
		if err := dec.Decode(&md); err != nil {
			return nil, fmt.Errorf("failed to unmarshal decrypted metadata: %w", err)
		}
		def.Processors[i].Metadata = schema.NormalizeValue(md).(map[string]any)
	}
	return def, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
