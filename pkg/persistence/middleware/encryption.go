package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

var (
	// ErrNotSealed is returned when an encrypted store finds a plaintext session.
	ErrNotSealed = errors.New("session is not sealed")
	// ErrNoMatchingKey is returned when none of the configured keys opens a session.
	ErrNoMatchingKey = errors.New("no configured key opens the session")
)

// EncryptionConfig holds the keys used to seal sessions.
type EncryptionConfig struct {
	// ActiveKey seals every write.
	ActiveKey []byte
	// FallbackKeys are only tried on read, so old sessions stay readable
	// after a key rotation and get resealed with ActiveKey on their next write.
	FallbackKeys [][]byte
}

// DecodeKey parses a base64-encoded AES-256 key.
func DecodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid base64: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes (AES-256), got %d", KeySize, len(key))
	}
	return key, nil
}

// NewEncryptionMiddleware seals sessions with AES-GCM.
//
// The stored envelope keeps the session id, the position label and the
// timestamps in clear so listings and retention work without a key. Brief,
// outputs and selections travel inside Sealed. The session id is bound as
// additional data: a sealed payload copied under another id will not open.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	active, err := newAEAD(config.ActiveKey)
	if err != nil {
		return nil, fmt.Errorf("active key: %w", err)
	}
	keys := []cipher.AEAD{active}
	for i, k := range config.FallbackKeys {
		aead, err := newAEAD(k)
		if err != nil {
			return nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		keys = append(keys, aead)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &sealedStore{next: next, keys: keys}
	}, nil
}

type sealedStore struct {
	next ports.StateStore
	// keys[0] seals, all of them are tried when opening.
	keys []cipher.AEAD
}

func (s *sealedStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	plain, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sessionID, err)
	}
	sealed, err := seal(s.keys[0], plain, []byte(sessionID))
	if err != nil {
		return fmt.Errorf("failed to seal session %s: %w", sessionID, err)
	}
	return s.next.Save(ctx, sessionID, &domain.State{
		SessionID:   state.SessionID,
		CurrentStep: state.CurrentStep,
		CreatedAt:   state.CreatedAt,
		UpdatedAt:   state.UpdatedAt,
		Sealed:      sealed,
	})
}

func (s *sealedStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	envelope, err := s.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(envelope.Sealed) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotSealed, sessionID)
	}

	plain, err := s.open(envelope.Sealed, []byte(sessionID))
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	var state domain.State
	if err := json.Unmarshal(plain, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return &state, nil
}

func (s *sealedStore) Delete(ctx context.Context, sessionID string) error {
	return s.next.Delete(ctx, sessionID)
}

func (s *sealedStore) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}

func (s *sealedStore) open(sealed, aad []byte) ([]byte, error) {
	for _, aead := range s.keys {
		n := aead.NonceSize()
		if len(sealed) < n {
			return nil, errors.New("sealed payload too short")
		}
		if plain, err := aead.Open(nil, sealed[:n], sealed[n:], aad); err == nil {
			return plain, nil
		}
	}
	return nil, ErrNoMatchingKey
}

// seal returns nonce || ciphertext.
func seal(aead cipher.AEAD, plain, aad []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plain, aad), nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("must be %d bytes (AES-256), got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
