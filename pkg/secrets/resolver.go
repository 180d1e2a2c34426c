package secrets

import (
	"context"
	"fmt"
	"sync"

	"github.com/JBibu/zerobyte/pkg/common"
	"github.com/JBibu/zerobyte/pkg/types"
)

// Resolver resolves a SecretRef to its plaintext value at the moment of use.
// Callers must pass the plaintext directly into the operation that needs it
// and must not retain or log it.
type Resolver interface {
	Resolve(ctx context.Context, ref types.SecretRef) (string, error)
}

// Store is the persistence surface the store-backed resolver needs. Values
// are stored sealed; the resolver opens them on the way out.
type Store interface {
	CreateSecret(ctx context.Context, name string, sealed []byte) (string, error)
	GetSecretSealed(ctx context.Context, externalId string) ([]byte, error)
	DeleteSecret(ctx context.Context, externalId string) error
}

// StoreResolver resolves refs against a Store, decrypting with a Cipher.
type StoreResolver struct {
	store  Store
	cipher *Cipher
}

func NewStoreResolver(store Store, cipher *Cipher) *StoreResolver {
	return &StoreResolver{store: store, cipher: cipher}
}

func (r *StoreResolver) Resolve(ctx context.Context, ref types.SecretRef) (string, error) {
	sealed, err := r.store.GetSecretSealed(ctx, string(ref))
	if err != nil {
		return "", err
	}

	plaintext, err := r.cipher.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("resolve secret %s: %w", ref, err)
	}
	return plaintext, nil
}

// Create seals and stores a new secret, returning its reference.
func (r *StoreResolver) Create(ctx context.Context, name, plaintext string) (types.SecretRef, error) {
	sealed, err := r.cipher.Seal(plaintext)
	if err != nil {
		return "", fmt.Errorf("seal secret: %w", err)
	}

	externalId, err := r.store.CreateSecret(ctx, name, sealed)
	if err != nil {
		return "", err
	}
	return types.SecretRef(externalId), nil
}

// Delete removes a stored secret.
func (r *StoreResolver) Delete(ctx context.Context, ref types.SecretRef) error {
	return r.store.DeleteSecret(ctx, string(ref))
}

// MemoryStore is an in-memory Store for local mode and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	sealed map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sealed: make(map[string][]byte)}
}

func (s *MemoryStore) CreateSecret(ctx context.Context, name string, sealed []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	externalId := common.GenerateID("sec")
	s.sealed[externalId] = sealed
	return externalId, nil
}

func (s *MemoryStore) GetSecretSealed(ctx context.Context, externalId string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sealed, ok := s.sealed[externalId]
	if !ok {
		return nil, &types.ErrSecretNotFound{Ref: externalId}
	}
	return sealed, nil
}

func (s *MemoryStore) DeleteSecret(ctx context.Context, externalId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sealed[externalId]; !ok {
		return &types.ErrSecretNotFound{Ref: externalId}
	}
	delete(s.sealed, externalId)
	return nil
}

// StaticResolver resolves from a fixed map. Test helper.
type StaticResolver map[types.SecretRef]string

func (r StaticResolver) Resolve(ctx context.Context, ref types.SecretRef) (string, error) {
	plaintext, ok := r[ref]
	if !ok {
		return "", &types.ErrSecretNotFound{Ref: string(ref)}
	}
	return plaintext, nil
}
