package secrets

import (
	"context"
	"testing"

	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *StoreResolver {
	t.Helper()

	key, err := GenerateKey()
	require.NoError(t, err)
	cipher, err := NewCipher(key)
	require.NoError(t, err)

	return NewStoreResolver(NewMemoryStore(), cipher)
}

func TestStoreResolverRoundtrip(t *testing.T) {
	ctx := context.Background()
	resolver := newTestResolver(t)

	ref, err := resolver.Create(ctx, "nas-password", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, ref)

	plaintext, err := resolver.Resolve(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plaintext)
}

func TestStoreResolverUnknownRef(t *testing.T) {
	resolver := newTestResolver(t)

	_, err := resolver.Resolve(context.Background(), types.SecretRef("sec-missing"))
	require.Error(t, err)
	assert.True(t, (&types.ErrSecretNotFound{}).From(err))
}

func TestStoreResolverDelete(t *testing.T) {
	ctx := context.Background()
	resolver := newTestResolver(t)

	ref, err := resolver.Create(ctx, "nas-password", "hunter2")
	require.NoError(t, err)

	require.NoError(t, resolver.Delete(ctx, ref))

	_, err = resolver.Resolve(ctx, ref)
	assert.Error(t, err)

	assert.Error(t, resolver.Delete(ctx, ref))
}

func TestStaticResolver(t *testing.T) {
	resolver := StaticResolver{"ref-1": "value"}

	plaintext, err := resolver.Resolve(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "value", plaintext)

	_, err = resolver.Resolve(context.Background(), "ref-2")
	assert.Error(t, err)
}
