package repository

import (
	"context"
	"testing"

	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(path string) types.VolumeConfig {
	return types.VolumeConfig{
		Backend:   types.BackendDirectory,
		Directory: &types.DirectoryConfig{Path: path},
	}
}

func TestMemoryVolumeRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewVolumeRepositoryForTest()

	created, err := repo.CreateVolume(ctx, "docs", testConfig("/data/docs"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ExternalId)
	assert.Equal(t, "docs", created.Name)

	byId, err := repo.GetVolumeByExternalId(ctx, created.ExternalId)
	require.NoError(t, err)
	assert.Equal(t, created.Name, byId.Name)

	byName, err := repo.GetVolumeByName(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, created.ExternalId, byName.ExternalId)

	updated, err := repo.UpdateVolumeConfig(ctx, created.ExternalId, testConfig("/data/other"))
	require.NoError(t, err)
	assert.Equal(t, "/data/other", updated.Config.Directory.Path)

	require.NoError(t, repo.DeleteVolume(ctx, created.ExternalId))

	_, err = repo.GetVolumeByExternalId(ctx, created.ExternalId)
	assert.True(t, (&types.ErrVolumeNotFound{}).From(err))
}

func TestMemoryVolumeRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewVolumeRepositoryForTest()

	_, err := repo.GetVolumeByExternalId(ctx, "missing")
	assert.True(t, (&types.ErrVolumeNotFound{}).From(err))

	_, err = repo.GetVolumeByName(ctx, "missing")
	assert.True(t, (&types.ErrVolumeNotFound{}).From(err))

	_, err = repo.UpdateVolumeConfig(ctx, "missing", testConfig("/x"))
	assert.True(t, (&types.ErrVolumeNotFound{}).From(err))

	err = repo.DeleteVolume(ctx, "missing")
	assert.True(t, (&types.ErrVolumeNotFound{}).From(err))
}

func TestMemoryVolumeRepositoryListIsCopied(t *testing.T) {
	ctx := context.Background()
	repo := NewVolumeRepositoryForTest()

	created, err := repo.CreateVolume(ctx, "docs", testConfig("/data/docs"))
	require.NoError(t, err)

	listed, err := repo.ListVolumes(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// Mutating a returned record must not leak into the repository.
	listed[0].Name = "mutated"
	again, err := repo.GetVolumeByExternalId(ctx, created.ExternalId)
	require.NoError(t, err)
	assert.Equal(t, "docs", again.Name)
}
