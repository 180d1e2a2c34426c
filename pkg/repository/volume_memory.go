package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/google/uuid"
)

// MemoryVolumeRepository is an in-memory VolumeRepository for local mode and
// tests.
type MemoryVolumeRepository struct {
	mu      sync.RWMutex
	nextId  uint
	volumes map[string]*types.Volume // keyed by external id
}

func NewMemoryVolumeRepository() *MemoryVolumeRepository {
	return &MemoryVolumeRepository{nextId: 1, volumes: make(map[string]*types.Volume)}
}

func (r *MemoryVolumeRepository) CreateVolume(ctx context.Context, name string, config types.VolumeConfig) (*types.Volume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	volume := &types.Volume{
		Id:         r.nextId,
		ExternalId: uuid.NewString(),
		Name:       name,
		Config:     config,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.nextId++
	r.volumes[volume.ExternalId] = volume

	copied := *volume
	return &copied, nil
}

func (r *MemoryVolumeRepository) GetVolumeByExternalId(ctx context.Context, externalId string) (*types.Volume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	volume, ok := r.volumes[externalId]
	if !ok {
		return nil, &types.ErrVolumeNotFound{ExternalId: externalId}
	}

	copied := *volume
	return &copied, nil
}

func (r *MemoryVolumeRepository) GetVolumeByName(ctx context.Context, name string) (*types.Volume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, volume := range r.volumes {
		if volume.Name == name {
			copied := *volume
			return &copied, nil
		}
	}
	return nil, &types.ErrVolumeNotFound{Name: name}
}

func (r *MemoryVolumeRepository) ListVolumes(ctx context.Context) ([]*types.Volume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	volumes := make([]*types.Volume, 0, len(r.volumes))
	for _, volume := range r.volumes {
		copied := *volume
		volumes = append(volumes, &copied)
	}

	sort.Slice(volumes, func(i, j int) bool {
		return volumes[i].CreatedAt.After(volumes[j].CreatedAt)
	})
	return volumes, nil
}

func (r *MemoryVolumeRepository) UpdateVolumeConfig(ctx context.Context, externalId string, config types.VolumeConfig) (*types.Volume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	volume, ok := r.volumes[externalId]
	if !ok {
		return nil, &types.ErrVolumeNotFound{ExternalId: externalId}
	}

	volume.Config = config
	volume.UpdatedAt = time.Now()

	copied := *volume
	return &copied, nil
}

func (r *MemoryVolumeRepository) DeleteVolume(ctx context.Context, externalId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.volumes[externalId]; !ok {
		return &types.ErrVolumeNotFound{ExternalId: externalId}
	}
	delete(r.volumes, externalId)
	return nil
}
