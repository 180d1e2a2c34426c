package repository

import (
	"context"

	"github.com/JBibu/zerobyte/pkg/types"
)

// VolumeRepository is the persistence surface for volume records. The
// orchestration layer receives records from here by reference and never
// persists anything itself.
type VolumeRepository interface {
	CreateVolume(ctx context.Context, name string, config types.VolumeConfig) (*types.Volume, error)
	GetVolumeByExternalId(ctx context.Context, externalId string) (*types.Volume, error)
	GetVolumeByName(ctx context.Context, name string) (*types.Volume, error)
	ListVolumes(ctx context.Context) ([]*types.Volume, error)
	UpdateVolumeConfig(ctx context.Context, externalId string, config types.VolumeConfig) (*types.Volume, error)
	DeleteVolume(ctx context.Context, externalId string) error
}
