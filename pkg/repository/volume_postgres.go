package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/JBibu/zerobyte/pkg/types"
)

// Volume methods on PostgresBackend

// CreateVolume creates a new volume record
func (b *PostgresBackend) CreateVolume(ctx context.Context, name string, config types.VolumeConfig) (*types.Volume, error) {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal volume config: %w", err)
	}

	query := `
		INSERT INTO volume (name, config)
		VALUES ($1, $2)
		RETURNING id, external_id, name, config, created_at, updated_at
	`

	return b.scanVolume(b.db.QueryRowContext(ctx, query, name, configJSON))
}

// GetVolumeByExternalId retrieves a volume by external UUID
func (b *PostgresBackend) GetVolumeByExternalId(ctx context.Context, externalId string) (*types.Volume, error) {
	query := `
		SELECT id, external_id, name, config, created_at, updated_at
		FROM volume
		WHERE external_id = $1
	`

	volume, err := b.scanVolume(b.db.QueryRowContext(ctx, query, externalId))
	if err == sql.ErrNoRows {
		return nil, &types.ErrVolumeNotFound{ExternalId: externalId}
	}
	return volume, err
}

// GetVolumeByName retrieves a volume by name
func (b *PostgresBackend) GetVolumeByName(ctx context.Context, name string) (*types.Volume, error) {
	query := `
		SELECT id, external_id, name, config, created_at, updated_at
		FROM volume
		WHERE name = $1
	`

	volume, err := b.scanVolume(b.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, &types.ErrVolumeNotFound{Name: name}
	}
	return volume, err
}

// ListVolumes returns all volume records
func (b *PostgresBackend) ListVolumes(ctx context.Context) ([]*types.Volume, error) {
	query := `
		SELECT id, external_id, name, config, created_at, updated_at
		FROM volume
		ORDER BY created_at DESC
	`

	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list volumes: %w", err)
	}
	defer rows.Close()

	volumes := []*types.Volume{}
	for rows.Next() {
		volume, err := b.scanVolume(rows)
		if err != nil {
			return nil, err
		}
		volumes = append(volumes, volume)
	}
	return volumes, rows.Err()
}

// UpdateVolumeConfig replaces a volume's backend configuration
func (b *PostgresBackend) UpdateVolumeConfig(ctx context.Context, externalId string, config types.VolumeConfig) (*types.Volume, error) {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal volume config: %w", err)
	}

	query := `
		UPDATE volume
		SET config = $2, updated_at = CURRENT_TIMESTAMP
		WHERE external_id = $1
		RETURNING id, external_id, name, config, created_at, updated_at
	`

	volume, err := b.scanVolume(b.db.QueryRowContext(ctx, query, externalId, configJSON))
	if err == sql.ErrNoRows {
		return nil, &types.ErrVolumeNotFound{ExternalId: externalId}
	}
	return volume, err
}

// DeleteVolume removes a volume record
func (b *PostgresBackend) DeleteVolume(ctx context.Context, externalId string) error {
	result, err := b.db.ExecContext(ctx, `DELETE FROM volume WHERE external_id = $1`, externalId)
	if err != nil {
		return fmt.Errorf("failed to delete volume: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &types.ErrVolumeNotFound{ExternalId: externalId}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (b *PostgresBackend) scanVolume(row rowScanner) (*types.Volume, error) {
	volume := &types.Volume{}
	var configJSON []byte

	err := row.Scan(
		&volume.Id,
		&volume.ExternalId,
		&volume.Name,
		&configJSON,
		&volume.CreatedAt,
		&volume.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan volume: %w", err)
	}

	if err := json.Unmarshal(configJSON, &volume.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal volume config: %w", err)
	}
	return volume, nil
}
