package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JBibu/zerobyte/pkg/types"
)

// Secret methods on PostgresBackend. Values arrive and leave sealed; this
// layer never sees plaintext.

// CreateSecret stores a sealed secret and returns its external id
func (b *PostgresBackend) CreateSecret(ctx context.Context, name string, sealed []byte) (string, error) {
	query := `
		INSERT INTO secret (name, value)
		VALUES ($1, $2)
		RETURNING external_id
	`

	var externalId string
	if err := b.db.QueryRowContext(ctx, query, name, sealed).Scan(&externalId); err != nil {
		return "", fmt.Errorf("failed to create secret: %w", err)
	}
	return externalId, nil
}

// GetSecretSealed retrieves a sealed secret value by external id
func (b *PostgresBackend) GetSecretSealed(ctx context.Context, externalId string) ([]byte, error) {
	query := `
		SELECT value
		FROM secret
		WHERE external_id = $1
	`

	var sealed []byte
	err := b.db.QueryRowContext(ctx, query, externalId).Scan(&sealed)
	if err == sql.ErrNoRows {
		return nil, &types.ErrSecretNotFound{Ref: externalId}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get secret: %w", err)
	}
	return sealed, nil
}

// DeleteSecret removes a stored secret
func (b *PostgresBackend) DeleteSecret(ctx context.Context, externalId string) error {
	result, err := b.db.ExecContext(ctx, `DELETE FROM secret WHERE external_id = $1`, externalId)
	if err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &types.ErrSecretNotFound{Ref: externalId}
	}
	return nil
}
