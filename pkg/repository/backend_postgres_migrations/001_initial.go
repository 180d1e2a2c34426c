package backend_postgres_migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upInitial, downInitial)
}

func upInitial(tx *sql.Tx) error {
	// Ensure UUID extension is available
	if _, err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	createStatements := []string{
		// Volumes table; config is the backend tagged union as JSON
		`CREATE TABLE IF NOT EXISTS volume (
			id SERIAL PRIMARY KEY,
			external_id UUID DEFAULT uuid_generate_v4() UNIQUE NOT NULL,
			name VARCHAR(64) NOT NULL UNIQUE,
			config JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);`,

		// Secrets table; value is sealed, never plaintext
		`CREATE TABLE IF NOT EXISTS secret (
			id SERIAL PRIMARY KEY,
			external_id UUID DEFAULT uuid_generate_v4() UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			value BYTEA NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);`,

		// Indexes
		`CREATE INDEX idx_volume_external_id ON volume(external_id);`,
		`CREATE INDEX idx_volume_name ON volume(name);`,
		`CREATE INDEX idx_secret_external_id ON secret(external_id);`,
	}

	for _, stmt := range createStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

func downInitial(tx *sql.Tx) error {
	dropStatements := []string{
		"DROP TABLE IF EXISTS secret;",
		"DROP TABLE IF EXISTS volume;",
	}

	for _, stmt := range dropStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
