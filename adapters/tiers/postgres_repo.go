// Package tiers persists the off-chain wallet→tier override table.
package tiers

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/SNE-Labs/SNE-Radar/core"
	"github.com/SNE-Labs/SNE-Radar/ports"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresRepo is a Postgres implementation of the TierOverrides interface.
// Addresses are stored lowercased.
type PostgresRepo struct {
	db *sqlx.DB
}

// NewPostgresRepo creates a new Postgres tier-override repository
func NewPostgresRepo(db *sqlx.DB) ports.TierOverrides {
	return &PostgresRepo{db: db}
}

// Migrate applies the embedded schema migrations.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// GetTier returns the override for an address, if one exists
func (r *PostgresRepo) GetTier(ctx context.Context, address string) (core.Tier, bool, error) {
	var tier string
	err := r.db.GetContext(ctx, &tier,
		`SELECT tier FROM user_tiers WHERE address = $1`, strings.ToLower(address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select tier: %w", err)
	}
	return core.Tier(tier), true, nil
}

// SetTier creates or updates the override for an address
func (r *PostgresRepo) SetTier(ctx context.Context, address string, tier core.Tier) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_tiers (address, tier, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (address) DO UPDATE SET tier = EXCLUDED.tier, updated_at = NOW()`,
		strings.ToLower(address), string(tier))
	if err != nil {
		return fmt.Errorf("upsert tier: %w", err)
	}
	return nil
}
