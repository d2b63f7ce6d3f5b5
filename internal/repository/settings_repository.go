package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ffstore/internal/domain"
)

// settingsID is the fixed primary key of the singleton row
const settingsID = 1

// SettingsRepository defines the interface for the site settings singleton
type SettingsRepository interface {
	// Get returns the settings row, creating it with defaults on first
	// read. The fixed primary key makes concurrent first reads safe: at
	// most one insert wins, the rest no-op and read the winner's row.
	Get(ctx context.Context) (*domain.SiteSettings, error)

	Update(ctx context.Context, settings *domain.SiteSettings) error
}

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository
func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

const settingsColumns = `id, site_name, whatsapp, instagram, pix_key, banner_text, updated_at`

// Get lazily creates and returns the singleton settings row
func (r *settingsRepository) Get(ctx context.Context) (*domain.SiteSettings, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin settings transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuery := `
		INSERT INTO site_settings (id)
		VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, insertQuery, settingsID); err != nil {
		return nil, fmt.Errorf("failed to initialize settings: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM site_settings WHERE id = $1`, settingsColumns)

	settings := &domain.SiteSettings{}
	err = tx.QueryRowContext(ctx, query, settingsID).Scan(
		&settings.ID,
		&settings.SiteName,
		&settings.WhatsApp,
		&settings.Instagram,
		&settings.PixKey,
		&settings.BannerText,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settings transaction: %w", err)
	}

	return settings, nil
}

// Update overwrites the singleton settings row
func (r *settingsRepository) Update(ctx context.Context, settings *domain.SiteSettings) error {
	query := `
		UPDATE site_settings
		SET site_name = $2, whatsapp = $3, instagram = $4, pix_key = $5,
		    banner_text = $6, updated_at = $7
		WHERE id = $1
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		settingsID,
		settings.SiteName,
		settings.WhatsApp,
		settings.Instagram,
		settings.PixKey,
		settings.BannerText,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	return nil
}
