package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintra/internal/core"
)

// GetDashboardConfig returns the owner's stored dashboard configuration
// document. The boolean reports whether a document exists; the service
// layer supplies defaults when it does not.
func (r *SQLiteRepository) GetDashboardConfig(ctx context.Context, ownerID string) ([]byte, bool, error) {
	if ownerID == "" {
		return nil, false, core.ErrMissingOwner
	}
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT dashboard_config FROM user_settings WHERE owner_id = ?`, ownerID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get dashboard config: %w", err)
	}
	return []byte(doc), true, nil
}

// SaveDashboardConfig upserts the owner's configuration document.
func (r *SQLiteRepository) SaveDashboardConfig(ctx context.Context, ownerID string, doc []byte) error {
	if ownerID == "" {
		return core.ErrMissingOwner
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (owner_id, dashboard_config, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET dashboard_config = excluded.dashboard_config, updated_at = excluded.updated_at`,
		ownerID, string(doc), nowUTC())
	if err != nil {
		return fmt.Errorf("save dashboard config: %w", err)
	}
	return nil
}
