package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
)

const assetColumns = `id, name, filename, mime_type, size, width, height, thumb_bytes, display_bytes, uploaded_at`

type AssetStore struct {
	db *sql.DB
}

func NewAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{db: db}
}

func (s *AssetStore) Create(ctx context.Context, a *domain.AssetSummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (`+assetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Name, a.Filename, a.MimeType, a.Size, a.Width, a.Height,
		a.ThumbBytes, a.DisplayBytes, a.UploadedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the asset does not exist.
func (s *AssetStore) GetByID(ctx context.Context, id string) (*domain.AssetSummary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ?`, id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return a, nil
}

// List returns every asset in upload order.
func (s *AssetStore) List(ctx context.Context) ([]domain.AssetSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	assets := []domain.AssetSummary{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return assets, nil
}

func (s *AssetStore) Rename(ctx context.Context, id, name string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE assets SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename asset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete reports whether a row was removed.
func (s *AssetStore) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete asset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// DeleteAll removes every asset row and returns the removed ids.
func (s *AssetStore) DeleteAll(ctx context.Context) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM assets ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset ids: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan asset id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("error iterating asset ids: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("failed to close rows: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM assets`); err != nil {
		return nil, fmt.Errorf("failed to delete assets: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return ids, nil
}

func (s *AssetStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return n, nil
}

// RenditionBytes is the total size of all stored renditions as recorded at
// upload time.
func (s *AssetStore) RenditionBytes(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(thumb_bytes + display_bytes), 0) FROM assets
	`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum rendition bytes: %w", err)
	}
	return total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (*domain.AssetSummary, error) {
	a := &domain.AssetSummary{}
	var uploadedAt int64
	if err := row.Scan(&a.ID, &a.Name, &a.Filename, &a.MimeType, &a.Size, &a.Width, &a.Height,
		&a.ThumbBytes, &a.DisplayBytes, &uploadedAt); err != nil {
		return nil, err
	}
	a.UploadedAt = time.UnixMilli(uploadedAt).UTC()
	return a, nil
}
