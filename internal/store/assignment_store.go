package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
)

// AssignmentStore persists slot overrides. Reads are served from an in-memory
// snapshot of the whole table, reloaded after every write. Scans over the
// snapshot are linear in the number of assignments, which is bounded by the
// number of slots.
type AssignmentStore struct {
	db  *sql.DB
	now func() time.Time

	mu       sync.RWMutex
	loaded   bool
	snapshot []domain.Assignment // sorted by SlotID
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db, now: time.Now}
}

// Assign creates or replaces the mapping for slotID. The asset is not checked
// for existence; a dangling reference resolves to the slot default.
func (s *AssignmentStore) Assign(ctx context.Context, slotID, assetID string) error {
	return s.write(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO slot_assignments (slot_id, asset_id, assigned_at) VALUES (?, ?, ?)
			ON CONFLICT(slot_id) DO UPDATE SET asset_id = excluded.asset_id, assigned_at = excluded.assigned_at
		`, slotID, assetID, s.now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to assign slot: %w", err)
		}
		return nil
	})
}

// Clear removes the mapping for slotID if present.
func (s *AssignmentStore) Clear(ctx context.Context, slotID string) error {
	return s.write(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM slot_assignments WHERE slot_id = ?`, slotID); err != nil {
			return fmt.Errorf("failed to clear slot: %w", err)
		}
		return nil
	})
}

func (s *AssignmentStore) ResetAll(ctx context.Context) error {
	return s.write(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM slot_assignments`); err != nil {
			return fmt.Errorf("failed to reset assignments: %w", err)
		}
		return nil
	})
}

// ClearAsset removes every mapping that points at assetID and returns the
// slots that were cleared.
func (s *AssignmentStore) ClearAsset(ctx context.Context, assetID string) ([]string, error) {
	cleared, err := s.SlotsForAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if len(cleared) == 0 {
		return nil, nil
	}

	err = s.write(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM slot_assignments WHERE asset_id = ?`, assetID); err != nil {
			return fmt.Errorf("failed to clear assignments for asset: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cleared, nil
}

// Get returns the asset assigned to slotID, or false when the slot uses its
// default.
func (s *AssignmentStore) Get(ctx context.Context, slotID string) (string, bool, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return "", false, err
	}
	i := sort.Search(len(snap), func(i int) bool { return snap[i].SlotID >= slotID })
	if i < len(snap) && snap[i].SlotID == slotID {
		return snap[i].AssetID, true, nil
	}
	return "", false, nil
}

// GetAll returns every assignment ordered by slot id. The slice is a copy.
func (s *AssignmentStore) GetAll(ctx context.Context) ([]domain.Assignment, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Assignment, len(snap))
	copy(out, snap)
	return out, nil
}

func (s *AssignmentStore) SlotsForAsset(ctx context.Context, assetID string) ([]string, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	var slotIDs []string
	for _, a := range snap {
		if a.AssetID == assetID {
			slotIDs = append(slotIDs, a.SlotID)
		}
	}
	return slotIDs, nil
}

func (s *AssignmentStore) read(ctx context.Context) ([]domain.Assignment, error) {
	s.mu.RLock()
	if s.loaded {
		snap := s.snapshot
		s.mu.RUnlock()
		return snap, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		if err := s.reloadLocked(ctx, s.db); err != nil {
			return nil, err
		}
	}
	return s.snapshot, nil
}

// write runs fn in a transaction and refreshes the snapshot from the same
// transaction before committing, so readers never see a stale table.
func (s *AssignmentStore) write(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := s.reloadLocked(ctx, tx); err != nil {
		s.loaded = false
		return err
	}
	if err := tx.Commit(); err != nil {
		s.loaded = false
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *AssignmentStore) reloadLocked(ctx context.Context, q querier) error {
	rows, err := q.QueryContext(ctx, `
		SELECT slot_id, asset_id, assigned_at FROM slot_assignments ORDER BY slot_id ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to load assignments: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	snap := []domain.Assignment{}
	for rows.Next() {
		var a domain.Assignment
		var assignedAt int64
		if err := rows.Scan(&a.SlotID, &a.AssetID, &assignedAt); err != nil {
			return fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.AssignedAt = time.UnixMilli(assignedAt).UTC()
		snap = append(snap, a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating assignments: %w", err)
	}

	s.snapshot = snap
	s.loaded = true
	return nil
}
