package service

import (
	"context"
	"log/slog"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/slots"
)

// assignmentRepository is the subset of store.AssignmentStore that
// AssignmentService requires.
type assignmentRepository interface {
	Assign(ctx context.Context, slotID, assetID string) error
	Clear(ctx context.Context, slotID string) error
	Get(ctx context.Context, slotID string) (string, bool, error)
	GetAll(ctx context.Context) ([]domain.Assignment, error)
	ResetAll(ctx context.Context) error
	ClearAsset(ctx context.Context, assetID string) ([]string, error)
	SlotsForAsset(ctx context.Context, assetID string) ([]string, error)
}

// AssignmentService maps registry slots to uploaded assets. Slot ids are
// checked against the registry; asset ids are not checked at all, since a
// dangling reference simply resolves to the slot default.
type AssignmentService struct {
	store  assignmentRepository
	logger *slog.Logger
}

func NewAssignmentService(store assignmentRepository, logger *slog.Logger) *AssignmentService {
	return &AssignmentService{store: store, logger: logger}
}

func (s *AssignmentService) Assign(ctx context.Context, slotID, assetID string) error {
	if !slots.Known(slotID) {
		return domain.Invalid("unknown slot %q", slotID)
	}
	if assetID == "" {
		return domain.Invalid("asset id is required")
	}
	if err := s.store.Assign(ctx, slotID, assetID); err != nil {
		return err
	}
	s.logger.Info("slot assigned", "slot_id", slotID, "asset_id", assetID)
	return nil
}

func (s *AssignmentService) Clear(ctx context.Context, slotID string) error {
	if !slots.Known(slotID) {
		return domain.Invalid("unknown slot %q", slotID)
	}
	if err := s.store.Clear(ctx, slotID); err != nil {
		return err
	}
	s.logger.Info("slot reset to default", "slot_id", slotID)
	return nil
}

func (s *AssignmentService) Get(ctx context.Context, slotID string) (string, bool, error) {
	return s.store.Get(ctx, slotID)
}

func (s *AssignmentService) GetAll(ctx context.Context) ([]domain.Assignment, error) {
	return s.store.GetAll(ctx)
}

func (s *AssignmentService) SlotsForAsset(ctx context.Context, assetID string) ([]string, error) {
	return s.store.SlotsForAsset(ctx, assetID)
}

func (s *AssignmentService) ResetAll(ctx context.Context) error {
	if err := s.store.ResetAll(ctx); err != nil {
		return err
	}
	s.logger.Info("all slots reset to default")
	return nil
}

// AssetDeleted clears every slot that pointed at the deleted asset. It is
// registered with AssetService.OnDeleted.
func (s *AssignmentService) AssetDeleted(ctx context.Context, assetID string) error {
	cleared, err := s.store.ClearAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if len(cleared) > 0 {
		s.logger.Info("cleared assignments of deleted asset", "asset_id", assetID, "slots", cleared)
	}
	return nil
}
