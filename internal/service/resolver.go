package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/metrics"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/slots"
)

const resolveConcurrency = 8

type assignmentLookup interface {
	Get(ctx context.Context, slotID string) (string, bool, error)
	GetAll(ctx context.Context) ([]domain.Assignment, error)
}

type displayLocator interface {
	DisplayURL(ctx context.Context, assetID string) (string, error)
}

// Resolver computes the image URL the guest app should render for a slot.
// It never fails: any problem with an override falls back to the slot's
// bundled default.
type Resolver struct {
	assignments assignmentLookup
	assets      displayLocator
	metrics     *metrics.Recorder
	logger      *slog.Logger
}

func NewResolver(assignments assignmentLookup, assets displayLocator, rec *metrics.Recorder, logger *slog.Logger) *Resolver {
	return &Resolver{assignments: assignments, assets: assets, metrics: rec, logger: logger}
}

// Resolve returns the display URL of the asset assigned to slotID, or the
// slot default when there is no usable assignment. Unknown slots resolve to
// the empty string.
func (r *Resolver) Resolve(ctx context.Context, slotID string) string {
	slot, ok := slots.Lookup(slotID)
	if !ok {
		r.logger.Warn("resolve of unknown slot", "slot_id", slotID)
		return ""
	}

	assetID, assigned, err := r.assignments.Get(ctx, slotID)
	if err != nil {
		r.logger.Error("failed to read slot assignment", "slot_id", slotID, "error", err)
		r.metrics.Resolution(metrics.SourceFallback)
		return slot.Default
	}
	if !assigned {
		r.metrics.Resolution(metrics.SourceDefault)
		return slot.Default
	}

	url, err := r.assets.DisplayURL(ctx, assetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn("slot assigned to missing asset", "slot_id", slotID, "asset_id", assetID, "error", err)
		} else {
			r.logger.Error("failed to load assigned asset", "slot_id", slotID, "asset_id", assetID, "error", err)
		}
		r.metrics.Resolution(metrics.SourceFallback)
		return slot.Default
	}

	r.metrics.Resolution(metrics.SourceCustom)
	return url
}

// ResolveMany resolves each slot independently and concurrently.
func (r *Resolver) ResolveMany(ctx context.Context, slotIDs []string) map[string]string {
	out := make(map[string]string, len(slotIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for _, id := range slotIDs {
		g.Go(func() error {
			url := r.Resolve(gctx, id)
			mu.Lock()
			out[id] = url
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // Resolve never fails

	return out
}

// ResolveAll resolves every slot in the registry.
func (r *Resolver) ResolveAll(ctx context.Context) map[string]string {
	all := slots.All()
	ids := make([]string, len(all))
	for i, s := range all {
		ids[i] = s.ID
	}
	return r.ResolveMany(ctx, ids)
}

// SlotState is one row of the admin overview.
type SlotState struct {
	ID      string       `json:"id"`
	Label   string       `json:"label"`
	Group   domain.Group `json:"group"`
	Default string       `json:"default"`
	AssetID string       `json:"assetId,omitempty"`
	URL     string       `json:"url"`
	Custom  bool         `json:"custom"`
}

// Describe lists every slot with its assignment and effective URL, in
// registry order.
func (r *Resolver) Describe(ctx context.Context) ([]SlotState, error) {
	assignments, err := r.assignments.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	bySlot := make(map[string]string, len(assignments))
	for _, a := range assignments {
		bySlot[a.SlotID] = a.AssetID
	}

	urls := r.ResolveAll(ctx)
	all := slots.All()
	states := make([]SlotState, 0, len(all))
	for _, s := range all {
		url := urls[s.ID]
		states = append(states, SlotState{
			ID:      s.ID,
			Label:   s.Label,
			Group:   s.Group,
			Default: s.Default,
			AssetID: bySlot[s.ID],
			URL:     url,
			Custom:  url != s.Default,
		})
	}
	return states, nil
}
