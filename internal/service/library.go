package service

import "context"

// Reset empties the asset library and returns every slot to its default.
func Reset(ctx context.Context, assets *AssetService, assignments *AssignmentService) error {
	// Assignments first: if clearing assets fails halfway, no slot points at
	// a half-deleted asset.
	if err := assignments.ResetAll(ctx); err != nil {
		return err
	}
	return assets.ClearAll(ctx)
}

// ExportedAssignment and ExportedMedia are the portable JSON shapes of the
// assignment list and the asset metadata mirror.
type ExportedAssignment struct {
	SlotID  string `json:"slotId"`
	MediaID string `json:"mediaId"`
}

type ExportedMedia struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Filename   string `json:"filename"`
	UploadedAt int64  `json:"uploadedAt"`
	Size       int64  `json:"size"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

type Export struct {
	Assignments []ExportedAssignment `json:"assignments"`
	Media       []ExportedMedia      `json:"media"`
}

// BuildExport snapshots the library metadata and the assignment table.
// Binaries are not included.
func BuildExport(ctx context.Context, assets *AssetService, assignments *AssignmentService) (*Export, error) {
	list, err := assets.List(ctx)
	if err != nil {
		return nil, err
	}
	all, err := assignments.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	exp := &Export{
		Assignments: make([]ExportedAssignment, 0, len(all)),
		Media:       make([]ExportedMedia, 0, len(list)),
	}
	for _, a := range all {
		exp.Assignments = append(exp.Assignments, ExportedAssignment{SlotID: a.SlotID, MediaID: a.AssetID})
	}
	for _, m := range list {
		exp.Media = append(exp.Media, ExportedMedia{
			ID:         m.ID,
			Name:       m.Name,
			Filename:   m.Filename,
			UploadedAt: m.UploadedAt.UnixMilli(),
			Size:       m.Size,
			Width:      m.Width,
			Height:     m.Height,
		})
	}
	return exp, nil
}
