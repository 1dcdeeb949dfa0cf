package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	verr := fmt.Errorf("upload: %w", Invalid("file too large: %d bytes", 11))
	assert.True(t, errors.Is(verr, ErrValidation))
	assert.False(t, errors.Is(verr, ErrQuota))
	assert.Contains(t, verr.Error(), "file too large: 11 bytes")

	qerr := fmt.Errorf("upload: %w", &QuotaError{UsedPercent: 93.21})
	assert.True(t, errors.Is(qerr, ErrQuota))
	assert.Contains(t, qerr.Error(), "93.2")

	var q *QuotaError
	assert.True(t, errors.As(qerr, &q))
	assert.InDelta(t, 93.21, q.UsedPercent, 0.001)
}

func TestAssetSummaryProjection(t *testing.T) {
	a := &Asset{
		AssetSummary: AssetSummary{ID: "a1", Name: "Lobby", Width: 3000, Height: 2000},
		Thumb:        Rendition{Kind: RenditionThumb, Width: 200, Height: 133, Data: []byte{1}},
		Display:      Rendition{Kind: RenditionDisplay, Width: 1600, Height: 1067, Data: []byte{2}},
	}

	s := a.Summary()
	assert.Equal(t, "a1", s.ID)
	assert.Equal(t, 3000, s.Width)
	assert.Equal(t, 2000, s.Height)
}

func TestRenditionKindValid(t *testing.T) {
	assert.True(t, RenditionThumb.Valid())
	assert.True(t, RenditionDisplay.Valid())
	assert.False(t, RenditionKind("original").Valid())
}
