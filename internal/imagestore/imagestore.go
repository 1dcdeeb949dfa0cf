package imagestore

import (
	"context"
	"io"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
)

// ImageStore holds rendition binaries. Missing keys are reported as
// domain.ErrNotFound by Get and Stat; Delete treats them as already gone.
type ImageStore interface {
	Save(ctx context.Context, key, mimeType string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Stat(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
	Usage(ctx context.Context) (int64, error)
}

// Key returns the storage key of one rendition of an asset.
func Key(assetID string, kind domain.RenditionKind) string {
	return assetID + "/" + string(kind) + ".jpg"
}
