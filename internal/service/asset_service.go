package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/imagestore"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/imaging"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/metrics"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/quota"
)

const (
	MaxUploadBytes = 10 << 20 // 10 MiB
	MaxNameLen     = 200

	defaultQuotaThreshold = 0.9
	defaultQuotaTimeout   = 2 * time.Second
	defaultMediaPrefix    = "/media"
)

// assetRepository is the subset of store.AssetStore that AssetService requires.
type assetRepository interface {
	Create(ctx context.Context, a *domain.AssetSummary) error
	GetByID(ctx context.Context, id string) (*domain.AssetSummary, error)
	List(ctx context.Context) ([]domain.AssetSummary, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) (bool, error)
	DeleteAll(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	RenditionBytes(ctx context.Context) (int64, error)
}

// DeletedFunc is notified after an asset's binaries have been removed.
type DeletedFunc func(ctx context.Context, assetID string) error

type Options struct {
	QuotaThreshold float64
	QuotaTimeout   time.Duration
	MediaURLPrefix string
}

func (o Options) withDefaults() Options {
	if o.QuotaThreshold <= 0 || o.QuotaThreshold > 1 {
		o.QuotaThreshold = defaultQuotaThreshold
	}
	if o.QuotaTimeout <= 0 {
		o.QuotaTimeout = defaultQuotaTimeout
	}
	if o.MediaURLPrefix == "" {
		o.MediaURLPrefix = defaultMediaPrefix
	}
	o.MediaURLPrefix = strings.TrimSuffix(o.MediaURLPrefix, "/")
	return o
}

// UploadRequest carries one uploaded file. Size is the size the client
// declared; the larger of Size and len(Data) is checked against the limit.
type UploadRequest struct {
	Data     []byte
	MimeType string
	Filename string
	Size     int64
}

// AssetService owns the uploaded image library: metadata rows plus the
// thumbnail and display renditions kept in the image store.
type AssetService struct {
	assets  assetRepository
	images  imagestore.ImageStore
	quota   quota.Estimator
	opts    Options
	metrics *metrics.Recorder
	logger  *slog.Logger

	locks keyedMutex

	subMu       sync.RWMutex
	subscribers []DeletedFunc

	newID func() (string, error)
	now   func() time.Time
}

func NewAssetService(
	assets assetRepository,
	images imagestore.ImageStore,
	est quota.Estimator,
	opts Options,
	rec *metrics.Recorder,
	logger *slog.Logger,
) *AssetService {
	return &AssetService{
		assets:  assets,
		images:  images,
		quota:   est,
		opts:    opts.withDefaults(),
		metrics: rec,
		logger:  logger,
		newID:   newAssetID,
		now:     time.Now,
	}
}

// newAssetID returns a UUIDv7: a millisecond timestamp prefix followed by
// random bits, so ids sort by creation time.
func newAssetID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate asset id: %w", err)
	}
	return id.String(), nil
}

// OnDeleted registers fn to run after every asset deletion.
func (s *AssetService) OnDeleted(fn DeletedFunc) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *AssetService) Upload(ctx context.Context, req UploadRequest) (*domain.Asset, error) {
	s.logger.Info("upload started", "filename", req.Filename, "mime_type", req.MimeType, "bytes", len(req.Data))

	asset, err := s.upload(ctx, req)
	switch {
	case err == nil:
		s.metrics.Upload("ok")
	case errors.Is(err, domain.ErrValidation):
		s.metrics.Upload("invalid")
		s.logger.Warn("upload rejected", "filename", req.Filename, "error", err)
	case errors.Is(err, domain.ErrQuota):
		s.metrics.Upload("quota")
		s.logger.Warn("upload rejected", "filename", req.Filename, "error", err)
	default:
		s.metrics.Upload("error")
		s.logger.Error("upload failed", "filename", req.Filename, "error", err)
	}
	return asset, err
}

func (s *AssetService) upload(ctx context.Context, req UploadRequest) (*domain.Asset, error) {
	if err := validateUpload(req); err != nil {
		return nil, err
	}

	qctx, cancel := context.WithTimeout(ctx, s.opts.QuotaTimeout)
	usage, err := quota.Check(qctx, s.quota, s.opts.QuotaThreshold)
	cancel()
	if err != nil {
		return nil, err
	}
	s.metrics.StorageUsed(usage.Used)

	img, format, err := imaging.Decode(req.Data)
	if err != nil {
		return nil, err
	}
	thumb, display, err := imaging.Renditions(img)
	if err != nil {
		return nil, fmt.Errorf("failed to render image: %w", err)
	}

	id, err := s.newID()
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	filename := filepath.Base(strings.TrimSpace(req.Filename))
	asset := &domain.Asset{
		AssetSummary: domain.AssetSummary{
			ID:           id,
			Name:         defaultName(filename),
			Filename:     filename,
			MimeType:     req.MimeType,
			Size:         max(req.Size, int64(len(req.Data))),
			Width:        bounds.Dx(),
			Height:       bounds.Dy(),
			ThumbBytes:   int64(len(thumb.Data)),
			DisplayBytes: int64(len(display.Data)),
			UploadedAt:   s.now().UTC().Truncate(time.Millisecond),
		},
		Thumb:   thumb,
		Display: display,
	}

	if err := s.persist(ctx, asset); err != nil {
		return nil, err
	}

	s.logger.Info("upload complete",
		"asset_id", id,
		"format", format,
		"width", asset.Width,
		"height", asset.Height,
		"stored", humanize.IBytes(uint64(asset.ThumbBytes+asset.DisplayBytes)),
	)
	return asset, nil
}

// persist writes both renditions and then the metadata row. Anything written
// before a failure is removed again, so the listing and the image store never
// disagree.
func (s *AssetService) persist(ctx context.Context, asset *domain.Asset) error {
	cleanupCtx := context.WithoutCancel(ctx)
	var written []string

	rollback := func(cause error) error {
		for _, key := range written {
			if err := s.images.Delete(cleanupCtx, key); err != nil {
				s.logger.Error("failed to roll back rendition", "key", key, "error", err)
				cause = errors.Join(cause, err)
			}
		}
		return cause
	}

	for _, r := range []domain.Rendition{asset.Thumb, asset.Display} {
		key := imagestore.Key(asset.ID, r.Kind)
		if err := s.images.Save(ctx, key, r.MimeType, bytes.NewReader(r.Data)); err != nil {
			return rollback(fmt.Errorf("failed to save %s rendition: %w", r.Kind, err))
		}
		written = append(written, key)
	}

	summary := asset.Summary()
	if err := s.assets.Create(ctx, &summary); err != nil {
		return rollback(fmt.Errorf("failed to create asset record: %w", err))
	}
	return nil
}

func validateUpload(req UploadRequest) error {
	mime := strings.ToLower(strings.TrimSpace(req.MimeType))
	if !strings.HasPrefix(mime, "image/") {
		return domain.Invalid("file type %q is not an image", req.MimeType)
	}
	if len(req.Data) == 0 {
		return domain.Invalid("file is empty")
	}
	if size := max(req.Size, int64(len(req.Data))); size > MaxUploadBytes {
		return domain.Invalid("file is %s, limit is %s",
			humanize.IBytes(uint64(size)), humanize.IBytes(MaxUploadBytes))
	}
	return nil
}

func defaultName(filename string) string {
	name := strings.TrimSpace(strings.TrimSuffix(filename, filepath.Ext(filename)))
	if name == "" || name == "." {
		return "Untitled"
	}
	return name
}

// List returns every asset in upload order.
func (s *AssetService) List(ctx context.Context) ([]domain.AssetSummary, error) {
	return s.assets.List(ctx)
}

func (s *AssetService) Summary(ctx context.Context, id string) (*domain.AssetSummary, error) {
	a, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

// Get returns the full record, both renditions included.
func (s *AssetService) Get(ctx context.Context, id string) (*domain.Asset, error) {
	summary, err := s.Summary(ctx, id)
	if err != nil {
		return nil, err
	}

	asset := &domain.Asset{AssetSummary: *summary}
	for _, kind := range []domain.RenditionKind{domain.RenditionThumb, domain.RenditionDisplay} {
		r, err := s.loadRendition(ctx, summary, kind)
		if err != nil {
			return nil, err
		}
		if kind == domain.RenditionThumb {
			asset.Thumb = r
		} else {
			asset.Display = r
		}
	}
	return asset, nil
}

func (s *AssetService) loadRendition(ctx context.Context, a *domain.AssetSummary, kind domain.RenditionKind) (domain.Rendition, error) {
	rc, mimeType, err := s.images.Get(ctx, imagestore.Key(a.ID, kind))
	if err != nil {
		return domain.Rendition{}, fmt.Errorf("failed to open %s rendition: %w", kind, err)
	}
	defer closeWithLog(rc, "rendition reader", s.logger)

	data, err := io.ReadAll(rc)
	if err != nil {
		return domain.Rendition{}, fmt.Errorf("failed to read %s rendition: %w", kind, err)
	}
	w, h := imaging.RenditionSize(kind, a.Width, a.Height)
	return domain.Rendition{Kind: kind, Width: w, Height: h, MimeType: mimeType, Data: data}, nil
}

// Rendition opens one rendition for streaming. The caller closes the reader.
func (s *AssetService) Rendition(ctx context.Context, id string, kind domain.RenditionKind) (io.ReadCloser, string, error) {
	if !kind.Valid() {
		return nil, "", fmt.Errorf("rendition %q: %w", kind, domain.ErrNotFound)
	}
	if _, err := s.Summary(ctx, id); err != nil {
		return nil, "", err
	}
	return s.images.Get(ctx, imagestore.Key(id, kind))
}

// RenditionURL is the path the guest app loads a rendition from.
func (s *AssetService) RenditionURL(id string, kind domain.RenditionKind) string {
	return s.opts.MediaURLPrefix + "/" + id + "/" + string(kind)
}

// DisplayURL returns the display rendition URL of an asset whose record and
// display binary both exist.
func (s *AssetService) DisplayURL(ctx context.Context, id string) (string, error) {
	if _, err := s.Summary(ctx, id); err != nil {
		return "", err
	}
	size, err := s.images.Stat(ctx, imagestore.Key(id, domain.RenditionDisplay))
	if err != nil {
		return "", fmt.Errorf("failed to stat display rendition: %w", err)
	}
	if size == 0 {
		return "", fmt.Errorf("asset %s has an empty display rendition: %w", id, domain.ErrNotFound)
	}
	return s.RenditionURL(id, domain.RenditionDisplay), nil
}

func (s *AssetService) Rename(ctx context.Context, id, name string) (*domain.AssetSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	if len(name) > MaxNameLen {
		return nil, domain.Invalid("name is longer than %d characters", MaxNameLen)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.assets.Rename(ctx, id, name); err != nil {
		return nil, err
	}
	return s.Summary(ctx, id)
}

// Delete removes the asset's renditions, then its record, then notifies
// subscribers. The record survives a failed rendition delete so the call can
// be retried. Deleting an unknown id succeeds without notifying anyone.
func (s *AssetService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.removeRenditions(ctx, id); err != nil {
		return err
	}
	removed, err := s.assets.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		s.logger.Debug("delete of unknown asset ignored", "asset_id", id)
		return nil
	}

	err = s.notifyDeleted(ctx, id)
	s.metrics.Delete()
	s.logger.Info("asset deleted", "asset_id", id)
	return err
}

// ClearAll removes every asset. Records whose renditions could not be
// removed are kept.
func (s *AssetService) ClearAll(ctx context.Context) error {
	list, err := s.assets.List(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, a := range list {
		if err := s.removeRenditions(ctx, a.ID); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	ids, err := s.assets.DeleteAll(ctx)
	if err != nil {
		return err
	}
	cleared := make(map[string]struct{}, len(list))
	for _, a := range list {
		cleared[a.ID] = struct{}{}
	}
	for _, id := range ids {
		// Uploaded after the listing above.
		if _, ok := cleared[id]; !ok {
			errs = append(errs, s.removeRenditions(ctx, id))
		}
		errs = append(errs, s.notifyDeleted(ctx, id))
		s.metrics.Delete()
	}
	s.logger.Info("asset library cleared", "assets", len(ids))
	return errors.Join(errs...)
}

func (s *AssetService) removeRenditions(ctx context.Context, id string) error {
	var errs []error
	for _, kind := range []domain.RenditionKind{domain.RenditionThumb, domain.RenditionDisplay} {
		if err := s.images.Delete(ctx, imagestore.Key(id, kind)); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s rendition of %s: %w", kind, id, err))
		}
	}
	return errors.Join(errs...)
}

func (s *AssetService) notifyDeleted(ctx context.Context, id string) error {
	s.subMu.RLock()
	subs := make([]DeletedFunc, len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.RUnlock()

	var errs []error
	for _, fn := range subs {
		if err := fn(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Usage reports current storage usage against the quota.
func (s *AssetService) Usage(ctx context.Context) (quota.Usage, error) {
	u, err := s.quota.Estimate(ctx)
	if err != nil {
		return quota.Usage{}, err
	}
	s.metrics.StorageUsed(u.Used)
	return u, nil
}

// LibraryStats summarises the library from its metadata rows.
type LibraryStats struct {
	Assets         int
	RenditionBytes int64
}

func (s *AssetService) Stats(ctx context.Context) (LibraryStats, error) {
	n, err := s.assets.Count(ctx)
	if err != nil {
		return LibraryStats{}, err
	}
	total, err := s.assets.RenditionBytes(ctx)
	if err != nil {
		return LibraryStats{}, err
	}
	return LibraryStats{Assets: n, RenditionBytes: total}, nil
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
