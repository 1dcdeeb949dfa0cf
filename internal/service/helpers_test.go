package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/db"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/metrics"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/quota"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/store"
)

// memImageStore is a minimal in-memory imagestore.ImageStore for tests.
type memImageStore struct {
	mu      sync.Mutex
	saved   map[string][]byte
	saveErr map[string]error // keyed by key suffix, e.g. "display.jpg"
	delErr  map[string]error // keyed by key suffix
}

func newMemImageStore() *memImageStore {
	return &memImageStore{saved: make(map[string][]byte), saveErr: make(map[string]error), delErr: make(map[string]error)}
}

func (m *memImageStore) Save(_ context.Context, key, _ string, r io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for suffix, err := range m.saveErr {
		if strings.HasSuffix(key, suffix) {
			return err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.saved[key] = data
	return nil
}

func (m *memImageStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.saved[key]
	if !ok {
		return nil, "", fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (m *memImageStore) Stat(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.saved[key]
	if !ok {
		return 0, fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	return int64(len(data)), nil
}

func (m *memImageStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for suffix, err := range m.delErr {
		if strings.HasSuffix(key, suffix) {
			return err
		}
	}
	delete(m.saved, key)
	return nil
}

func (m *memImageStore) Usage(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, d := range m.saved {
		total += int64(len(d))
	}
	return total, nil
}

func (m *memImageStore) failDelete(suffix string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.delErr, suffix)
		return
	}
	m.delErr[suffix] = err
}

func (m *memImageStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

type fixedEstimator struct {
	usage quota.Usage
	err   error
}

func (f fixedEstimator) Estimate(context.Context) (quota.Usage, error) {
	return f.usage, f.err
}

type testEnv struct {
	assets      *AssetService
	assignments *AssignmentService
	resolver    *Resolver
	assetStore  *store.AssetStore
	images      *memImageStore
	metrics     *metrics.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	env := &testEnv{
		assetStore: store.NewAssetStore(d),
		images:     newMemImageStore(),
		metrics:    metrics.New(),
	}
	env.assets = NewAssetService(env.assetStore, env.images,
		quota.NewBudget(1<<30, env.images.Usage), Options{}, env.metrics, slog.Default())
	env.assignments = NewAssignmentService(store.NewAssignmentStore(d), slog.Default())
	env.assets.OnDeleted(env.assignments.AssetDeleted)
	env.resolver = NewResolver(env.assignments, env.assets, env.metrics, slog.Default())
	return env
}

func fill(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, fill(w, h, color.RGBA{R: 30, G: 90, B: 160, A: 255}), nil))
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, fill(w, h, color.White)))
	return buf.Bytes()
}

func uploadPNG(t *testing.T, env *testEnv, filename string) *domain.Asset {
	t.Helper()
	data := pngBytes(t, 40, 30)
	a, err := env.assets.Upload(context.Background(), UploadRequest{
		Data: data, MimeType: "image/png", Filename: filename, Size: int64(len(data)),
	})
	require.NoError(t, err)
	return a
}
