package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/studybuddy/studybuddy-backend/internal/platform/envutil"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

// Store is the uploaded-file blob store. Keys are opaque relative paths like
// "documents/<uuid>/notes.pdf".
type Store interface {
	Upload(ctx context.Context, key string, r io.Reader) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// NewFromEnv picks the store backend. STORAGE_PROVIDER=gcs uses Google Cloud
// Storage; anything else falls back to local disk.
func NewFromEnv(log *logger.Logger) (Store, error) {
	provider := envutil.GetEnv("STORAGE_PROVIDER", "local", log)
	switch provider {
	case "gcs":
		return NewGCSStore(log)
	case "local":
		return NewDiskStore(log)
	default:
		return nil, fmt.Errorf("unknown STORAGE_PROVIDER %q", provider)
	}
}
