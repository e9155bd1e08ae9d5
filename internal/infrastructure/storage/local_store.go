package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/festoofficial/festo/domain"
)

// Upload folders served under /uploads
const (
	FolderQR     = "qr"
	FolderProofs = "proofs"
)

// URLPrefix is the route the upload directory is mounted at
const URLPrefix = "/uploads"

// rasterTypes are the image types accepted for upload. Vector and markup
// formats are refused since uploads are served from the API origin.
var rasterTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// LocalStore keeps uploads on the local filesystem
type LocalStore struct {
	root string
}

// NewLocalStore creates root and its upload folders
func NewLocalStore(root string) (*LocalStore, error) {
	for _, folder := range []string{FolderQR, FolderProofs} {
		if err := os.MkdirAll(filepath.Join(root, folder), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &LocalStore{root: root}, nil
}

// Root returns the directory served at URLPrefix
func (s *LocalStore) Root() string { return s.root }

// Save implements domain.FileStore. Only raster image content is accepted;
// the stored name is generated and the extension follows the sniffed type.
func (s *LocalStore) Save(ctx context.Context, folder, filename string, data []byte) (string, error) {
	if folder != FolderQR && folder != FolderProofs {
		return "", fmt.Errorf("unknown upload folder %q", folder)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), rasterTypes...) {
		return "", domain.ErrInvalidUpload
	}

	name := uuid.NewString() + mt.Extension()
	if err := os.WriteFile(filepath.Join(s.root, folder, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path.Join(URLPrefix, folder, name), nil
}
