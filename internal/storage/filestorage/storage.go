// Package filestorage abstracts where uploaded binaries live. The upload
// workflow only ever sees Store and Delete; whether a binary ends up on
// local disk or at a remote provider is a deployment decision.
package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// StoredFile is the result of persisting a binary: a publicly reachable
// URL and a backend-specific reference used for later deletion.
type StoredFile struct {
	URL       string
	Reference string
}

type FileStorage interface {
	Store(ctx context.Context, file *multipart.FileHeader) (StoredFile, error)
	Delete(ctx context.Context, reference string) error
}

const gallerySubDir = "gallery"

// LocalFileStorage writes binaries under baseDir/gallery and serves them
// from baseURL/uploads/gallery. References are paths relative to baseDir.
type LocalFileStorage struct {
	baseDir string
	baseURL string
}

func NewLocalFileStorage(baseDir, baseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, gallerySubDir), 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalFileStorage) Store(ctx context.Context, file *multipart.FileHeader) (StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}

	name := generateFilename(file.Filename)
	fullPath := filepath.Join(s.baseDir, gallerySubDir, name)

	src, err := file.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(fullPath)
		return StoredFile{}, fmt.Errorf("failed to copy file: %w", err)
	}

	return StoredFile{
		URL:       s.baseURL + "/uploads/" + path.Join(gallerySubDir, name),
		Reference: filepath.Join(gallerySubDir, name),
	}, nil
}

// Delete removes a previously stored binary. A missing file is not an
// error: the compensation path may run after a partial cleanup.
func (s *LocalFileStorage) Delete(ctx context.Context, reference string) error {
	if err := os.Remove(filepath.Join(s.baseDir, reference)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// generateFilename builds a collision-resistant name keeping only the
// original extension: image-<unix ms>-<random>.<ext>.
func generateFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))

	return fmt.Sprintf("image-%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}
