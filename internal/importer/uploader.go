package importer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/kupimoda/catalog-importer/internal/domain"
	"github.com/kupimoda/catalog-importer/internal/storage"
)

// Uploader reads local image files, sniffs their content type and uploads
// them to object storage under a deterministic key.
type Uploader struct {
	store      storage.Storage
	imagesRoot string
	logger     *slog.Logger
}

// NewUploader creates a new asset uploader rooted at imagesRoot.
func NewUploader(store storage.Storage, imagesRoot string, logger *slog.Logger) *Uploader {
	return &Uploader{
		store:      store,
		imagesRoot: imagesRoot,
		logger:     logger,
	}
}

// Upload uploads the image at localPath (relative to the images root) for
// the product identified by externalID. index is the image's position in
// the product's image list and shapes the storage key:
//
//	products/{externalID}/{externalID}-{index+1}.{ext}
//
// Missing files and unrecognizable content are soft failures: Upload logs
// a warning and returns (nil, nil) so the batch continues. Only a storage
// backend failure returns an error.
func (u *Uploader) Upload(ctx context.Context, localPath, externalID string, index int) (*domain.FileInfo, error) {
	fullPath := filepath.Join(u.imagesRoot, localPath)

	data, err := os.ReadFile(fullPath)
	if err != nil {
		u.logger.WarnContext(ctx, "image file unreadable, skipping",
			slog.String("path", fullPath),
			slog.String("external_id", externalID),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	mtype := mimetype.Detect(data)
	ext := mtype.Extension()
	if ext == "" {
		u.logger.WarnContext(ctx, "image content type unrecognized, skipping",
			slog.String("path", fullPath),
			slog.String("external_id", externalID),
			slog.String("detected", mtype.String()),
		)
		return nil, nil
	}

	name := fmt.Sprintf("%s-%d%s", externalID, index+1, ext)
	key := fmt.Sprintf("products/%s/%s", externalID, name)

	_, err = u.store.Upload(ctx, &storage.UploadInput{
		Key:         key,
		ContentType: mtype.String(),
		Size:        int64(len(data)),
		Data:        bytes.NewReader(data),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	return &domain.FileInfo{
		ID:          uuid.New().String(),
		Name:        name,
		ContentType: mtype.String(),
		Size:        int64(len(data)),
		StorageKey:  key,
	}, nil
}
