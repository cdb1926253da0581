package importer

import (
	"context"
	"log/slog"
	"time"

	"github.com/kupimoda/catalog-importer/internal/domain"
	"github.com/kupimoda/catalog-importer/internal/metrics"
	"github.com/kupimoda/catalog-importer/internal/repository"
)

// Linker attaches uploaded image assets to a product as ordered, typed
// file associations.
type Linker struct {
	uploader *Uploader
	logger   *slog.Logger
}

// NewLinker creates a new image linker.
func NewLinker(uploader *Uploader, logger *slog.Logger) *Linker {
	return &Linker{
		uploader: uploader,
		logger:   logger,
	}
}

// Link uploads each image path in order and inserts a file asset plus a
// join row: type "main" for the first image, "gallery" for the rest,
// sort order by position, alt text from the product name. Individual
// upload failures are skipped with a warning and never fail the product;
// database errors do, rolling back the transaction. Returns the number of
// images linked.
func (l *Linker) Link(ctx context.Context, tx repository.Tx, product *domain.Product, imagePaths []string, adminID string) (int, error) {
	linked := 0

	for i, path := range imagePaths {
		info, err := l.uploader.Upload(ctx, path, product.ExternalID, i)
		if err != nil {
			l.logger.WarnContext(ctx, "image upload failed, skipping",
				slog.String("external_id", product.ExternalID),
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			metrics.ImagesSkipped.Inc()
			continue
		}
		if info == nil {
			// Missing or unrecognized file; the uploader already warned.
			metrics.ImagesSkipped.Inc()
			continue
		}

		asset := &domain.FileAsset{
			ID:          info.ID,
			Name:        info.Name,
			ContentType: info.ContentType,
			Size:        info.Size,
			StorageKey:  info.StorageKey,
			UploadedBy:  adminID,
			CreatedAt:   time.Now().UTC(),
		}

		if err := tx.InsertFile(ctx, asset); err != nil {
			return linked, err
		}

		link := &domain.FileLink{
			FileID:    asset.ID,
			ProductID: product.ID,
			Type:      domain.LinkTypeForIndex(i),
			SortOrder: i,
			Alt:       product.Name,
		}

		if err := tx.LinkFile(ctx, link); err != nil {
			return linked, err
		}

		metrics.ImagesUploaded.Inc()
		linked++
	}

	return linked, nil
}
