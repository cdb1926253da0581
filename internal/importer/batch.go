package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/kupimoda/catalog-importer/internal/domain"
	"github.com/kupimoda/catalog-importer/internal/event"
	"github.com/kupimoda/catalog-importer/internal/metrics"
	"github.com/kupimoda/catalog-importer/internal/repository"
	"github.com/kupimoda/catalog-importer/pkg/validator"
)

// Summary is the final tally of a batch run.
type Summary struct {
	Total    int
	Imported int
	Failed   int
}

// Runner drives a full import: load the source files, resolve reference
// data once, then process every record. A failed record is logged and
// counted; it never aborts the batch.
type Runner struct {
	catalog    repository.Catalog
	refs       repository.Refs
	upserter   *Upserter
	events     *event.Producer
	logger     *slog.Logger
	adminEmail string
}

// NewRunner creates a new batch runner.
func NewRunner(
	catalog repository.Catalog,
	refs repository.Refs,
	upserter *Upserter,
	events *event.Producer,
	logger *slog.Logger,
	adminEmail string,
) *Runner {
	return &Runner{
		catalog:    catalog,
		refs:       refs,
		upserter:   upserter,
		events:     events,
		logger:     logger,
		adminEmail: adminEmail,
	}
}

// Run executes the import over the given source files and returns the
// summary. It fails outright only when nothing can be imported at all:
// no readable records, or reference data unavailable.
func (r *Runner) Run(ctx context.Context, paths []string) (*Summary, error) {
	records := r.loadRecords(ctx, paths)
	if len(records) == 0 {
		return nil, fmt.Errorf("no product records found in %d source file(s)", len(paths))
	}

	adminID, err := r.refs.AdminID(ctx, r.adminEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve admin %s: %w", r.adminEmail, err)
	}

	brands, err := r.refs.BrandsByName(ctx)
	if err != nil {
		return nil, fmt.Errorf("load brands: %w", err)
	}

	categories, err := r.refs.CategoriesByExternalID(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	refMaps := &RefMaps{Brands: brands, Categories: categories}

	summary := &Summary{Total: len(records)}
	for i := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		rec := &records[i]
		if err := r.processRecord(ctx, rec, refMaps, adminID); err != nil {
			summary.Failed++
			metrics.RecordsFailed.Inc()
			r.logger.ErrorContext(ctx, "failed to import product",
				slog.String("external_id", rec.ExternalID),
				slog.String("name", rec.Name),
				slog.Any("error", err),
			)
			r.publishFailed(ctx, rec, err)
			continue
		}

		summary.Imported++
		metrics.RecordsImported.Inc()
	}

	r.logger.InfoContext(ctx, "import finished",
		slog.Int("total", summary.Total),
		slog.Int("imported", summary.Imported),
		slog.Int("failed", summary.Failed),
	)

	return summary, nil
}

// loadRecords reads and concatenates all source files. Unreadable or
// malformed files are skipped with a warning so one bad file does not
// sink the batch.
func (r *Runner) loadRecords(ctx context.Context, paths []string) []domain.ProductRecord {
	var records []domain.ProductRecord
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.WarnContext(ctx, "cannot read source file, skipping",
				slog.String("path", path),
				slog.Any("error", err),
			)
			continue
		}

		var batch []domain.ProductRecord
		if err := json.Unmarshal(data, &batch); err != nil {
			r.logger.WarnContext(ctx, "cannot parse source file, skipping",
				slog.String("path", path),
				slog.Any("error", err),
			)
			continue
		}

		r.logger.InfoContext(ctx, "loaded source file",
			slog.String("path", path),
			slog.Int("records", len(batch)),
		)
		records = append(records, batch...)
	}

	return records
}

func (r *Runner) processRecord(ctx context.Context, rec *domain.ProductRecord, refs *RefMaps, adminID string) error {
	if err := validator.Validate(rec); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}

	result, err := r.upserter.Upsert(ctx, rec, refs, adminID)
	if err != nil {
		return err
	}

	if err := r.events.PublishProductImported(ctx, result.Product, result.VariantCount, result.Created); err != nil {
		r.logger.WarnContext(ctx, "failed to publish import event",
			slog.String("external_id", rec.ExternalID),
			slog.Any("error", err),
		)
	}

	return nil
}

func (r *Runner) publishFailed(ctx context.Context, rec *domain.ProductRecord, importErr error) {
	if err := r.events.PublishProductFailed(ctx, rec.ExternalID, rec.Name, importErr); err != nil {
		r.logger.WarnContext(ctx, "failed to publish failure event",
			slog.String("external_id", rec.ExternalID),
			slog.Any("error", err),
		)
	}
}
