// Package metrics exposes Prometheus counters for the import run. They are
// served on the optional debug endpoint so long batches can be watched
// in-flight.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsImported counts product records committed successfully.
	RecordsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_import_records_imported_total",
		Help: "Number of product records imported successfully.",
	})

	// RecordsFailed counts product records whose transaction was rolled back.
	RecordsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_import_records_failed_total",
		Help: "Number of product records that failed to import.",
	})

	// ImagesUploaded counts images uploaded to object storage.
	ImagesUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_import_images_uploaded_total",
		Help: "Number of images uploaded to object storage.",
	})

	// ImagesSkipped counts images skipped because the file was missing,
	// unrecognized or failed to upload.
	ImagesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_import_images_skipped_total",
		Help: "Number of images skipped during import.",
	})

	// VariantsCreated counts variants materialized from size/color expansion.
	VariantsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_import_variants_created_total",
		Help: "Number of product variants created.",
	})
)
