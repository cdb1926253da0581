package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kupimoda/catalog-importer/internal/domain"
	pkgkafka "github.com/kupimoda/catalog-importer/pkg/kafka"
)

// Kafka topic constants for catalog import events.
const (
	TopicProductImported = "catalog.product.imported"
	TopicProductFailed   = "catalog.product.failed"
)

// Aggregate type constant.
const AggregateTypeProduct = "product"

// Source identifier for events originating from the importer.
const SourceImporter = "catalog-importer"

// ProductImportedData is the payload for a product.imported event.
type ProductImportedData struct {
	ID              string `json:"id"`
	ExternalID      string `json:"external_id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	BasePrice       int64  `json:"base_price"`
	SalePrice       *int64 `json:"sale_price,omitempty"`
	DiscountPercent int    `json:"discount_percent"`
	VariantCount    int    `json:"variant_count"`
	Created         bool   `json:"created"`
}

// ProductFailedData is the payload for a product.failed event.
type ProductFailedData struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Error      string `json:"error"`
}

// Producer publishes catalog import events to Kafka. A nil Producer is
// valid and drops all events, used when no brokers are configured.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the importer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishProductImported publishes a product.imported event.
func (p *Producer) PublishProductImported(ctx context.Context, product *domain.Product, variantCount int, created bool) error {
	if p == nil || p.kafka == nil {
		return nil
	}

	data := ProductImportedData{
		ID:              product.ID,
		ExternalID:      product.ExternalID,
		Name:            product.Name,
		Slug:            product.Slug,
		BasePrice:       product.BasePrice,
		SalePrice:       product.SalePrice,
		DiscountPercent: product.DiscountPercent,
		VariantCount:    variantCount,
		Created:         created,
	}

	event, err := pkgkafka.NewEvent(TopicProductImported, product.ID, AggregateTypeProduct, SourceImporter, data)
	if err != nil {
		return fmt.Errorf("create product.imported event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductImported, event); err != nil {
		return fmt.Errorf("publish product.imported event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.imported event",
		slog.String("product_id", product.ID),
		slog.String("external_id", product.ExternalID),
	)

	return nil
}

// PublishProductFailed publishes a product.failed event.
func (p *Producer) PublishProductFailed(ctx context.Context, externalID, name string, importErr error) error {
	if p == nil || p.kafka == nil {
		return nil
	}

	data := ProductFailedData{
		ExternalID: externalID,
		Name:       name,
		Error:      importErr.Error(),
	}

	event, err := pkgkafka.NewEvent(TopicProductFailed, externalID, AggregateTypeProduct, SourceImporter, data)
	if err != nil {
		return fmt.Errorf("create product.failed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductFailed, event); err != nil {
		return fmt.Errorf("publish product.failed event: %w", err)
	}

	return nil
}
