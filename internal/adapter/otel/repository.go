package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmaros/branchstock/internal/domain"
)

const tracerName = "github.com/dmaros/branchstock/internal/adapter/otel"

// TracingRepository wraps a domain.TransferRepository with OpenTelemetry
// tracing. Each method creates a span with semantic attributes and records
// errors.
type TracingRepository struct {
	next   domain.TransferRepository
	tracer trace.Tracer
}

// Compile-time check: TracingRepository implements domain.TransferRepository.
var _ domain.TransferRepository = (*TracingRepository)(nil)

// NewTracingRepository creates a tracing decorator around the given repository.
func NewTracingRepository(next domain.TransferRepository) *TracingRepository {
	return &TracingRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRepository) Create(ctx context.Context, t domain.Transfer) error {
	ctx, span := r.tracer.Start(ctx, "TransferRepository.Create",
		trace.WithAttributes(
			attribute.String("transfer.id", t.ID),
			attribute.String("transfer.product_id", t.ProductID),
			attribute.String("transfer.from_branch", t.FromBranch),
			attribute.String("transfer.to_branch", t.ToBranch),
			attribute.Int("transfer.quantity", t.Quantity),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, t)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingRepository) GetByID(ctx context.Context, id string) (domain.Transfer, error) {
	ctx, span := r.tracer.Start(ctx, "TransferRepository.GetByID",
		trace.WithAttributes(attribute.String("transfer.id", id)),
	)
	defer span.End()

	transfer, err := r.next.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return transfer, err
}

func (r *TracingRepository) List(ctx context.Context, filter domain.TransferFilter) ([]domain.Transfer, int, error) {
	ctx, span := r.tracer.Start(ctx, "TransferRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.page", filter.Page),
			attribute.Int("filter.limit", filter.Limit),
		),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}
	if filter.Branch != nil {
		span.SetAttributes(attribute.String("filter.branch", *filter.Branch))
	}

	transfers, total, err := r.next.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			attribute.Int("result.count", len(transfers)),
			attribute.Int("result.total", total),
		)
	}
	return transfers, total, err
}

func (r *TracingRepository) Update(ctx context.Context, t domain.Transfer) error {
	ctx, span := r.tracer.Start(ctx, "TransferRepository.Update",
		trace.WithAttributes(
			attribute.String("transfer.id", t.ID),
			attribute.String("transfer.status", string(t.Status)),
		),
	)
	defer span.End()

	err := r.next.Update(ctx, t)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingRepository) Stats(ctx context.Context, filter domain.StatsFilter) (domain.TransferStats, error) {
	ctx, span := r.tracer.Start(ctx, "TransferRepository.Stats")
	defer span.End()

	if filter.Branch != nil {
		span.SetAttributes(attribute.String("filter.branch", *filter.Branch))
	}

	stats, err := r.next.Stats(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.total", stats.Total))
	}
	return stats, err
}
