package otel_test

import (
	"context"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel/codes"

	adapter "github.com/dmaros/branchstock/internal/adapter/otel"
	"github.com/dmaros/branchstock/internal/domain"
)

// --- Mock publisher ---

type mockPublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	event    domain.Event
	transfer domain.Transfer
}

func (m *mockPublisher) Publish(_ context.Context, e domain.Event, t domain.Transfer) error {
	m.events = append(m.events, publishedEvent{event: e, transfer: t})
	return nil
}

type failingPublisher struct{}

func (p *failingPublisher) Publish(_ context.Context, _ domain.Event, _ domain.Transfer) error {
	return fmt.Errorf("publish failed")
}

// --- Tests ---

func TestTracingPublisher_Publish_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := &mockPublisher{}
	pub := adapter.NewTracingPublisher(inner)

	transfer := domain.NewTransfer("t-1", "p-1", "b-a", "b-b", 3, domain.ReasonRestock, "", "u-1")
	if err := pub.Publish(context.Background(), domain.EventCreated, transfer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "EventPublisher.Publish" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "EventPublisher.Publish")
	}

	assertAttribute(t, spans[0], "event.type", "created")
	assertAttribute(t, spans[0], "transfer.id", "t-1")
	assertAttribute(t, spans[0], "transfer.product_id", "p-1")

	if len(inner.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(inner.events))
	}
}

func TestTracingPublisher_Publish_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	pub := adapter.NewTracingPublisher(&failingPublisher{})

	transfer := domain.NewTransfer("t-1", "p-1", "b-a", "b-b", 3, domain.ReasonRestock, "", "u-1")
	err := pub.Publish(context.Background(), domain.EventCreated, transfer)
	if err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
}
