package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/dmaros/branchstock/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// EventJobArgs carries the data needed to process a transfer event
// asynchronously. River serializes this as JSON into its job queue table. It
// includes a snapshot of the transfer at the time the event was published, so
// the worker never needs to query the database.
type EventJobArgs struct {
	Event      string `json:"event"`
	TransferID string `json:"transfer_id"`
	ProductID  string `json:"product_id"`
	FromBranch string `json:"from_branch"`
	ToBranch   string `json:"to_branch"`
	Quantity   int    `json:"quantity"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	CreatedBy  string `json:"created_by"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "transfer.event" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a transfer event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, transfer domain.Transfer) error {
	_, err := p.client.Insert(ctx, EventJobArgs{
		Event:      string(event),
		TransferID: transfer.ID,
		ProductID:  transfer.ProductID,
		FromBranch: transfer.FromBranch,
		ToBranch:   transfer.ToBranch,
		Quantity:   transfer.Quantity,
		Reason:     string(transfer.Reason),
		Status:     string(transfer.Status),
		CreatedBy:  transfer.CreatedBy,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}
