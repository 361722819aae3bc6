package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dmaros/branchstock/internal/domain"
)

// CreateTransferInput carries the caller-supplied fields for a new transfer.
type CreateTransferInput struct {
	ProductID  string
	FromBranch string
	ToBranch   string
	Quantity   int
	Reason     domain.Reason
	Notes      string
	CreatedBy  string
}

// TransferPage is one page of transfer results with pagination metadata.
type TransferPage struct {
	Transfers []domain.Transfer
	Page      int
	Limit     int
	Total     int
	Pages     int
}

// TransferService orchestrates the transfer lifecycle: reserving stock at
// creation, delivering it on completion, and returning it on cancellation.
type TransferService struct {
	transfers domain.TransferRepository
	catalog   domain.CatalogRepository
	ledger    domain.StockLedger
	publisher domain.EventPublisher
	validator domain.TransitionValidator
}

// NewTransferService creates a service with the given adapters.
func NewTransferService(
	transfers domain.TransferRepository,
	catalog domain.CatalogRepository,
	ledger domain.StockLedger,
	publisher domain.EventPublisher,
	validator domain.TransitionValidator,
) *TransferService {
	return &TransferService{
		transfers: transfers,
		catalog:   catalog,
		ledger:    ledger,
		publisher: publisher,
		validator: validator,
	}
}

// Create validates a transfer request, reserves stock at the source branch
// and persists a pending transfer. The reserve is a single conditional
// decrement; if persisting the record fails afterwards, the reservation is
// released again so stock is never lost to a half-created transfer.
func (s *TransferService) Create(ctx context.Context, in CreateTransferInput) (domain.Transfer, error) {
	product, err := s.catalog.GetProduct(ctx, in.ProductID)
	if err != nil {
		return domain.Transfer{}, err
	}

	if in.FromBranch == in.ToBranch {
		return domain.Transfer{}, &domain.ValidationError{
			Field:  "toBranch",
			Reason: "source and destination branch cannot be the same",
		}
	}

	if in.Quantity <= 0 {
		return domain.Transfer{}, &domain.ValidationError{
			Field:  "quantity",
			Reason: "must be a positive integer",
		}
	}

	if !domain.ValidReason(in.Reason) {
		return domain.Transfer{}, &domain.ValidationError{
			Field:  "reason",
			Reason: fmt.Sprintf("unknown reason %q", in.Reason),
		}
	}

	if len(in.Notes) > domain.MaxNotesLength {
		return domain.Transfer{}, &domain.ValidationError{
			Field:  "notes",
			Reason: fmt.Sprintf("must be at most %d characters", domain.MaxNotesLength),
		}
	}

	available, err := s.ledger.Quantity(ctx, product.ID, in.FromBranch)
	if err != nil {
		return domain.Transfer{}, fmt.Errorf("reading stock: %w", err)
	}
	if available < in.Quantity {
		return domain.Transfer{}, &domain.InsufficientStockError{
			ProductID: product.ID,
			BranchID:  in.FromBranch,
			Available: available,
			Requested: in.Quantity,
		}
	}

	if _, err := s.catalog.GetBranch(ctx, in.FromBranch); err != nil {
		return domain.Transfer{}, err
	}
	if _, err := s.catalog.GetBranch(ctx, in.ToBranch); err != nil {
		return domain.Transfer{}, err
	}

	// The conditional decrement can still fail if a concurrent transfer
	// drained the stock after the read above.
	if err := s.ledger.Reserve(ctx, product.ID, in.FromBranch, in.Quantity); err != nil {
		return domain.Transfer{}, err
	}

	transfer := domain.NewTransfer(newID(), product.ID, in.FromBranch, in.ToBranch,
		in.Quantity, in.Reason, in.Notes, in.CreatedBy)

	if err := s.transfers.Create(ctx, transfer); err != nil {
		// Compensate: return the reserved quantity to the source branch.
		if relErr := s.ledger.Deposit(ctx, product.ID, in.FromBranch, in.Quantity); relErr != nil {
			return domain.Transfer{}, fmt.Errorf("creating transfer: %w (releasing reservation also failed: %v)", err, relErr)
		}
		return domain.Transfer{}, fmt.Errorf("creating transfer: %w", err)
	}

	if err := s.publisher.Publish(ctx, domain.EventCreated, transfer); err != nil {
		return domain.Transfer{}, fmt.Errorf("publishing creation event: %w", err)
	}

	return s.transfers.GetByID(ctx, transfer.ID)
}

// GetByID returns a transfer by its unique identifier.
func (s *TransferService) GetByID(ctx context.Context, id string) (domain.Transfer, error) {
	return s.transfers.GetByID(ctx, id)
}

// List returns a page of transfers matching the given filter, newest first.
// A page past the last one yields an empty page with accurate totals.
func (s *TransferService) List(ctx context.Context, filter domain.TransferFilter) (TransferPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	transfers, total, err := s.transfers.List(ctx, filter)
	if err != nil {
		return TransferPage{}, err
	}

	pages := total / filter.Limit
	if total%filter.Limit != 0 {
		pages++
	}

	return TransferPage{
		Transfers: transfers,
		Page:      filter.Page,
		Limit:     filter.Limit,
		Total:     total,
		Pages:     pages,
	}, nil
}

// Complete delivers a pending transfer: the reserved quantity is deposited
// at the destination branch and the transfer becomes terminal.
func (s *TransferService) Complete(ctx context.Context, id, actorID string) (domain.Transfer, error) {
	transfer, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return domain.Transfer{}, err
	}

	newStatus, err := s.validator.Apply(ctx, transfer.Status, domain.EventComplete)
	if err != nil {
		return domain.Transfer{}, err
	}

	now := time.Now().UTC()
	transfer.Status = newStatus
	transfer.CompletedAt = &now
	transfer.CompletedBy = &actorID

	if err := s.transfers.Update(ctx, transfer); err != nil {
		return domain.Transfer{}, fmt.Errorf("updating transfer: %w", err)
	}

	if err := s.ledger.Deposit(ctx, transfer.ProductID, transfer.ToBranch, transfer.Quantity); err != nil {
		return domain.Transfer{}, fmt.Errorf("depositing stock at destination: %w", err)
	}

	if err := s.publisher.Publish(ctx, domain.EventComplete, transfer); err != nil {
		return domain.Transfer{}, fmt.Errorf("publishing completion event: %w", err)
	}

	return s.transfers.GetByID(ctx, transfer.ID)
}

// Cancel aborts a pending transfer and returns the reserved quantity to the
// source branch. Only pending transfers can be cancelled.
func (s *TransferService) Cancel(ctx context.Context, id, actorID string) (domain.Transfer, error) {
	transfer, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return domain.Transfer{}, err
	}

	newStatus, err := s.validator.Apply(ctx, transfer.Status, domain.EventCancel)
	if err != nil {
		return domain.Transfer{}, err
	}

	transfer.Status = newStatus

	if err := s.transfers.Update(ctx, transfer); err != nil {
		return domain.Transfer{}, fmt.Errorf("updating transfer: %w", err)
	}

	if err := s.ledger.Deposit(ctx, transfer.ProductID, transfer.FromBranch, transfer.Quantity); err != nil {
		return domain.Transfer{}, fmt.Errorf("restoring stock at source: %w", err)
	}

	if err := s.publisher.Publish(ctx, domain.EventCancel, transfer); err != nil {
		return domain.Transfer{}, fmt.Errorf("publishing cancellation event: %w", err)
	}

	return s.transfers.GetByID(ctx, transfer.ID)
}

// Stats aggregates transfer counts and quantities by status and by reason.
func (s *TransferService) Stats(ctx context.Context, filter domain.StatsFilter) (domain.TransferStats, error) {
	return s.transfers.Stats(ctx, filter)
}
