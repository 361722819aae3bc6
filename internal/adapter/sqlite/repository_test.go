package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmaros/branchstock/internal/adapter/sqlite"
	"github.com/dmaros/branchstock/internal/domain"
)

// newTestRepo creates an in-memory SQLite repository seeded with two
// branches, a product and a user.
func newTestRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	if err := repo.CreateBranch(ctx, domain.NewBranch("b-a", "Branch A", "A")); err != nil {
		t.Fatalf("seeding branch: %v", err)
	}
	if err := repo.CreateBranch(ctx, domain.NewBranch("b-b", "Branch B", "B")); err != nil {
		t.Fatalf("seeding branch: %v", err)
	}
	if err := repo.CreateProduct(ctx, domain.NewProduct("p-1", "Widget", "W-1", "b-a")); err != nil {
		t.Fatalf("seeding product: %v", err)
	}
	user := domain.User{ID: "u-1", Username: "ada", PasswordHash: "x", Role: domain.RoleTeam,
		Capabilities: []domain.Capability{domain.CapabilityTransferProducts}}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	return repo
}

func mustCreateTransfer(t *testing.T, repo *sqlite.Repository, transfer domain.Transfer) {
	t.Helper()
	if err := repo.Create(context.Background(), transfer); err != nil {
		t.Fatalf("mustCreateTransfer failed: %v", err)
	}
}

func newPendingTransfer(id string, quantity int) domain.Transfer {
	return domain.NewTransfer(id, "p-1", "b-a", "b-b", quantity, domain.ReasonRestock, "", "u-1")
}

// --- Transfers ---

func TestCreate_And_GetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	transfer := domain.NewTransfer("t-1", "p-1", "b-a", "b-b", 4, domain.ReasonDemand, "urgent", "u-1")
	mustCreateTransfer(t, repo, transfer)

	got, err := repo.GetByID(ctx, "t-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.ID != "t-1" {
		t.Errorf("ID = %q, want %q", got.ID, "t-1")
	}
	if got.Quantity != 4 {
		t.Errorf("Quantity = %d, want 4", got.Quantity)
	}
	if got.Reason != domain.ReasonDemand {
		t.Errorf("Reason = %q, want %q", got.Reason, domain.ReasonDemand)
	}
	if got.Notes != "urgent" {
		t.Errorf("Notes = %q, want %q", got.Notes, "urgent")
	}
	if got.Status != domain.StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, domain.StatusPending)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}

	// Display fields joined from referenced entities.
	if got.ProductName != "Widget" {
		t.Errorf("ProductName = %q, want %q", got.ProductName, "Widget")
	}
	if got.FromBranchName != "Branch A" || got.ToBranchName != "Branch B" {
		t.Errorf("branch names = %q/%q, want Branch A/Branch B", got.FromBranchName, got.ToBranchName)
	}
	if got.CreatedByName != "ada" {
		t.Errorf("CreatedByName = %q, want %q", got.CreatedByName, "ada")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrTransferNotFound) {
		t.Errorf("expected ErrTransferNotFound, got %v", err)
	}
}

func TestUpdate_Transition(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	transfer := newPendingTransfer("t-1", 4)
	mustCreateTransfer(t, repo, transfer)

	transfer.Status = domain.StatusCancelled
	if err := repo.Update(ctx, transfer); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, "t-1")
	if got.Status != domain.StatusCancelled {
		t.Errorf("Status = %q, want %q", got.Status, domain.StatusCancelled)
	}
}

func TestUpdate_OnlyFromPending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	transfer := newPendingTransfer("t-1", 4)
	mustCreateTransfer(t, repo, transfer)

	transfer.Status = domain.StatusCancelled
	if err := repo.Update(ctx, transfer); err != nil {
		t.Fatalf("first update failed: %v", err)
	}

	// A second transition of the same transfer must fail.
	err := repo.Update(ctx, transfer)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Current != domain.StatusCancelled {
		t.Errorf("current = %q, want %q", trErr.Current, domain.StatusCancelled)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	transfer := newPendingTransfer("nonexistent", 1)
	transfer.Status = domain.StatusCancelled
	err := repo.Update(context.Background(), transfer)
	if !errors.Is(err, domain.ErrTransferNotFound) {
		t.Errorf("expected ErrTransferNotFound, got %v", err)
	}
}

func TestList_Filters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreateTransfer(t, repo, newPendingTransfer("t-1", 1))
	mustCreateTransfer(t, repo, newPendingTransfer("t-2", 2))

	cancelled := newPendingTransfer("t-3", 3)
	mustCreateTransfer(t, repo, cancelled)
	cancelled.Status = domain.StatusCancelled
	if err := repo.Update(ctx, cancelled); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	status := domain.StatusPending
	transfers, total, err := repo.List(ctx, domain.TransferFilter{Status: &status, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(transfers) != 2 {
		t.Errorf("got %d transfers, want 2", len(transfers))
	}

	branch := "b-b"
	transfers, total, err = repo.List(ctx, domain.TransferFilter{Branch: &branch, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3 (branch matches source or destination)", total)
	}
	if len(transfers) != 3 {
		t.Errorf("got %d transfers, want 3", len(transfers))
	}
}

func TestList_PaginationPastEnd(t *testing.T) {
	repo := newTestRepo(t)

	for i := range 5 {
		mustCreateTransfer(t, repo, newPendingTransfer(fmt.Sprintf("t-%d", i), 1))
	}

	transfers, total, err := repo.List(context.Background(), domain.TransferFilter{Page: 4, Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(transfers) != 0 {
		t.Errorf("got %d transfers, want 0 (page past end)", len(transfers))
	}
}

func TestStats_Buckets(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreateTransfer(t, repo, newPendingTransfer("t-1", 3))

	other := domain.NewTransfer("t-2", "p-1", "b-a", "b-b", 5, domain.ReasonEmergency, "", "u-1")
	mustCreateTransfer(t, repo, other)
	other.Status = domain.StatusCancelled
	if err := repo.Update(ctx, other); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stats, err := repo.Stats(ctx, domain.StatsFilter{})
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
	if stats.TotalQuantity != 8 {
		t.Errorf("TotalQuantity = %d, want 8", stats.TotalQuantity)
	}
	if got := stats.ByStatus[domain.StatusCancelled]; got.Count != 1 || got.Quantity != 5 {
		t.Errorf("cancelled bucket = %+v, want {1 5}", got)
	}
	if got := stats.ByReason[domain.ReasonRestock]; got.Count != 1 || got.Quantity != 3 {
		t.Errorf("restock bucket = %+v, want {1 3}", got)
	}
}

// --- Stock ledger ---

func TestLedger_DepositAndQuantity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Missing rows read as zero.
	qty, err := repo.Quantity(ctx, "p-1", "b-a")
	if err != nil {
		t.Fatalf("Quantity failed: %v", err)
	}
	if qty != 0 {
		t.Errorf("quantity = %d, want 0", qty)
	}

	if err := repo.Deposit(ctx, "p-1", "b-a", 10); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := repo.Deposit(ctx, "p-1", "b-a", 5); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	qty, _ = repo.Quantity(ctx, "p-1", "b-a")
	if qty != 15 {
		t.Errorf("quantity = %d, want 15", qty)
	}
}

func TestLedger_ReserveConditional(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Deposit(ctx, "p-1", "b-a", 10); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	if err := repo.Reserve(ctx, "p-1", "b-a", 4); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	qty, _ := repo.Quantity(ctx, "p-1", "b-a")
	if qty != 6 {
		t.Errorf("quantity = %d, want 6", qty)
	}

	// Exact exhaustion succeeds.
	if err := repo.Reserve(ctx, "p-1", "b-a", 6); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	qty, _ = repo.Quantity(ctx, "p-1", "b-a")
	if qty != 0 {
		t.Errorf("quantity = %d, want 0", qty)
	}

	// One more than available fails and leaves the ledger untouched.
	err := repo.Reserve(ctx, "p-1", "b-a", 1)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 0 || stockErr.Requested != 1 {
		t.Errorf("available/requested = %d/%d, want 0/1", stockErr.Available, stockErr.Requested)
	}
}

func TestLedger_ReserveMissingRow(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Reserve(context.Background(), "p-1", "b-b", 1)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
}

func TestLedger_Levels(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Deposit(ctx, "p-1", "b-a", 10); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := repo.Deposit(ctx, "p-1", "b-b", 3); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	levels, err := repo.Levels(ctx, "p-1")
	if err != nil {
		t.Fatalf("Levels failed: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("got %d levels, want 2", len(levels))
	}
	if levels[0].BranchID != "b-a" || levels[0].Quantity != 10 {
		t.Errorf("levels[0] = %+v, want b-a with 10", levels[0])
	}
}

// --- Catalog and users ---

func TestCreateBranch_DuplicateCode(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.CreateBranch(context.Background(), domain.NewBranch("b-x", "Other", "A"))
	var codeErr *domain.CodeConflictError
	if !errors.As(err, &codeErr) {
		t.Fatalf("expected CodeConflictError, got %v", err)
	}
	if codeErr.Code != "A" {
		t.Errorf("code = %q, want %q", codeErr.Code, "A")
	}
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.CreateProduct(context.Background(), domain.NewProduct("p-2", "Other", "W-1", "b-a"))
	var skuErr *domain.SKUConflictError
	if !errors.As(err, &skuErr) {
		t.Fatalf("expected SKUConflictError, got %v", err)
	}
}

func TestGetBranch_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetBranch(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrBranchNotFound) {
		t.Errorf("expected ErrBranchNotFound, got %v", err)
	}
}

func TestUsers_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetUserByUsername(context.Background(), "ada")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if got.ID != "u-1" {
		t.Errorf("ID = %q, want %q", got.ID, "u-1")
	}
	if got.Role != domain.RoleTeam {
		t.Errorf("Role = %q, want %q", got.Role, domain.RoleTeam)
	}
	if len(got.Capabilities) != 1 || got.Capabilities[0] != domain.CapabilityTransferProducts {
		t.Errorf("Capabilities = %v, want [transfer_products]", got.Capabilities)
	}

	_, err = repo.GetUserByID(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
