package app

import (
	"context"
	"fmt"

	"github.com/dmaros/branchstock/internal/domain"
)

// CatalogService manages branches, products and stock receiving. It exists
// so transfers have something to move; the transfer workflow itself lives
// in TransferService.
type CatalogService struct {
	catalog domain.CatalogRepository
	ledger  domain.StockLedger
}

// NewCatalogService creates a service with the given adapters.
func NewCatalogService(catalog domain.CatalogRepository, ledger domain.StockLedger) *CatalogService {
	return &CatalogService{catalog: catalog, ledger: ledger}
}

// CreateBranch persists a new branch.
func (s *CatalogService) CreateBranch(ctx context.Context, name, code string) (domain.Branch, error) {
	branch := domain.NewBranch(newID(), name, code)
	if err := s.catalog.CreateBranch(ctx, branch); err != nil {
		return domain.Branch{}, err
	}
	return branch, nil
}

// ListBranches returns all branches.
func (s *CatalogService) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	return s.catalog.ListBranches(ctx)
}

// CreateProduct persists a new product after checking its home branch exists.
func (s *CatalogService) CreateProduct(ctx context.Context, name, sku, homeBranch string) (domain.Product, error) {
	if _, err := s.catalog.GetBranch(ctx, homeBranch); err != nil {
		return domain.Product{}, err
	}

	product := domain.NewProduct(newID(), name, sku, homeBranch)
	if err := s.catalog.CreateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// GetProduct returns a product with its per-branch stock levels.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, []domain.StockLevel, error) {
	product, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, nil, err
	}

	levels, err := s.ledger.Levels(ctx, product.ID)
	if err != nil {
		return domain.Product{}, nil, fmt.Errorf("reading stock levels: %w", err)
	}

	return product, levels, nil
}

// ListProducts returns all products.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.catalog.ListProducts(ctx)
}

// ReceiveStock adds quantity to a product's stock at a branch, such as an
// incoming supplier delivery.
func (s *CatalogService) ReceiveStock(ctx context.Context, productID, branchID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, &domain.ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	if _, err := s.catalog.GetBranch(ctx, branchID); err != nil {
		return 0, err
	}

	if err := s.ledger.Deposit(ctx, product.ID, branchID, quantity); err != nil {
		return 0, fmt.Errorf("depositing stock: %w", err)
	}

	return s.ledger.Quantity(ctx, product.ID, branchID)
}
