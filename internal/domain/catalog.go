package domain

import "time"

// Branch is a physical or organizational inventory location.
type Branch struct {
	ID        string
	Name      string
	Code      string
	CreatedAt time.Time
}

// NewBranch creates a branch.
func NewBranch(id, name, code string) Branch {
	return Branch{
		ID:        id,
		Name:      name,
		Code:      code,
		CreatedAt: time.Now().UTC(),
	}
}

// Product is a catalog entry. Its home branch is where new stock is received
// by default; actual quantities live in the stock ledger, keyed per
// (product, branch) pair.
type Product struct {
	ID         string
	Name       string
	SKU        string
	HomeBranch string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewProduct creates a product belonging to the given home branch.
func NewProduct(id, name, sku, homeBranch string) Product {
	now := time.Now().UTC()
	return Product{
		ID:         id,
		Name:       name,
		SKU:        sku,
		HomeBranch: homeBranch,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// StockLevel is one row of the stock ledger: the quantity of a product held
// at a branch. Quantity is never negative.
type StockLevel struct {
	ProductID string
	BranchID  string
	Quantity  int
}
