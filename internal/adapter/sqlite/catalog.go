package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmaros/branchstock/internal/domain"
)

func (r *Repository) CreateBranch(ctx context.Context, b domain.Branch) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO branches (id, name, code, created_at) VALUES (?, ?, ?, ?)`,
		b.ID, b.Name, b.Code, b.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.CodeConflictError{Code: b.Code}
		}
		return fmt.Errorf("inserting branch: %w", err)
	}
	return nil
}

func (r *Repository) GetBranch(ctx context.Context, id string) (domain.Branch, error) {
	var b domain.Branch
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, code, created_at FROM branches WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.Code, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Branch{}, domain.ErrBranchNotFound
		}
		return domain.Branch{}, fmt.Errorf("scanning branch: %w", err)
	}
	b.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return b, nil
}

func (r *Repository) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, code, created_at FROM branches ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	defer rows.Close()

	var branches []domain.Branch
	for rows.Next() {
		var b domain.Branch
		var createdAt string
		if err := rows.Scan(&b.ID, &b.Name, &b.Code, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning branch row: %w", err)
		}
		b.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		branches = append(branches, b)
	}

	return branches, rows.Err()
}

func (r *Repository) CreateProduct(ctx context.Context, p domain.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, name, sku, home_branch, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.SKU, p.HomeBranch,
		p.CreatedAt.Format(timeFormat), p.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.SKUConflictError{SKU: p.SKU}
		}
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, sku, home_branch, created_at, updated_at FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.SKU, &p.HomeBranch, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("scanning product: %w", err)
	}
	p.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	p.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return p, nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, sku, home_branch, created_at, updated_at FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.HomeBranch, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		p.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		p.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
		products = append(products, p)
	}

	return products, rows.Err()
}
