package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmaros/branchstock/internal/domain"
)

// Reserve decrements stock at branch with a single conditional update, so a
// concurrent reservation can never push the quantity below zero. Failure to
// match the condition is reported as insufficient stock.
func (r *Repository) Reserve(ctx context.Context, productID, branchID string, quantity int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE stock_levels SET quantity = quantity - ?
		 WHERE product_id = ? AND branch_id = ? AND quantity >= ?`,
		quantity, productID, branchID, quantity,
	)
	if err != nil {
		return fmt.Errorf("reserving stock: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		available, err := r.Quantity(ctx, productID, branchID)
		if err != nil {
			return err
		}
		return &domain.InsufficientStockError{
			ProductID: productID,
			BranchID:  branchID,
			Available: available,
			Requested: quantity,
		}
	}

	return nil
}

// Deposit adds quantity at branch, creating the ledger row on first deposit.
func (r *Repository) Deposit(ctx context.Context, productID, branchID string, quantity int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stock_levels (product_id, branch_id, quantity) VALUES (?, ?, ?)
		 ON CONFLICT (product_id, branch_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
		productID, branchID, quantity,
	)
	if err != nil {
		return fmt.Errorf("depositing stock: %w", err)
	}
	return nil
}

// Quantity reads current stock at branch. A missing ledger row reads as 0.
func (r *Repository) Quantity(ctx context.Context, productID, branchID string) (int, error) {
	var quantity int
	err := r.db.QueryRowContext(ctx,
		`SELECT quantity FROM stock_levels WHERE product_id = ? AND branch_id = ?`,
		productID, branchID,
	).Scan(&quantity)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading stock: %w", err)
	}
	return quantity, nil
}

// Levels returns every ledger row for a product across branches.
func (r *Repository) Levels(ctx context.Context, productID string) ([]domain.StockLevel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, branch_id, quantity FROM stock_levels
		 WHERE product_id = ? ORDER BY branch_id`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing stock levels: %w", err)
	}
	defer rows.Close()

	var levels []domain.StockLevel
	for rows.Next() {
		var l domain.StockLevel
		if err := rows.Scan(&l.ProductID, &l.BranchID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scanning stock level: %w", err)
		}
		levels = append(levels, l)
	}

	return levels, rows.Err()
}
