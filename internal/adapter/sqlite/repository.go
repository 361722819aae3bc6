package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/dmaros/branchstock/internal/domain"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Repository implements the persistence ports (transfers, stock ledger,
// catalog, users) on a single SQLite database.
type Repository struct {
	db *sql.DB
}

// Compile-time checks against the domain ports.
var (
	_ domain.TransferRepository = (*Repository)(nil)
	_ domain.StockLedger        = (*Repository)(nil)
	_ domain.CatalogRepository  = (*Repository)(nil)
	_ domain.UserRepository     = (*Repository)(nil)
)

// New opens a SQLite database, runs migrations, and returns a ready repository.
func New(dataSourceName string) (*Repository, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys (off by default in SQLite).
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and returns a ready repository.
// Use this when the *sql.DB has been pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Repository, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (r *Repository) DB() *sql.DB {
	return r.db
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

const timeFormat = "2006-01-02T15:04:05Z"

const transferColumns = `t.id, t.product_id, t.from_branch, t.to_branch, t.quantity,
	t.reason, t.notes, t.status, t.created_by, t.created_at, t.completed_at, t.completed_by,
	p.name AS product_name, fb.name AS from_branch_name, tb.name AS to_branch_name,
	COALESCE(u.username, '') AS created_by_name`

const transferJoins = `FROM transfers t
	JOIN products p ON p.id = t.product_id
	JOIN branches fb ON fb.id = t.from_branch
	JOIN branches tb ON tb.id = t.to_branch
	LEFT JOIN users u ON u.id = t.created_by`

func (r *Repository) Create(ctx context.Context, t domain.Transfer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transfers (id, product_id, from_branch, to_branch, quantity, reason, notes, status, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProductID, t.FromBranch, t.ToBranch, t.Quantity,
		string(t.Reason), t.Notes, string(t.Status), t.CreatedBy,
		t.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting transfer: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (domain.Transfer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` `+transferJoins+` WHERE t.id = ?`, id)
	return scanTransfer(row)
}

func (r *Repository) List(ctx context.Context, filter domain.TransferFilter) ([]domain.Transfer, int, error) {
	where := ` WHERE 1=1`
	var args []any

	if filter.ProductID != nil {
		where += ` AND t.product_id = ?`
		args = append(args, *filter.ProductID)
	}
	if filter.Branch != nil {
		where += ` AND (t.from_branch = ? OR t.to_branch = ?)`
		args = append(args, *filter.Branch, *filter.Branch)
	}
	if filter.Status != nil {
		where += ` AND t.status = ?`
		args = append(args, string(*filter.Status))
	}
	if filter.Reason != nil {
		where += ` AND t.reason = ?`
		args = append(args, string(*filter.Reason))
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transfers t`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting transfers: %w", err)
	}

	query := `SELECT ` + transferColumns + ` ` + transferJoins + where +
		` ORDER BY t.created_at DESC, t.id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing transfers: %w", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, err
		}
		transfers = append(transfers, t)
	}

	return transfers, total, rows.Err()
}

// Update persists a lifecycle transition. The write is conditional on the
// stored row still being pending, so two concurrent transitions of the same
// transfer cannot both succeed.
func (r *Repository) Update(ctx context.Context, t domain.Transfer) error {
	var completedAt, completedBy any
	if t.CompletedAt != nil {
		completedAt = t.CompletedAt.Format(timeFormat)
	}
	if t.CompletedBy != nil {
		completedBy = *t.CompletedBy
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE transfers SET status = ?, completed_at = ?, completed_by = ?
		 WHERE id = ? AND status = ?`,
		string(t.Status), completedAt, completedBy, t.ID, string(domain.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("updating transfer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		var current string
		err := r.db.QueryRowContext(ctx,
			`SELECT status FROM transfers WHERE id = ?`, t.ID,
		).Scan(&current)
		if err == sql.ErrNoRows {
			return domain.ErrTransferNotFound
		}
		if err != nil {
			return fmt.Errorf("reading transfer status: %w", err)
		}
		return &domain.TransitionError{
			Event:   eventFor(t.Status),
			Current: domain.Status(current),
		}
	}

	return nil
}

// eventFor maps a target status back to the event that produces it.
func eventFor(target domain.Status) domain.Event {
	for _, tr := range domain.Transitions {
		if tr.Dst == target {
			return tr.Event
		}
	}
	return ""
}

func (r *Repository) Stats(ctx context.Context, filter domain.StatsFilter) (domain.TransferStats, error) {
	where := ` WHERE 1=1`
	var args []any
	if filter.Branch != nil {
		where += ` AND (from_branch = ? OR to_branch = ?)`
		args = append(args, *filter.Branch, *filter.Branch)
	}

	stats := domain.TransferStats{
		ByStatus: make(map[domain.Status]domain.StatsBucket),
		ByReason: make(map[domain.Reason]domain.StatsBucket),
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(quantity), 0) FROM transfers`+where+` GROUP BY status`,
		args...)
	if err != nil {
		return domain.TransferStats{}, fmt.Errorf("aggregating by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var bucket domain.StatsBucket
		if err := rows.Scan(&status, &bucket.Count, &bucket.Quantity); err != nil {
			return domain.TransferStats{}, fmt.Errorf("scanning status bucket: %w", err)
		}
		stats.ByStatus[domain.Status(status)] = bucket
		stats.Total += bucket.Count
		stats.TotalQuantity += bucket.Quantity
	}
	if err := rows.Err(); err != nil {
		return domain.TransferStats{}, err
	}

	reasonRows, err := r.db.QueryContext(ctx,
		`SELECT reason, COUNT(*), COALESCE(SUM(quantity), 0) FROM transfers`+where+` GROUP BY reason`,
		args...)
	if err != nil {
		return domain.TransferStats{}, fmt.Errorf("aggregating by reason: %w", err)
	}
	defer reasonRows.Close()

	for reasonRows.Next() {
		var reason string
		var bucket domain.StatsBucket
		if err := reasonRows.Scan(&reason, &bucket.Count, &bucket.Quantity); err != nil {
			return domain.TransferStats{}, fmt.Errorf("scanning reason bucket: %w", err)
		}
		stats.ByReason[domain.Reason(reason)] = bucket
	}

	return stats, reasonRows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (domain.Transfer, error) {
	var t domain.Transfer
	var reason, status, createdAt string
	var completedAt, completedBy sql.NullString

	err := row.Scan(&t.ID, &t.ProductID, &t.FromBranch, &t.ToBranch, &t.Quantity,
		&reason, &t.Notes, &status, &t.CreatedBy, &createdAt, &completedAt, &completedBy,
		&t.ProductName, &t.FromBranchName, &t.ToBranchName, &t.CreatedByName)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Transfer{}, domain.ErrTransferNotFound
		}
		return domain.Transfer{}, fmt.Errorf("scanning transfer: %w", err)
	}

	t.Reason = domain.Reason(reason)
	t.Status = domain.Status(status)
	t.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	if completedAt.Valid {
		parsed, _ := time.Parse(timeFormat, completedAt.String)
		t.CompletedAt = &parsed
	}
	if completedBy.Valid {
		t.CompletedBy = &completedBy.String
	}

	return t, nil
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
