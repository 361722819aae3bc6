package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmaros/branchstock/internal/domain"
)

func (r *Repository) CreateUser(ctx context.Context, u domain.User) error {
	caps, err := json.Marshal(u.Capabilities)
	if err != nil {
		return fmt.Errorf("encoding capabilities: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, capabilities, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, string(u.Role), string(caps),
		u.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, capabilities, created_at
		 FROM users WHERE id = ?`, id,
	))
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, capabilities, created_at
		 FROM users WHERE username = ?`, username,
	))
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var role, caps, createdAt string

	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &caps, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = domain.Role(role)
	if err := json.Unmarshal([]byte(caps), &u.Capabilities); err != nil {
		return domain.User{}, fmt.Errorf("decoding capabilities: %w", err)
	}
	u.CreatedAt, _ = time.Parse(timeFormat, createdAt)

	return u, nil
}
