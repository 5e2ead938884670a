package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/shared"
)

// Repository provides PostgreSQL backed persistence for portal accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, role, custom_permissions, assigned_preparer_id, is_active, created_at, updated_at`

// ListUsers returns all users ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetUser fetches one user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// UpdateRole changes a user's role.
func (r *Repository) UpdateRole(ctx context.Context, id int64, role permissions.Role) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateCustomPermissions replaces the stored override map.
func (r *Repository) UpdateCustomPermissions(ctx context.Context, id int64, overrides permissions.Set) error {
	payload, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("users: marshal overrides: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE users SET custom_permissions = $2, updated_at = NOW() WHERE id = $1`, id, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListPendingLeads returns active lead accounts still waiting for approval.
func (r *Repository) ListPendingLeads(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role = 'lead' AND is_active ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// NotificationEmailFor resolves where upload notifications for a client
// should go: the assigned preparer when one exists, otherwise the client.
func (r *Repository) NotificationEmailFor(ctx context.Context, ownerUserID int64) (string, error) {
	var email string
	err := r.pool.QueryRow(ctx,
		`SELECT coalesce(p.email, u.email)
		 FROM users u
		 LEFT JOIN users p ON p.id = u.assigned_preparer_id
		 WHERE u.id = $1`,
		ownerUserID,
	).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return email, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user    User
		role    string
		rawPerm []byte
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &role, &rawPerm, &user.AssignedPreparerID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return User{}, err
	}
	// The stored role string may predate the current role enumeration;
	// resolution handles the fallback, storage stays verbatim.
	user.Role = permissions.Role(role)
	if len(rawPerm) > 0 {
		var stored map[string]any
		if err := json.Unmarshal(rawPerm, &stored); err != nil {
			return User{}, fmt.Errorf("users: decode custom permissions: %w", err)
		}
		user.CustomPermissions = permissions.ParseOverrides(stored)
	}
	return user, nil
}
