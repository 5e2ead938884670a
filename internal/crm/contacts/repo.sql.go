package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const contactColumns = `id, first_name, last_name, email, phone, status, assigned_preparer_id, notes, created_by, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, contact Contact) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO contacts (first_name, last_name, email, phone, status, assigned_preparer_id, notes, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone, string(contact.Status), contact.AssignedPreparerID, contact.Notes, contact.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateEmail
		}
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) Get(ctx context.Context, id int64) (*Contact, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contact, nil
}

func (r *PGRepository) List(ctx context.Context, filter Filter) ([]Contact, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != nil && *filter.Search != "" {
		args = append(args, "%"+strings.ToLower(*filter.Search)+"%")
		where = append(where, fmt.Sprintf("(lower(first_name) LIKE $%d OR lower(last_name) LIKE $%d OR lower(coalesce(email, '')) LIKE $%d)", len(args), len(args), len(args)))
	}
	if filter.PreparerID != nil {
		args = append(args, *filter.PreparerID)
		where = append(where, fmt.Sprintf("assigned_preparer_id = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM contacts WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM contacts WHERE %s ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`, contactColumns, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *contact)
	}
	return list, total, rows.Err()
}

func (r *PGRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	set := make([]string, 0, len(updates)+1)
	args := []any{id}
	for column, value := range updates {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	set = append(set, "updated_at = NOW()")

	tag, err := r.pool.Exec(ctx, `UPDATE contacts SET `+strings.Join(set, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanContact(row pgx.Row) (*Contact, error) {
	var (
		contact Contact
		status  string
	)
	if err := row.Scan(&contact.ID, &contact.FirstName, &contact.LastName, &contact.Email, &contact.Phone, &status, &contact.AssignedPreparerID, &contact.Notes, &contact.CreatedBy, &contact.CreatedAt, &contact.UpdatedAt); err != nil {
		return nil, err
	}
	contact.Status = Status(status)
	return &contact, nil
}

var _ Repository = (*PGRepository)(nil)
