package returns

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

const returnColumns = `id, client_id, preparer_id, tax_year, status, filed_at, notes, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, ret TaxReturn) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tax_returns (client_id, preparer_id, tax_year, status, notes)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		ret.ClientID, ret.PreparerID, ret.TaxYear, string(ret.Status), ret.Notes,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateYear
		}
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) Get(ctx context.Context, id int64) (*TaxReturn, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+returnColumns+` FROM tax_returns WHERE id = $1`, id)
	ret, err := scanReturn(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ret, nil
}

func (r *PGRepository) List(ctx context.Context, filter Filter) ([]TaxReturn, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.PreparerID != nil {
		args = append(args, *filter.PreparerID)
		where = append(where, fmt.Sprintf("preparer_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.TaxYear != nil {
		args = append(args, *filter.TaxYear)
		where = append(where, fmt.Sprintf("tax_year = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM tax_returns WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tax_returns WHERE %s ORDER BY tax_year DESC, updated_at DESC LIMIT $%d OFFSET $%d`, returnColumns, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []TaxReturn
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *ret)
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

	tag, err := r.pool.Exec(ctx, `UPDATE tax_returns SET `+strings.Join(set, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanReturn(row pgx.Row) (*TaxReturn, error) {
	var (
		ret    TaxReturn
		status string
	)
	if err := row.Scan(&ret.ID, &ret.ClientID, &ret.PreparerID, &ret.TaxYear, &status, &ret.FiledAt, &ret.Notes, &ret.CreatedAt, &ret.UpdatedAt); err != nil {
		return nil, err
	}
	ret.Status = Status(status)
	return &ret, nil
}

var _ Repository = (*PGRepository)(nil)
