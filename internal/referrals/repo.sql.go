package referrals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
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

const linkColumns = `id, owner_id, code, campaign, target_url, is_active, created_at`
const commissionColumns = `id, owner_id, link_id, contact_id, amount_cents, status, memo, created_at, updated_at`

func (r *PGRepository) CreateLink(ctx context.Context, link Link) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO referral_links (owner_id, code, campaign, target_url, is_active)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		link.OwnerID, link.Code, link.Campaign, link.TargetURL, link.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) GetLinkByCode(ctx context.Context, code string) (*Link, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+linkColumns+` FROM referral_links WHERE code = $1`, code)
	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return link, nil
}

func (r *PGRepository) ListLinks(ctx context.Context, ownerID int64) ([]Link, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+linkColumns+` FROM referral_links WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *link)
	}
	return list, rows.Err()
}

func (r *PGRepository) DeactivateLink(ctx context.Context, ownerID, linkID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE referral_links SET is_active = FALSE WHERE id = $1 AND owner_id = $2`,
		linkID, ownerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) CreateCommission(ctx context.Context, c Commission) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO commissions (owner_id, link_id, contact_id, amount_cents, status, memo)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		c.OwnerID, c.LinkID, c.ContactID, c.AmountCents, string(c.Status), c.Memo,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) GetCommission(ctx context.Context, id int64) (*Commission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+commissionColumns+` FROM commissions WHERE id = $1`, id)
	c, err := scanCommission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *PGRepository) ListCommissions(ctx context.Context, filter CommissionFilter) ([]Commission, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM commissions WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM commissions WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, commissionColumns, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Commission
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *c)
	}
	return list, total, rows.Err()
}

func (r *PGRepository) UpdateCommissionStatus(ctx context.Context, id int64, status CommissionStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE commissions SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) SumCommissions(ctx context.Context, ownerID int64, status CommissionStatus) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx,
		`SELECT coalesce(sum(amount_cents), 0) FROM commissions WHERE owner_id = $1 AND status = $2`,
		ownerID, string(status),
	).Scan(&sum)
	return sum, err
}

func (r *PGRepository) ListOwners(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT owner_id FROM referral_links UNION SELECT DISTINCT owner_id FROM commissions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

func (r *PGRepository) CountCommissions(ctx context.Context, ownerID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM commissions WHERE owner_id = $1`, ownerID).Scan(&count)
	return count, err
}

func scanLink(row pgx.Row) (*Link, error) {
	var link Link
	if err := row.Scan(&link.ID, &link.OwnerID, &link.Code, &link.Campaign, &link.TargetURL, &link.IsActive, &link.CreatedAt); err != nil {
		return nil, err
	}
	return &link, nil
}

func scanCommission(row pgx.Row) (*Commission, error) {
	var (
		c      Commission
		status string
	)
	if err := row.Scan(&c.ID, &c.OwnerID, &c.LinkID, &c.ContactID, &c.AmountCents, &status, &c.Memo, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = CommissionStatus(status)
	return &c, nil
}

var _ Repository = (*PGRepository)(nil)
