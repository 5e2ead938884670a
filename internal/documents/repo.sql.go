package documents

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

const documentColumns = `id, owner_user_id, name, kind, tax_year, size_bytes, storage_key, uploaded_by, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, doc Document) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO documents (owner_user_id, name, kind, tax_year, size_bytes, storage_key, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		doc.OwnerUserID, doc.Name, string(doc.Kind), doc.TaxYear, doc.SizeBytes, doc.StorageKey, doc.UploadedBy,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) Get(ctx context.Context, id int64) (*Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (r *PGRepository) List(ctx context.Context, filter Filter) ([]Document, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		where = append(where, fmt.Sprintf("d.owner_user_id = $%d", len(args)))
	}
	if filter.PreparerID != nil {
		args = append(args, *filter.PreparerID)
		where = append(where, fmt.Sprintf("d.owner_user_id IN (SELECT id FROM users WHERE assigned_preparer_id = $%d)", len(args)))
	}
	if filter.Kind != nil {
		args = append(args, string(*filter.Kind))
		where = append(where, fmt.Sprintf("d.kind = $%d", len(args)))
	}
	if filter.TaxYear != nil {
		args = append(args, *filter.TaxYear)
		where = append(where, fmt.Sprintf("d.tax_year = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM documents d WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	cols := "d." + strings.ReplaceAll(documentColumns, ", ", ", d.")
	query := fmt.Sprintf(`SELECT %s FROM documents d WHERE %s ORDER BY d.created_at DESC LIMIT $%d OFFSET $%d`, cols, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *doc)
	}
	return list, total, rows.Err()
}

func (r *PGRepository) Rename(ctx context.Context, id int64, name string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE documents SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) OwnerAssignedTo(ctx context.Context, ownerUserID, preparerID int64) (bool, error) {
	var assigned bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND assigned_preparer_id = $2)`,
		ownerUserID, preparerID,
	).Scan(&assigned)
	return assigned, err
}

func scanDocument(row pgx.Row) (*Document, error) {
	var (
		doc  Document
		kind string
	)
	if err := row.Scan(&doc.ID, &doc.OwnerUserID, &doc.Name, &kind, &doc.TaxYear, &doc.SizeBytes, &doc.StorageKey, &doc.UploadedBy, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	doc.Kind = Kind(kind)
	return &doc, nil
}

var _ Repository = (*PGRepository)(nil)
