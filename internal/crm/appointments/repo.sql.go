package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

const apptColumns = `id, contact_id, preparer_id, kind, status, scheduled_at, duration_minutes, location, notes, created_by, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, appt Appointment) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO appointments (contact_id, preparer_id, kind, status, scheduled_at, duration_minutes, location, notes, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		appt.ContactID, appt.PreparerID, string(appt.Kind), string(appt.Status), appt.ScheduledAt, appt.DurationMinutes, appt.Location, appt.Notes, appt.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) Get(ctx context.Context, id int64) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+apptColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return appt, nil
}

func (r *PGRepository) List(ctx context.Context, filter Filter) ([]Appointment, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if filter.ContactID != nil {
		args = append(args, *filter.ContactID)
		where = append(where, fmt.Sprintf("contact_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.PreparerID != nil {
		args = append(args, *filter.PreparerID)
		where = append(where, fmt.Sprintf("preparer_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("scheduled_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("scheduled_at < $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM appointments WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE %s ORDER BY scheduled_at LIMIT $%d OFFSET $%d`, apptColumns, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *appt)
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

	tag, err := r.pool.Exec(ctx, `UPDATE appointments SET `+strings.Join(set, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountOverlapping counts active appointments on the preparer's calendar
// that intersect [start, end). Cancelled and no-show slots do not block.
func (r *PGRepository) CountOverlapping(ctx context.Context, preparerID int64, start, end time.Time, excludeID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM appointments
		 WHERE preparer_id = $1
		   AND id <> $2
		   AND status IN ('scheduled', 'confirmed')
		   AND scheduled_at < $4
		   AND scheduled_at + make_interval(mins => duration_minutes) > $3`,
		preparerID, excludeID, start, end,
	).Scan(&count)
	return count, err
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		appt   Appointment
		kind   string
		status string
	)
	if err := row.Scan(&appt.ID, &appt.ContactID, &appt.PreparerID, &kind, &status, &appt.ScheduledAt, &appt.DurationMinutes, &appt.Location, &appt.Notes, &appt.CreatedBy, &appt.CreatedAt, &appt.UpdatedAt); err != nil {
		return nil, err
	}
	appt.Kind = Kind(kind)
	appt.Status = Status(status)
	return &appt, nil
}

var _ Repository = (*PGRepository)(nil)
