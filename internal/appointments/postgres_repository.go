package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db rowQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db rowQuerier) *PostgresRepository {
	if db == nil {
		panic("appointments: querier required")
	}
	return &PostgresRepository{db: db}
}

const appointmentColumns = `id, name, appt_date, appt_time, contact, email, phone, service, notes, source, scheduled_for, created_at`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := r.db.Exec(ctx, query,
		appt.ID,
		appt.Name,
		appt.Date,
		appt.Time,
		appt.Contact,
		appt.Email,
		appt.Phone,
		appt.Service,
		appt.Notes,
		appt.Source,
		appt.ScheduledFor,
		appt.CreatedAt,
	); err != nil {
		return fmt.Errorf("appointments: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches one appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return appt, nil
}

// List returns appointments ordered by scheduled time.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	filter = filter.normalized()
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE ($1 = '' OR appt_date >= $1)
		  AND ($2 = '' OR appt_date <= $2)
		ORDER BY scheduled_for, created_at
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, filter.From, filter.To, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	return out, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.Name,
		&appt.Date,
		&appt.Time,
		&appt.Contact,
		&appt.Email,
		&appt.Phone,
		&appt.Service,
		&appt.Notes,
		&appt.Source,
		&appt.ScheduledFor,
		&appt.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}

var _ Repository = (*PostgresRepository)(nil)
