package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dentix/api/internal/models"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

const appointmentColumns = `id, user_id, child_name, child_age, parent_name, phone, service, preferred_date, notes, is_confirmed, created_at`

func (r *AppointmentRepository) Create(ctx context.Context, appt models.Appointment) error {
	const query = `
		INSERT INTO appointments (
			id, user_id, child_name, child_age, parent_name, phone, service, preferred_date, notes, is_confirmed, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		appt.ID,
		appt.UserID,
		appt.ChildName,
		appt.ChildAge,
		appt.ParentName,
		appt.Phone,
		appt.Service,
		appt.PreferredDate,
		appt.Notes,
		appt.IsConfirmed,
	)
	return err
}

func (r *AppointmentRepository) List(ctx context.Context) ([]models.Appointment, error) {
	const query = `
		SELECT ` + appointmentColumns + `
		FROM appointments
		ORDER BY preferred_date, created_at
	`
	return r.queryMany(ctx, query)
}

func (r *AppointmentRepository) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	const query = `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.queryMany(ctx, query, userID)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (models.Appointment, error) {
	const query = `
		SELECT ` + appointmentColumns + `
		FROM appointments WHERE id = $1
	`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Appointment{}, ErrAppointmentNotFound
		}
		return models.Appointment{}, err
	}
	return appt, nil
}

func (r *AppointmentRepository) Confirm(ctx context.Context, id string) error {
	const query = `UPDATE appointments SET is_confirmed = TRUE WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM appointments WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) queryMany(ctx context.Context, query string, args ...any) ([]models.Appointment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []models.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

func scanAppointment(row pgx.Row) (models.Appointment, error) {
	var appt models.Appointment
	err := row.Scan(
		&appt.ID,
		&appt.UserID,
		&appt.ChildName,
		&appt.ChildAge,
		&appt.ParentName,
		&appt.Phone,
		&appt.Service,
		&appt.PreferredDate,
		&appt.Notes,
		&appt.IsConfirmed,
		&appt.CreatedAt,
	)
	return appt, err
}
