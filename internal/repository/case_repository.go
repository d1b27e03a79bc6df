package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dentix/api/internal/models"
)

var ErrCaseNotFound = errors.New("dental case not found")

type CaseRepository struct {
	pool *pgxpool.Pool
}

func NewCaseRepository(pool *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{pool: pool}
}

const caseColumns = `id, case_name, description, image_url, created_at, updated_at`

func (r *CaseRepository) Create(ctx context.Context, dentalCase models.DentalCase) error {
	const query = `
		INSERT INTO dental_cases (
			id, case_name, description, image_url, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		dentalCase.ID,
		dentalCase.CaseName,
		dentalCase.Description,
		dentalCase.ImageURL,
	)
	return err
}

func (r *CaseRepository) List(ctx context.Context) ([]models.DentalCase, error) {
	const query = `
		SELECT ` + caseColumns + `
		FROM dental_cases
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []models.DentalCase
	for rows.Next() {
		dentalCase, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, dentalCase)
	}
	return cases, rows.Err()
}

func (r *CaseRepository) GetByID(ctx context.Context, id string) (models.DentalCase, error) {
	const query = `
		SELECT ` + caseColumns + `
		FROM dental_cases WHERE id = $1
	`

	dentalCase, err := scanCase(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DentalCase{}, ErrCaseNotFound
		}
		return models.DentalCase{}, err
	}
	return dentalCase, nil
}

func (r *CaseRepository) Update(ctx context.Context, dentalCase models.DentalCase) error {
	const query = `
		UPDATE dental_cases
		SET case_name = $2, description = $3, image_url = $4, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		dentalCase.ID,
		dentalCase.CaseName,
		dentalCase.Description,
		dentalCase.ImageURL,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCaseNotFound
	}
	return nil
}

func (r *CaseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM dental_cases WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCaseNotFound
	}
	return nil
}

func scanCase(row pgx.Row) (models.DentalCase, error) {
	var dentalCase models.DentalCase
	err := row.Scan(
		&dentalCase.ID,
		&dentalCase.CaseName,
		&dentalCase.Description,
		&dentalCase.ImageURL,
		&dentalCase.CreatedAt,
		&dentalCase.UpdatedAt,
	)
	return dentalCase, err
}
