// Package postgres implements the service repository interfaces against
// PostgreSQL using database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/luminaed/atrium/internal/domain"
	"github.com/luminaed/atrium/internal/service/reconcile"
)

// PersonRepo implements reconcile.PersonRepository against PostgreSQL.
type PersonRepo struct{ db *sql.DB }

// NewPersonRepo creates a Postgres-backed person repository.
func NewPersonRepo(db *sql.DB) *PersonRepo { return &PersonRepo{db: db} }

const personColumns = `id, first_name, last_name, COALESCE(email,''), date_of_birth,
	       role_profile, race_ethnicity, state_work,
	       COALESCE(district_id,0), COALESCE(school_id,0), content_area,
	       sy2024_25_participation_limits, sy2024_25_course, sy2024_25_grade_level`

func scanPerson(row *sql.Row) (*domain.Person, error) {
	p := &domain.Person{}
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.DateOfBirth,
		&p.RoleProfile, &p.RaceEthnicity, &p.StateWork,
		&p.DistrictID, &p.SchoolID, &p.ContentArea,
		&p.ParticipationLimits, &p.Course, &p.GradeLevel,
	)
	if err == sql.ErrNoRows {
		return nil, reconcile.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PersonRepo) GetByID(ctx context.Context, id int64) (*domain.Person, error) {
	p, err := scanPerson(r.db.QueryRowContext(ctx, `
		SELECT `+personColumns+`
		FROM people
		WHERE id = $1
	`, id))
	if err != nil && err != reconcile.ErrNotFound {
		return nil, fmt.Errorf("get person by id: %w", err)
	}
	return p, err
}

func (r *PersonRepo) GetByEmail(ctx context.Context, email string) (*domain.Person, error) {
	p, err := scanPerson(r.db.QueryRowContext(ctx, `
		SELECT `+personColumns+`
		FROM people
		WHERE email = $1
	`, email))
	if err != nil && err != reconcile.ErrNotFound {
		return nil, fmt.Errorf("get person by email: %w", err)
	}
	return p, err
}

func (r *PersonRepo) UpdateByID(ctx context.Context, p *domain.Person) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE people SET
			first_name = $2, last_name = $3, email = NULLIF($4,''),
			date_of_birth = $5, role_profile = $6, race_ethnicity = $7,
			state_work = $8, district_id = NULLIF($9,0), school_id = NULLIF($10,0),
			content_area = $11, sy2024_25_participation_limits = $12,
			sy2024_25_course = $13, sy2024_25_grade_level = $14,
			updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.FirstName, p.LastName, p.Email,
		p.DateOfBirth, p.RoleProfile, p.RaceEthnicity,
		p.StateWork, p.DistrictID, p.SchoolID,
		p.ContentArea, p.ParticipationLimits, p.Course, p.GradeLevel)
	if err != nil {
		return fmt.Errorf("update person by id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update person by id: %w", err)
	}
	if n == 0 {
		return reconcile.ErrNotFound
	}
	return nil
}

// UpdateByEmail rewrites the matched row's id as well, since an import may
// re-key a person already known by address. A row with no id (zero) keeps
// the existing key; clobbering it would break id-based matching for every
// later upload.
func (r *PersonRepo) UpdateByEmail(ctx context.Context, email string, p *domain.Person) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE people SET
			id = COALESCE(NULLIF($2, 0), id), first_name = $3, last_name = $4,
			date_of_birth = $5, role_profile = $6, race_ethnicity = $7,
			state_work = $8, district_id = NULLIF($9,0), school_id = NULLIF($10,0),
			content_area = $11, sy2024_25_participation_limits = $12,
			sy2024_25_course = $13, sy2024_25_grade_level = $14,
			updated_at = NOW()
		WHERE email = $1
	`, email, p.ID, p.FirstName, p.LastName,
		p.DateOfBirth, p.RoleProfile, p.RaceEthnicity,
		p.StateWork, p.DistrictID, p.SchoolID,
		p.ContentArea, p.ParticipationLimits, p.Course, p.GradeLevel)
	if err != nil {
		return fmt.Errorf("update person by email: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update person by email: %w", err)
	}
	if n == 0 {
		return reconcile.ErrNotFound
	}
	return nil
}

func (r *PersonRepo) Insert(ctx context.Context, p *domain.Person) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO people (
			id, first_name, last_name, email, date_of_birth,
			role_profile, race_ethnicity, state_work, district_id, school_id,
			content_area, sy2024_25_participation_limits,
			sy2024_25_course, sy2024_25_grade_level
		) VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, $7, $8, NULLIF($9,0), NULLIF($10,0), $11, $12, $13, $14)
	`, p.ID, p.FirstName, p.LastName, p.Email, p.DateOfBirth,
		p.RoleProfile, p.RaceEthnicity, p.StateWork, p.DistrictID, p.SchoolID,
		p.ContentArea, p.ParticipationLimits, p.Course, p.GradeLevel)
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}
