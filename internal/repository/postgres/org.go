package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/luminaed/atrium/internal/domain"
)

// OrgRepo implements reconcile.OrgRepository: upserts for the district and
// school affiliation tables, keyed on their import-provided ids.
type OrgRepo struct{ db *sql.DB }

// NewOrgRepo creates a Postgres-backed district/school repository.
func NewOrgRepo(db *sql.DB) *OrgRepo { return &OrgRepo{db: db} }

func (r *OrgRepo) UpsertDistrict(ctx context.Context, d domain.District) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO districts (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
	`, d.ID, d.Name)
	if err != nil {
		return fmt.Errorf("upsert district: %w", err)
	}
	return nil
}

func (r *OrgRepo) UpsertSchool(ctx context.Context, s domain.School) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schools (id, name, district_id)
		VALUES ($1, $2, NULLIF($3,0))
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			district_id = EXCLUDED.district_id,
			updated_at = NOW()
	`, s.ID, s.Name, s.DistrictID)
	if err != nil {
		return fmt.Errorf("upsert school: %w", err)
	}
	return nil
}
