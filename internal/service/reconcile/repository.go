package reconcile

import (
	"context"

	"github.com/luminaed/atrium/internal/domain"
)

// PersonRepository defines the data access contract for person records.
// Implementations must be safe for concurrent use.
type PersonRepository interface {
	// GetByID returns the person with the given import id.
	// Returns ErrNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*domain.Person, error)

	// GetByEmail returns the person with the given email.
	// Returns ErrNotFound when no row matches.
	GetByEmail(ctx context.Context, email string) (*domain.Person, error)

	// UpdateByID overwrites all mutable fields of the row matching p.ID.
	UpdateByID(ctx context.Context, p *domain.Person) error

	// UpdateByEmail overwrites all mutable fields INCLUDING the id of the
	// row matching email. The import id is allowed to change when a person
	// is re-keyed upstream.
	UpdateByEmail(ctx context.Context, email string, p *domain.Person) error

	// Insert creates a new person row with all fields, including the
	// import-provided id.
	Insert(ctx context.Context, p *domain.Person) error
}

// OrgRepository upserts the foreign-key dependencies of a person row.
type OrgRepository interface {
	// UpsertDistrict inserts or updates a district, conflict target id.
	UpsertDistrict(ctx context.Context, d domain.District) error

	// UpsertSchool inserts or updates a school, conflict target id.
	UpsertSchool(ctx context.Context, s domain.School) error
}
