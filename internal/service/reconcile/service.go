package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/luminaed/atrium/internal/domain"
	"github.com/luminaed/atrium/internal/ingest"
	"github.com/luminaed/atrium/internal/pkg/logger"
)

// Service implements the upload reconciliation pipeline: for each canonical
// row, upsert the district, upsert the school, then match the person by id,
// then by email, then insert.
type Service struct {
	people PersonRepository
	orgs   OrgRepository
}

// NewService creates a reconciliation service backed by the given repositories.
func NewService(people PersonRepository, orgs OrgRepository) *Service {
	return &Service{people: people, orgs: orgs}
}

// Summary is the batch result returned to the caller. ErrorRows carries the
// complete failed rows for user-driven retry or CSV re-export.
type Summary struct {
	Received  int          `json:"received"`
	Added     int          `json:"added"`
	Updated   int          `json:"updated"`
	Errors    int          `json:"errors"`
	ErrorRows []ingest.Row `json:"-"`
}

type outcome int

const (
	outcomeAdded outcome = iota
	outcomeUpdated
)

// ReconcileRows processes rows strictly sequentially, in input order. A row
// failure is recorded and the batch continues; one bad row never aborts the
// rest.
func (s *Service) ReconcileRows(ctx context.Context, rows []ingest.Row) Summary {
	sum := Summary{Received: len(rows)}
	for _, row := range rows {
		out, err := s.reconcileRow(ctx, row)
		if err != nil {
			sum.Errors++
			sum.ErrorRows = append(sum.ErrorRows, row)
			logger.Warn("row reconciliation failed",
				"email", row.Email, "person_id", fmt.Sprintf("%d", row.ID), "err", err.Error())
			continue
		}
		if out == outcomeAdded {
			sum.Added++
		} else {
			sum.Updated++
		}
	}
	return sum
}

// reconcileRow upserts one row's foreign-key dependencies, then resolves the
// person through an ordered strategy chain: ById, ByEmail, Insert. The first
// strategy that matches wins. A lookup failure other than ErrNotFound stops
// the chain: falling through on a real error could insert a duplicate.
func (s *Service) reconcileRow(ctx context.Context, row ingest.Row) (outcome, error) {
	// The upsert is the de-dup mechanism; always attempt it, never pre-check.
	if row.DistrictID != 0 {
		if err := s.orgs.UpsertDistrict(ctx, domain.District{
			ID:   int64(row.DistrictID),
			Name: row.DistrictName,
		}); err != nil {
			return 0, fmt.Errorf("upsert district %d: %w", row.DistrictID, err)
		}
	}
	if row.SchoolID != 0 {
		if err := s.orgs.UpsertSchool(ctx, domain.School{
			ID:         int64(row.SchoolID),
			Name:       row.SchoolName,
			DistrictID: int64(row.DistrictID),
		}); err != nil {
			return 0, fmt.Errorf("upsert school %d: %w", row.SchoolID, err)
		}
	}

	person := personFromRow(row)

	for _, strategy := range []func(context.Context, *domain.Person) (bool, error){
		s.matchByID,
		s.matchByEmail,
	} {
		matched, err := strategy(ctx, person)
		if err != nil {
			return 0, err
		}
		if matched {
			return outcomeUpdated, nil
		}
	}

	if err := s.people.Insert(ctx, person); err != nil {
		return 0, fmt.Errorf("insert person: %w", err)
	}
	return outcomeAdded, nil
}

// matchByID updates the person matching the row's import id. Skipped when
// the row carries no id.
func (s *Service) matchByID(ctx context.Context, p *domain.Person) (bool, error) {
	if p.ID == 0 {
		return false, nil
	}
	_, err := s.people.GetByID(ctx, p.ID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup person by id %d: %w", p.ID, err)
	}
	if err := s.people.UpdateByID(ctx, p); err != nil {
		return false, fmt.Errorf("update person %d: %w", p.ID, err)
	}
	return true, nil
}

// matchByEmail updates the person matching the row's email, rewriting its id
// to the row's id. Skipped when the row carries no email.
func (s *Service) matchByEmail(ctx context.Context, p *domain.Person) (bool, error) {
	if p.Email == "" {
		return false, nil
	}
	_, err := s.people.GetByEmail(ctx, p.Email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup person by email: %w", err)
	}
	if err := s.people.UpdateByEmail(ctx, p.Email, p); err != nil {
		return false, fmt.Errorf("update person by email: %w", err)
	}
	return true, nil
}

func personFromRow(row ingest.Row) *domain.Person {
	return &domain.Person{
		ID:                  int64(row.ID),
		FirstName:           row.FirstName,
		LastName:            row.LastName,
		Email:               row.Email,
		DateOfBirth:         row.DateOfBirth,
		RoleProfile:         row.RoleProfile,
		RaceEthnicity:       row.RaceEthnicity,
		StateWork:           row.StateWork,
		DistrictID:          int64(row.DistrictID),
		SchoolID:            int64(row.SchoolID),
		ContentArea:         row.ContentArea,
		ParticipationLimits: row.ParticipationLimits,
		Course:              row.Course,
		GradeLevel:          row.GradeLevel,
	}
}
