package postgres

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/luminaed/atrium/internal/domain"
	"github.com/luminaed/atrium/internal/service/reconcile"
)

var personCols = []string{
	"id", "first_name", "last_name", "email", "date_of_birth",
	"role_profile", "race_ethnicity", "state_work",
	"district_id", "school_id", "content_area",
	"sy2024_25_participation_limits", "sy2024_25_course", "sy2024_25_grade_level",
}

func personRow(id int64, email string) *sqlmock.Rows {
	return sqlmock.NewRows(personCols).AddRow(
		id, "Ada", "Lovelace", email, "1990-01-01",
		"Teacher", "", "OH", 7, 12, "Math", "", "", "")
}

func TestPersonGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM people").
		WithArgs(int64(5)).
		WillReturnRows(personRow(5, "ada@school.edu"))

	p, err := NewPersonRepo(db).GetByID(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != 5 || p.Email != "ada@school.edu" || p.DistrictID != 7 {
		t.Errorf("person: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPersonGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM people").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(personCols))

	if _, err := NewPersonRepo(db).GetByID(context.Background(), 5); !errors.Is(err, reconcile.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestPersonUpdateByEmailRewritesID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE people SET").
		WithArgs("ada@school.edu", int64(99), "Ada", "Lovelace",
			"1990-01-01", "Teacher", "", "OH", int64(7), int64(12),
			"Math", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := &domain.Person{
		ID: 99, FirstName: "Ada", LastName: "Lovelace", Email: "ada@school.edu",
		DateOfBirth: "1990-01-01", RoleProfile: "Teacher", StateWork: "OH",
		DistrictID: 7, SchoolID: 12, ContentArea: "Math",
	}
	if err := NewPersonRepo(db).UpdateByEmail(context.Background(), "ada@school.edu", p); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPersonUpdateByEmailKeepsIDWhenRowHasNone(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// The statement must guard the key: a zero id falls back to the
	// existing value instead of overwriting the primary key.
	mock.ExpectExec(`UPDATE people SET\s+id = COALESCE\(NULLIF\(\$2, 0\), id\)`).
		WithArgs("ada@school.edu", int64(0), "Ada", "Lovelace",
			"", "", "", "", int64(0), int64(0), "", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := &domain.Person{FirstName: "Ada", LastName: "Lovelace", Email: "ada@school.edu"}
	if err := NewPersonRepo(db).UpdateByEmail(context.Background(), "ada@school.edu", p); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPersonUpdateByIDMissReportsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE people SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPersonRepo(db).UpdateByID(context.Background(), &domain.Person{ID: 5})
	if !errors.Is(err, reconcile.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestOrgUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO districts").
		WithArgs(int64(7), "Franklin County").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO schools").
		WithArgs(int64(12), "Franklin High", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewOrgRepo(db)
	ctx := context.Background()
	if err := repo.UpsertDistrict(ctx, domain.District{ID: 7, Name: "Franklin County"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertSchool(ctx, domain.School{ID: 12, Name: "Franklin High", DistrictID: 7}); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
