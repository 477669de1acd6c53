package domain

// Person is an educator record imported from partner spreadsheets. The id is
// import-provided (external numeric key), not generated here. A Person is
// uniquely identified by id OR by email; reconciliation must never create
// duplicate rows across either key.
type Person struct {
	ID                  int64  `json:"id" db:"id"`
	FirstName           string `json:"first_name" db:"first_name"`
	LastName            string `json:"last_name" db:"last_name"`
	Email               string `json:"email" db:"email"` // empty = NULL; secondary match key
	DateOfBirth         string `json:"date_of_birth" db:"date_of_birth"`
	RoleProfile         string `json:"role_profile" db:"role_profile"`
	RaceEthnicity       string `json:"race_ethnicity" db:"race_ethnicity"`
	StateWork           string `json:"state_work" db:"state_work"`
	DistrictID          int64  `json:"district_id" db:"district_id"`
	SchoolID            int64  `json:"school_id" db:"school_id"`
	ContentArea         string `json:"content_area" db:"content_area"`
	ParticipationLimits string `json:"sy2024_25_participation_limits" db:"sy2024_25_participation_limits"`
	Course              string `json:"sy2024_25_course" db:"sy2024_25_course"`
	GradeLevel          string `json:"sy2024_25_grade_level" db:"sy2024_25_grade_level"`
}

// School belongs to a District. Upserted by id during reconciliation.
type School struct {
	ID         int64  `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	DistrictID int64  `json:"district_id" db:"district_id"`
}

// District is the top of the affiliation hierarchy. Upserted by id.
type District struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
