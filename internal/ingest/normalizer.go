package ingest

import (
	"bytes"
	"strconv"
	"strings"
)

// NumericID decodes a JSON number or a numeric string. Spreadsheet exports
// and the frontend are inconsistent about quoting ids, so both forms are
// accepted. Zero means absent.
type NumericID int64

func (n *NumericID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(bytes.TrimSpace(b), `"`)))
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Non-numeric ids are treated as absent rather than failing the
		// whole payload; the row falls back to email matching.
		*n = 0
		return nil
	}
	*n = NumericID(v)
	return nil
}

// Row is the canonical record shape of one imported spreadsheet row after
// header-alias resolution.
type Row struct {
	ID                  NumericID `json:"id"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	Email               string    `json:"email"`
	DateOfBirth         string    `json:"date_of_birth"`
	RoleProfile         string    `json:"role_profile"`
	RaceEthnicity       string    `json:"race_ethnicity"`
	StateWork           string    `json:"state_work"`
	DistrictName        string    `json:"district_name"`
	DistrictID          NumericID `json:"district_id"`
	SchoolName          string    `json:"school_name"`
	SchoolID            NumericID `json:"school_id"`
	ParticipationLimits string    `json:"sy2024_25_participation_limits"`
	ContentArea         string    `json:"content_area"`
	Course              string    `json:"sy2024_25_course"`
	GradeLevel          string    `json:"sy2024_25_grade_level"`
}

// FillFirstNameFromEmail defaults an empty first name to the local part of
// the email address. No email, no default.
func (r *Row) FillFirstNameFromEmail() {
	if r.FirstName != "" || r.Email == "" {
		return
	}
	if at := strings.Index(r.Email, "@"); at > 0 {
		r.FirstName = r.Email[:at]
	}
}

// NormalizeRow converts one raw cell sequence into a canonical Row using the
// resolved column mapping. Cells beyond the mapping are ignored.
func NormalizeRow(m *ColumnMapping, cells []string) Row {
	var row Row
	for idx, field := range m.FieldIdx {
		if idx >= len(cells) {
			continue
		}
		val := strings.TrimSpace(cells[idx])
		switch field {
		case FieldID:
			row.ID = parseID(val)
		case FieldFirstName:
			row.FirstName = val
		case FieldLastName:
			row.LastName = val
		case FieldEmail:
			row.Email = val
		case FieldDateOfBirth:
			row.DateOfBirth = val
		case FieldRoleProfile:
			row.RoleProfile = val
		case FieldRaceEthnicity:
			row.RaceEthnicity = val
		case FieldStateWork:
			row.StateWork = val
		case FieldDistrictName:
			row.DistrictName = val
		case FieldDistrictID:
			row.DistrictID = parseID(val)
		case FieldSchoolName:
			row.SchoolName = val
		case FieldSchoolID:
			row.SchoolID = parseID(val)
		case FieldParticipationLimits:
			row.ParticipationLimits = val
		case FieldContentArea:
			row.ContentArea = val
		case FieldCourse:
			row.Course = val
		case FieldGradeLevel:
			row.GradeLevel = val
		}
	}
	row.FillFirstNameFromEmail()
	return row
}

// NormalizeRows maps every raw row to its canonical form and drops rows with
// no resolvable email. Dropping is a filter, not an error: header-only
// artifacts and blank spreadsheet lines are routine.
func NormalizeRows(m *ColumnMapping, raw [][]string) []Row {
	out := make([]Row, 0, len(raw))
	for _, cells := range raw {
		row := NormalizeRow(m, cells)
		if strings.TrimSpace(row.Email) == "" {
			continue
		}
		out = append(out, row)
	}
	return out
}

// PrepareRows applies the canonical defaults to rows that arrived already
// shaped, the JSON upload path. Rows with no email are dropped, matching the
// spreadsheet path.
func PrepareRows(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		r.Email = strings.TrimSpace(r.Email)
		if r.Email == "" {
			continue
		}
		r.FillFirstNameFromEmail()
		out = append(out, r)
	}
	return out
}

// CanonicalHeader returns the required field names as a CSV header row.
func CanonicalHeader() []string {
	out := make([]string, len(RequiredFields))
	for i, f := range RequiredFields {
		out[i] = string(f)
	}
	return out
}

// Cells returns the row's values in canonical header order, used when
// re-exporting failed rows as CSV.
func (r Row) Cells() []string {
	out := make([]string, len(RequiredFields))
	for i, f := range RequiredFields {
		switch f {
		case FieldID:
			out[i] = formatID(r.ID)
		case FieldFirstName:
			out[i] = r.FirstName
		case FieldLastName:
			out[i] = r.LastName
		case FieldEmail:
			out[i] = r.Email
		case FieldDateOfBirth:
			out[i] = r.DateOfBirth
		case FieldRoleProfile:
			out[i] = r.RoleProfile
		case FieldRaceEthnicity:
			out[i] = r.RaceEthnicity
		case FieldStateWork:
			out[i] = r.StateWork
		case FieldDistrictName:
			out[i] = r.DistrictName
		case FieldDistrictID:
			out[i] = formatID(r.DistrictID)
		case FieldSchoolName:
			out[i] = r.SchoolName
		case FieldSchoolID:
			out[i] = formatID(r.SchoolID)
		case FieldParticipationLimits:
			out[i] = r.ParticipationLimits
		case FieldContentArea:
			out[i] = r.ContentArea
		case FieldCourse:
			out[i] = r.Course
		case FieldGradeLevel:
			out[i] = r.GradeLevel
		}
	}
	return out
}

func formatID(n NumericID) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(int64(n), 10)
}

func parseID(s string) NumericID {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return NumericID(v)
}
