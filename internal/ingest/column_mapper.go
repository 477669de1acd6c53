package ingest

import (
	"fmt"
	"sort"
	"strings"
)

// Field is a canonical field name for an imported person row.
type Field string

const (
	FieldID                  Field = "id"
	FieldFirstName           Field = "first_name"
	FieldLastName            Field = "last_name"
	FieldEmail               Field = "email"
	FieldDateOfBirth         Field = "date_of_birth"
	FieldRoleProfile         Field = "role_profile"
	FieldRaceEthnicity       Field = "race_ethnicity"
	FieldStateWork           Field = "state_work"
	FieldDistrictName        Field = "district_name"
	FieldDistrictID          Field = "district_id"
	FieldSchoolName          Field = "school_name"
	FieldSchoolID            Field = "school_id"
	FieldParticipationLimits Field = "sy2024_25_participation_limits"
	FieldContentArea         Field = "content_area"
	FieldCourse              Field = "sy2024_25_course"
	FieldGradeLevel          Field = "sy2024_25_grade_level"
)

// RequiredFields is the full canonical header set the bulk report upload
// must carry. Order-independent; validated before any row is processed.
var RequiredFields = []Field{
	FieldFirstName, FieldLastName, FieldID, FieldDateOfBirth, FieldEmail,
	FieldRoleProfile, FieldRaceEthnicity, FieldStateWork,
	FieldDistrictName, FieldDistrictID, FieldSchoolName, FieldSchoolID,
	FieldParticipationLimits, FieldContentArea, FieldCourse, FieldGradeLevel,
}

// NormalizeHeader lowercases a raw header and strips everything that is not
// a letter or digit, so "First Name", "first_name" and "FirstName" all
// normalize to "firstname".
func NormalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fieldAliases maps normalized-header substrings to canonical fields.
// Checked in order; the first containment hit wins, so more specific
// aliases must come before the generic ones they contain ("districtid"
// before "district", "roleprofile" before "role").
var fieldAliases = []struct {
	substr string
	field  Field
}{
	{"firstname", FieldFirstName},
	{"lastname", FieldLastName},
	{"dateofbirth", FieldDateOfBirth},
	{"dob", FieldDateOfBirth},
	{"email", FieldEmail},
	{"roleprofile", FieldRoleProfile},
	{"role", FieldRoleProfile},
	{"raceethnicity", FieldRaceEthnicity},
	{"ethnicity", FieldRaceEthnicity},
	{"statework", FieldStateWork},
	{"state", FieldStateWork},
	{"districtid", FieldDistrictID},
	{"districtname", FieldDistrictName},
	{"district", FieldDistrictName},
	{"schoolid", FieldSchoolID},
	{"schoolname", FieldSchoolName},
	{"school", FieldSchoolName},
	{"participationlimit", FieldParticipationLimits},
	{"contentarea", FieldContentArea},
	{"course", FieldCourse},
	{"gradelevel", FieldGradeLevel},
	{"grade", FieldGradeLevel},
}

// resolveField maps one raw header to its canonical field.
// Returns false when the header is unrecognized (ignored, not an error).
func resolveField(raw string) (Field, bool) {
	normalized := NormalizeHeader(raw)
	if normalized == "" {
		return "", false
	}
	for _, a := range fieldAliases {
		if strings.Contains(normalized, a.substr) {
			return a.field, true
		}
	}
	// The bare id column matches exactly; containment would swallow
	// unrelated headers ending in "id".
	if normalized == "id" || normalized == "personid" || normalized == "participantid" {
		return FieldID, true
	}
	return "", false
}

// ColumnMapping is the resolved mapping from source column index to
// canonical field for one uploaded sheet.
type ColumnMapping struct {
	FieldIdx map[int]Field
	RawNames []string
}

// MapColumns resolves a raw header row. Unmatched headers are skipped.
// When two columns resolve to the same field, the first wins.
func MapColumns(header []string) *ColumnMapping {
	m := &ColumnMapping{
		FieldIdx: make(map[int]Field, len(header)),
		RawNames: header,
	}
	seen := make(map[Field]bool, len(header))
	for i, h := range header {
		field, ok := resolveField(h)
		if !ok || seen[field] {
			continue
		}
		m.FieldIdx[i] = field
		seen[field] = true
	}
	return m
}

// Has reports whether the mapping resolved the given canonical field.
func (m *ColumnMapping) Has(f Field) bool {
	for _, mapped := range m.FieldIdx {
		if mapped == f {
			return true
		}
	}
	return false
}

// HeaderError reports canonical headers missing from an uploaded sheet.
type HeaderError struct {
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("missing required headers: %s", strings.Join(e.Missing, ", "))
}

// ValidateRequiredHeaders checks that every canonical field in
// RequiredFields resolved from the source header row. It fails fast: a
// non-nil error means zero rows should be processed.
func ValidateRequiredHeaders(m *ColumnMapping) error {
	var missing []string
	for _, f := range RequiredFields {
		if !m.Has(f) {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &HeaderError{Missing: missing}
	}
	return nil
}
