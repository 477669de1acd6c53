package ingest

import (
	"strings"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"First Name":         "firstname",
		"first_name":         "firstname",
		"  E-Mail Address ":  "emailaddress",
		"SY2024-25 Course":   "sy202425course",
		"District ID":        "districtid",
		"RACE / ETHNICITY":   "raceethnicity",
	}
	for in, want := range cases {
		if got := NormalizeHeader(in); got != want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveFieldAliases(t *testing.T) {
	cases := []struct {
		header string
		want   Field
	}{
		{"First Name", FieldFirstName},
		{"FIRSTNAME", FieldFirstName},
		{"Last name", FieldLastName},
		{"Email Address", FieldEmail},
		{"e-mail", FieldEmail},
		{"Date of Birth", FieldDateOfBirth},
		{"Role Profile", FieldRoleProfile},
		{"Role", FieldRoleProfile},
		{"Race/Ethnicity", FieldRaceEthnicity},
		{"State (Work)", FieldStateWork},
		{"District ID", FieldDistrictID},
		{"District Name", FieldDistrictName},
		{"School ID", FieldSchoolID},
		{"School Name", FieldSchoolName},
		{"SY2024-25 Participation Limits", FieldParticipationLimits},
		{"Content Area", FieldContentArea},
		{"SY2024-25 Course", FieldCourse},
		{"SY2024-25 Grade Level", FieldGradeLevel},
		{"ID", FieldID},
		{"id", FieldID},
	}
	for _, c := range cases {
		got, ok := resolveField(c.header)
		if !ok {
			t.Errorf("resolveField(%q): no match, want %s", c.header, c.want)
			continue
		}
		if got != c.want {
			t.Errorf("resolveField(%q) = %s, want %s", c.header, got, c.want)
		}
	}
}

func TestResolveFieldUnknownIgnored(t *testing.T) {
	for _, h := range []string{"Favorite Color", "", "   ", "notes"} {
		if f, ok := resolveField(h); ok {
			t.Errorf("resolveField(%q) matched %s, want no match", h, f)
		}
	}
}

func fullHeader() []string {
	return []string{
		"First Name", "Last Name", "ID", "Date of Birth", "Email",
		"Role Profile", "Race/Ethnicity", "State Work",
		"District Name", "District ID", "School Name", "School ID",
		"SY2024-25 Participation Limits", "Content Area",
		"SY2024-25 Course", "SY2024-25 Grade Level",
	}
}

func TestValidateRequiredHeadersComplete(t *testing.T) {
	m := MapColumns(fullHeader())
	if err := ValidateRequiredHeaders(m); err != nil {
		t.Fatalf("complete header rejected: %v", err)
	}
}

func TestValidateRequiredHeadersMissing(t *testing.T) {
	header := fullHeader()
	// Drop District ID.
	header = append(header[:9], header[10:]...)

	m := MapColumns(header)
	err := ValidateRequiredHeaders(m)
	if err == nil {
		t.Fatal("expected header error")
	}
	he, ok := err.(*HeaderError)
	if !ok {
		t.Fatalf("expected *HeaderError, got %T", err)
	}
	found := false
	for _, miss := range he.Missing {
		if miss == "district_id" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing list %v does not name district_id", he.Missing)
	}
	if !strings.Contains(err.Error(), "district_id") {
		t.Errorf("error message %q does not name district_id", err.Error())
	}
}

func TestMapColumnsFirstDuplicateWins(t *testing.T) {
	m := MapColumns([]string{"Email", "Work Email"})
	if len(m.FieldIdx) != 1 {
		t.Fatalf("expected 1 mapped column, got %d", len(m.FieldIdx))
	}
	if m.FieldIdx[0] != FieldEmail {
		t.Errorf("first email column should win, got %v", m.FieldIdx)
	}
}
