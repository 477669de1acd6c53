package logger

import "testing"

func TestRedactEmail(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"jane.doe@example.org", "ja***@example.org"},
		{"ab@example.org", "***@example.org"},
		{"not-an-email", "***@***"},
		{"a@b@c", "***@***"},
	}
	for _, c := range cases {
		if got := RedactEmail(c.in); got != c.want {
			t.Errorf("RedactEmail(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRedactPIIValue(t *testing.T) {
	if got := redactPIIValue("email", "jane.doe@example.org"); got != "ja***@example.org" {
		t.Errorf("email key not redacted: %q", got)
	}
	if got := redactPIIValue("error", "send to jane.doe@example.org failed"); got != "send to ja***@example.org failed" {
		t.Errorf("embedded email not redacted: %q", got)
	}
	if got := redactPIIValue("campaign_id", "abc-123"); got != "abc-123" {
		t.Errorf("non-PII value changed: %q", got)
	}
}
