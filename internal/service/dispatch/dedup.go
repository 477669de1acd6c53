package dispatch

import (
	"strconv"
	"strings"

	"github.com/luminaed/atrium/internal/pkg/logger"
)

// Candidate is one requested recipient before dedup and validation. The id
// is either a numeric person id or a synthetic string id for addresses
// entered by hand or pulled from a meeting invite list.
type Candidate struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsManual  bool   `json:"isManual"`
}

// manualPrefixes mark synthetic ids that have no backing person row.
var manualPrefixes = []string{"manual_", "import_", "meeting_"}

// Manual reports whether the candidate targets a free-text address rather
// than a known person. Explicit flag or a synthetic id prefix both count.
func (c Candidate) Manual() bool {
	if c.IsManual {
		return true
	}
	for _, p := range manualPrefixes {
		if strings.HasPrefix(c.ID, p) {
			return true
		}
	}
	return false
}

// PersonID parses the candidate id as a numeric person key. Manual
// candidates and unparseable ids report false.
func (c Candidate) PersonID() (int64, bool) {
	if c.Manual() {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(c.ID), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// Dedup drops candidates whose trimmed email was already seen, keeping the
// first occurrence's data. Comparison is on the trimmed string as-is with
// no case folding. Candidates with an empty email are dropped outright.
func Dedup(in []Candidate) ([]Candidate, int) {
	seen := make(map[string]struct{}, len(in))
	out := make([]Candidate, 0, len(in))
	dropped := 0
	for _, c := range in {
		email := strings.TrimSpace(c.Email)
		if email == "" {
			dropped++
			continue
		}
		if _, dup := seen[email]; dup {
			dropped++
			logger.Debug("dropping duplicate recipient", "email", email)
			continue
		}
		seen[email] = struct{}{}
		c.Email = email
		out = append(out, c)
	}
	return out, dropped
}
