package logger

import "strings"

// RedactEmail masks an email address for safe logging.
// "jane.doe@district.k12.oh.us" → "ja***@district.k12.oh.us"
// Short local parts (≤2 chars) are fully masked.
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	local := parts[0]
	if len(local) > 2 {
		return local[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}
