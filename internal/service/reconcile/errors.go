package reconcile

import "errors"

// ErrNotFound is returned by person lookups when no row matches. Any other
// lookup error is a real failure and must not be treated as a miss.
var ErrNotFound = errors.New("person not found")
