// Package ids generates opaque identifiers needed before any insert,
// such as the transfer id pairing two stock movements. Aggregate primary
// keys are assigned by the CoreModel insert hook, not by this package.
package ids

import "github.com/google/uuid"

// New returns a fresh opaque identifier.
func New() string {
	return uuid.NewString()
}
