// Package normalize turns claimant records into canonical comparison forms:
// the composite exact key, the fuzzy name form, and the canonical Claimant
// shape built from loosely-typed import rows.
package normalize

import (
	"strings"

	"github.com/masonvector/masonvector/internal/model"
)

// KeySeparator joins the exact key parts. It is not expected in names,
// dates or state codes.
const KeySeparator = "|"

// Key returns the exact dedup key: lower(trim(name)) | trim(dob) | UPPER(trim(state)).
// Missing fields contribute empty strings, so two records that both lack a
// date of birth still collide on name and state.
func Key(c model.Claimant) string {
	return strings.ToLower(strings.TrimSpace(c.Name)) +
		KeySeparator + strings.TrimSpace(c.DOB) +
		KeySeparator + strings.ToUpper(strings.TrimSpace(c.State))
}

// Ident folds an identifier (email, claim id, external id) for
// case-insensitive equality. Empty means "absent".
func Ident(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
