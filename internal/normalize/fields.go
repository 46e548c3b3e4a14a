package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/masonvector/masonvector/internal/model"
)

// Field aliases seen across import sources, in precedence order.
// Keys are compared after lower-casing, trimming, and folding spaces and
// hyphens to underscores.
var (
	nameAliases      = []string{"full_name", "fullname", "name", "claimant_name", "claimant"}
	firstNameAliases = []string{"first_name", "firstname", "given_name"}
	lastNameAliases  = []string{"last_name", "lastname", "surname", "family_name"}
	dobAliases       = []string{"dob", "date_of_birth", "dateofbirth", "birth_date", "birthdate"}
	stateAliases     = []string{"state", "region", "province"}
	addressAliases   = []string{"address", "street_address", "address_line1"}
	amountAliases    = []string{"amount", "amount_owed", "amount_due"}
	emailAliases     = []string{"email", "email_address"}
	claimIDAliases   = []string{"claim_id", "claimid", "claim_number"}
	externalAliases  = []string{"external_id", "externalid", "legacy_id"}
	referenceAliases = []string{"reference_id", "reference", "ref", "references"}
	idAliases        = []string{"id"}
)

var knownFields = func() map[string]bool {
	m := make(map[string]bool)
	for _, group := range [][]string{
		nameAliases, firstNameAliases, lastNameAliases, dobAliases, stateAliases,
		addressAliases, amountAliases, emailAliases, claimIDAliases,
		externalAliases, referenceAliases, idAliases,
	} {
		for _, k := range group {
			m[k] = true
		}
	}
	return m
}()

// FromFields coerces a loosely-keyed row into a Claimant. It never fails:
// missing fields stay empty and unknown fields land in Extra.
func FromFields(fields map[string]string) model.Claimant {
	// Sorted so that headers folding to the same key resolve the same way on
	// every run: the first non-empty value wins.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	row := make(map[string]string, len(fields))
	var extraKeys []string
	for _, k := range keys {
		key := fieldKey(k)
		if key == "" {
			continue
		}
		if !knownFields[key] {
			extraKeys = append(extraKeys, k)
		}
		if row[key] != "" {
			continue
		}
		row[key] = strings.TrimSpace(fields[k])
	}

	c := model.Claimant{
		ID:         lookup(row, idAliases),
		Name:       lookup(row, nameAliases),
		DOB:        lookup(row, dobAliases),
		Address:    lookup(row, addressAliases),
		State:      lookup(row, stateAliases),
		Amount:     ParseAmount(lookup(row, amountAliases)),
		Email:      lookup(row, emailAliases),
		ClaimID:    lookup(row, claimIDAliases),
		ExternalID: lookup(row, externalAliases),
		References: splitReferences(lookup(row, referenceAliases)),
	}

	if c.Name == "" {
		first := lookup(row, firstNameAliases)
		last := lookup(row, lastNameAliases)
		c.Name = strings.TrimSpace(first + " " + last)
	}

	if len(extraKeys) > 0 {
		c.Extra = make(map[string]string, len(extraKeys))
		for _, k := range extraKeys {
			c.Extra[k] = strings.TrimSpace(fields[k])
		}
	}

	return c
}

// FromAny is FromFields for decoded JSON/YAML objects. Values are
// formatted with %v; nil becomes the empty string.
func FromAny(fields map[string]any) model.Claimant {
	flat := make(map[string]string, len(fields))
	for k, v := range fields {
		flat[k] = stringify(v)
	}
	return FromFields(flat)
}

// ParseAmount reads a monetary amount, tolerating currency symbols,
// thousands separators and surrounding whitespace. Anything unparsable is 0.
func ParseAmount(s string) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// fieldKey folds a header such as "Full Name" or "date-of-birth" to its
// alias form
func fieldKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, k)
}

func lookup(row map[string]string, aliases []string) string {
	for _, k := range aliases {
		if v := row[k]; v != "" {
			return v
		}
	}
	return ""
}

func splitReferences(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	var refs []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			refs = append(refs, p)
		}
	}
	return refs
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, stringify(e))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", t)
	}
}
