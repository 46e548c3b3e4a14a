package model

import "errors"

// ErrEmptyGroup is returned when merging zero records
var ErrEmptyGroup = errors.New("cannot merge an empty duplicate group")

// Merge collapses a group of duplicate claimants into one record.
// The first record is the base; amounts are summed and references are
// concatenated in group order. Extra fields missing from the base are
// filled from later records.
func Merge(group []Claimant) (Claimant, error) {
	if len(group) == 0 {
		return Claimant{}, ErrEmptyGroup
	}

	merged := group[0]
	merged.Amount = 0
	merged.References = nil
	merged.Extra = nil

	for _, c := range group {
		merged.Amount += c.Amount
		merged.References = append(merged.References, c.References...)
		for k, v := range c.Extra {
			if merged.Extra == nil {
				merged.Extra = make(map[string]string)
			}
			if _, ok := merged.Extra[k]; !ok {
				merged.Extra[k] = v
			}
		}
	}

	return merged, nil
}
