package match

import (
	"github.com/masonvector/masonvector/internal/model"
	"github.com/masonvector/masonvector/internal/normalize"
)

// FindDuplicates classifies each incoming record, in order, as a duplicate
// of existing (or of an earlier incoming record) or as fresh.
func FindDuplicates(incoming, existing []model.Claimant) model.Partition {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, c := range existing {
		seen[normalize.Key(c)] = struct{}{}
	}

	result := model.Partition{
		Duplicates: []model.Claimant{},
		Fresh:      []model.Claimant{},
	}

	for _, c := range incoming {
		key := normalize.Key(c)
		if _, dup := seen[key]; dup {
			result.Duplicates = append(result.Duplicates, c)
			continue
		}
		seen[key] = struct{}{}
		result.Fresh = append(result.Fresh, c)
	}

	return result
}

// FindInternalDuplicates finds duplicates within a single batch
func FindInternalDuplicates(records []model.Claimant) model.Partition {
	return FindDuplicates(records, nil)
}

// GroupByKey groups records sharing an exact key, preserving first-seen
// order of groups and of records within a group. Groups of one are included.
// The result feeds model.Merge.
func GroupByKey(records []model.Claimant) [][]model.Claimant {
	index := make(map[string]int)
	var groups [][]model.Claimant

	for _, c := range records {
		key := normalize.Key(c)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], c)
	}

	return groups
}
