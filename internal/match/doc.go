// Package match splits claimant batches into duplicates and fresh records.
//
// Two paths are provided:
//
//   - Exact: FindDuplicates and FindInternalDuplicates compare composite
//     name|dob|STATE keys. The key set is built per call and fresh keys are
//     inserted as they are seen, so the first of two colliding incoming
//     records is fresh and the second is a duplicate.
//
//   - Fuzzy: a Matcher runs a priority cascade of identifier matches
//     (email, claim id, external id) and falls back to Levenshtein name
//     similarity against a threshold. FindDuplicate returns the single best
//     match; FindPotentialDuplicates returns every entity above threshold.
//
// Every function here is pure with respect to its arguments: inputs are never
// mutated, no state survives a call, and no I/O is performed.
package match
