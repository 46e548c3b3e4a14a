package model

import "time"

// Report is the complete output of one dedupe run
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source,omitempty"` // Incoming file
	Corpus      string    `json:"corpus,omitempty"` // Existing file or store path
	Mode        RunMode   `json:"mode"`

	Counts     Counts     `json:"counts"`
	Duplicates []Claimant `json:"duplicates"`
	Fresh      []Claimant `json:"fresh"`
	Reviews    []Review   `json:"reviews,omitempty"` // Fresh rows with fuzzy candidates

	Threshold float64 `json:"threshold,omitempty"` // Fuzzy review threshold used
	Committed int     `json:"committed,omitempty"` // Fresh rows written to the store
}

// RunMode describes what the incoming batch was compared against
type RunMode string

const (
	ModeAgainstCorpus RunMode = "corpus" // Incoming vs existing, plus within-batch
	ModeSelf          RunMode = "self"   // Within-batch only
)

// Counts summarises a report
type Counts struct {
	Incoming   int `json:"incoming"`
	Existing   int `json:"existing"`
	Duplicates int `json:"duplicates"`
	Fresh      int `json:"fresh"`
	Flagged    int `json:"flagged"` // Fresh rows with at least one fuzzy candidate
}

// Review lists the possible corpus duplicates for one fresh row.
// These were not caught by the exact key and need a human decision.
type Review struct {
	Row        int      `json:"row"` // Index into Fresh
	Claimant   Claimant `json:"claimant"`
	Candidates []Match  `json:"candidates"`
	Error      string   `json:"error,omitempty"`
}
