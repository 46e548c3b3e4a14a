package model

// Claimant is the canonical record shape used by every matching routine.
// Loose import rows are coerced into it by the normalize package.
type Claimant struct {
	ID         string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string            `json:"name" yaml:"name"`
	DOB        string            `json:"dob,omitempty" yaml:"dob,omitempty"`
	Address    string            `json:"address,omitempty" yaml:"address,omitempty"`
	State      string            `json:"state,omitempty" yaml:"state,omitempty"`
	Amount     float64           `json:"amount,omitempty" yaml:"amount,omitempty"`
	Email      string            `json:"email,omitempty" yaml:"email,omitempty"`
	ClaimID    string            `json:"claim_id,omitempty" yaml:"claim_id,omitempty"`
	ExternalID string            `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	References []string          `json:"references,omitempty" yaml:"references,omitempty"`
	Extra      map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Partition is the result of exact-key deduplication
type Partition struct {
	Duplicates []Claimant `json:"duplicates"`
	Fresh      []Claimant `json:"fresh"`
}

// Reason names the strategy that produced a match
type Reason string

const (
	ReasonEmail      Reason = "email"      // Case-insensitive email equality
	ReasonClaimID    Reason = "claimId"    // Case-insensitive claim id equality
	ReasonExternalID Reason = "externalId" // Case-insensitive external/legacy id equality
	ReasonName       Reason = "name"       // Fuzzy name similarity at or above threshold
)

// Match is a corpus entity that a candidate was matched against
type Match struct {
	Entity Claimant `json:"entity"`
	Reason Reason   `json:"reason"`
	Score  float64  `json:"score"` // 1 for identifier matches
}
