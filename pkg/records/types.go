package records

import "time"

// Record is the managed business entity: a titled note with a creator
type Record struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`

	// CreatedByUsername is the creator's display name, resolved on read
	CreatedByUsername string `json:"created_by_username"`
}

// Listing is a filtered record list with counts for "N of M" display
type Listing struct {
	Records    []Record `json:"records"`
	MatchCount int      `json:"match_count"`
	TotalCount int      `json:"total_count"`
	Query      string   `json:"query,omitempty"`
}

// Policy configures optional hardening of record mutations.
// By default any staff account may edit or delete any record (shared
// admin workspace); RestrictToCreator narrows mutation and deletion to
// the record's creator.
type Policy struct {
	RestrictToCreator bool `yaml:"restrict_to_creator"`
}
