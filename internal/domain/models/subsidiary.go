package models

// ConsolidatedSuffix is appended to a parent subsidiary's display name to
// offer the add-in a second, consolidated-view entry under the same id.
const ConsolidatedSuffix = " (Consolidated)"

// Subsidiary is a legal entity in the consolidation tree.
type Subsidiary struct {
	ID            int64
	Name          string
	ParentID      *int64
	IsInactive    bool
	IsElimination bool
}

// Dimension is a generic id/name pair for department, location, class, or
// accounting-book filters.
type Dimension struct {
	ID   int64
	Name string
}

// DefaultAccountingBookID is the id assumed when a caller omits the
// accounting book filter.
const DefaultAccountingBookID int64 = 1
