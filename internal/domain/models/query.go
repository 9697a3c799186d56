package models

// FilterBundle holds the dimension filters common to every balance-shaped
// query: subsidiary, department, location, class, and accounting book.
// A nil pointer means "not filtered on this dimension".
type FilterBundle struct {
	SubsidiaryID     *int64
	DepartmentID     *int64
	LocationID       *int64
	ClassID          *int64
	AccountingBookID int64
}

// NormalizedFilterBundle returns a copy of f with the accounting book
// defaulted when zero.
func (f FilterBundle) NormalizedFilterBundle() FilterBundle {
	out := f
	if out.AccountingBookID == 0 {
		out.AccountingBookID = DefaultAccountingBookID
	}
	return out
}

// Classification tells the batch coordinator which query path(s) a request
// needs.
type Classification int

const (
	ClassificationUnknown Classification = iota
	ClassificationProfitAndLoss
	ClassificationBalanceSheet
	ClassificationMixed
	ClassificationFullYearProfitAndLoss
)

// QueryRequest is an internal, normalized description of a balance fetch.
type QueryRequest struct {
	Accounts       []string
	Periods        []string
	Filters        FilterBundle
	Classification Classification
	Refresh        bool // true when the caller explicitly asked for a full refresh
}

// BalanceResult maps account number -> period name -> amount. A missing
// period key for a requested account is a bug; zero-fill must always
// populate every requested cell so the client can distinguish "zero" from
// "never asked".
type BalanceResult map[string]map[string]float64

// NewBalanceResult allocates an empty result shaped for the given accounts.
func NewBalanceResult(accounts []string) BalanceResult {
	r := make(BalanceResult, len(accounts))
	for _, a := range accounts {
		r[a] = make(map[string]float64)
	}
	return r
}

// Set records amount for account/period, creating the account's row if
// necessary.
func (r BalanceResult) Set(account, period string, amount float64) {
	row, ok := r[account]
	if !ok {
		row = make(map[string]float64)
		r[account] = row
	}
	row[period] = amount
}

// ZeroFill inserts an explicit 0.0 for every (account, period) cell not
// already populated. This is what lets the client cache a legitimate zero
// distinctly from a cell it never requested.
func (r BalanceResult) ZeroFill(accounts, periods []string) {
	for _, a := range accounts {
		row, ok := r[a]
		if !ok {
			row = make(map[string]float64)
			r[a] = row
		}
		for _, p := range periods {
			if _, ok := row[p]; !ok {
				row[p] = 0
			}
		}
	}
}

// Merge combines other into r in place. Callers from concurrent fan-out
// merge commutatively; last-writer-wins on overlapping cells is acceptable
// because overlapping cells are expected to agree (same underlying ERP data).
func (r BalanceResult) Merge(other BalanceResult) {
	for account, row := range other {
		dst, ok := r[account]
		if !ok {
			dst = make(map[string]float64, len(row))
			r[account] = dst
		}
		for period, amount := range row {
			dst[period] = amount
		}
	}
}
