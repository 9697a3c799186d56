package coordinator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/drewjst/ledgergate/internal/cache"
	"github.com/drewjst/ledgergate/internal/domain/models"
	"github.com/drewjst/ledgergate/internal/erp"
	"github.com/drewjst/ledgergate/internal/lookup"
	"github.com/drewjst/ledgergate/internal/sqlbuilder"
)

// fakeQuerier dispatches canned rows by a substring of the issued SQL, and
// counts how many times each substring's branch fired.
type fakeQuerier struct {
	calls int
	rows  map[string][]erp.Row // keyed by a substring expected in the SQL
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, timeout time.Duration) ([]erp.Row, error) {
	f.calls++
	for substr, rows := range f.rows {
		if strings.Contains(sql, substr) {
			return rows, nil
		}
	}
	return nil, nil
}

func newTestBook(t *testing.T) *lookup.Book {
	t.Helper()
	empty := &fakeQuerier{rows: map[string][]erp.Row{}}
	book := lookup.Bootstrap(context.Background(), empty, sqlbuilder.New())
	book.PutAccount(models.Account{Number: "4000", Name: "Revenue", Type: models.AccountTypeIncome})
	book.PutAccount(models.Account{Number: "1000", Name: "Cash", Type: models.AccountTypeBank})
	return book
}

func newTestCoordinator(t *testing.T, q Querier) (*Coordinator, *lookup.Book) {
	t.Helper()
	book := newTestBook(t)
	c := New(q, sqlbuilder.New(), cache.New(time.Minute), cache.NewCoalescer(), book)
	return c, book
}

func TestFetchBalances_EmptyAccounts_ShortCircuitsWithoutQuerying(t *testing.T) {
	q := &fakeQuerier{rows: map[string][]erp.Row{}}
	c, _ := newTestCoordinator(t, q)

	result, err := c.FetchBalances(context.Background(), Request{Accounts: nil, Periods: []string{"Jan 2025"}})
	if err != nil {
		t.Fatalf("FetchBalances: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected empty result for empty account list, got %v", result)
	}
	if q.calls != 0 {
		t.Errorf("expected zero ERP queries for empty account list, got %d", q.calls)
	}
}

func TestFetchBalances_EmptyPeriods_ShortCircuitsWithoutQuerying(t *testing.T) {
	q := &fakeQuerier{rows: map[string][]erp.Row{}}
	c, _ := newTestCoordinator(t, q)

	result, err := c.FetchBalances(context.Background(), Request{Accounts: []string{"4000"}, Periods: nil})
	if err != nil {
		t.Fatalf("FetchBalances: %v", err)
	}
	if len(result["4000"]) != 0 {
		t.Errorf("expected no cells populated for empty period list, got %v", result)
	}
	if q.calls != 0 {
		t.Errorf("expected zero ERP queries for empty period list, got %d", q.calls)
	}
}

func TestFetchBalances_ZeroFillsEveryRequestedCell(t *testing.T) {
	q := &fakeQuerier{rows: map[string][]erp.Row{
		"FROM transactionaccountingline": {
			{"account_number": "4000", "bal_2025_01": 100.0},
		},
	}}
	c, _ := newTestCoordinator(t, q)

	result, err := c.FetchBalances(context.Background(), Request{
		Accounts: []string{"4000"},
		Periods:  []string{"Jan 2025", "Feb 2025"},
	})
	if err != nil {
		t.Fatalf("FetchBalances: %v", err)
	}
	if got := result["4000"]["Jan 2025"]; got != 100.0 {
		t.Errorf("Jan 2025 = %v, want 100.0", got)
	}
	if got, ok := result["4000"]["Feb 2025"]; !ok || got != 0 {
		t.Errorf("expected Feb 2025 zero-filled, got %v (present=%v)", got, ok)
	}
}

func TestFetchBalances_UnknownAccountDoesNotCrashAndIsZeroFilled(t *testing.T) {
	q := &fakeQuerier{rows: map[string][]erp.Row{
		"SELECT a.acctnumber AS account_number, a.accttype AS account_type, a.id": {},
	}}
	c, _ := newTestCoordinator(t, q)

	result, err := c.FetchBalances(context.Background(), Request{
		Accounts: []string{"9999"},
		Periods:  []string{"Jan 2025"},
	})
	if err != nil {
		t.Fatalf("FetchBalances: %v", err)
	}
	// An account the classifier can't place into either query path never gets
	// a query issued for it, but the final zero-fill pass still guarantees
	// the cell exists so the client can distinguish "zero" from "never asked".
	if got, ok := result["9999"]["Jan 2025"]; !ok || got != 0 {
		t.Errorf("expected unknown account to be zero-filled, got %v (present=%v)", got, ok)
	}
}

func TestFetchBalances_MixedAccounts_BothPathsFire(t *testing.T) {
	q := &fakeQuerier{rows: map[string][]erp.Row{
		// Unique to the balance-sheet multi-period path (the outer cumulative
		// bound); the P&L path instead bounds by ap.periodname IN (...).
		"ap.enddate <= TO_DATE": {{"account_number": "1000", "bal_2025_01": 50.0}},
		"ap.periodname IN (":    {{"account_number": "4000", "bal_2025_01": 100.0}},
	}}
	c, _ := newTestCoordinator(t, q)

	result, err := c.FetchBalances(context.Background(), Request{
		Accounts: []string{"1000", "4000"},
		Periods:  []string{"Jan 2025"},
	})
	if err != nil {
		t.Fatalf("FetchBalances: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("expected both accounts in result, got %v", result)
	}
	if got := result["1000"]["Jan 2025"]; got != 50 {
		t.Errorf("expected balance-sheet path amount 50 for 1000, got %v", got)
	}
	if got := result["4000"]["Jan 2025"]; got != 100 {
		t.Errorf("expected P&L path amount 100 for 4000, got %v", got)
	}
}

func TestGroupByFiscalYear_SplitsPeriodsAcrossYears(t *testing.T) {
	groups := groupByFiscalYear([]string{"Nov 2024", "Dec 2024", "Jan 2025", "Feb 2025"})
	if len(groups) != 2 {
		t.Fatalf("expected 2 fiscal-year groups, got %d: %v", len(groups), groups)
	}
	if len(groups[0]) != 2 || len(groups[1]) != 2 {
		t.Errorf("expected 2 periods per year group, got %v", groups)
	}
}

func TestExpandPrefetch_ExpandsSingleMonthToThreeWithinSameFiscalYear(t *testing.T) {
	out := expandPrefetch([]string{"Jun 2025"})
	want := map[string]bool{"May 2025": true, "Jun 2025": true, "Jul 2025": true}
	if len(out) != 3 {
		t.Fatalf("expected 3 expanded periods, got %v", out)
	}
	for _, p := range out {
		if !want[p] {
			t.Errorf("unexpected expanded period %q", p)
		}
	}
}

func TestExpandPrefetch_DoesNotExpandAcrossFiscalYearBoundary(t *testing.T) {
	out := expandPrefetch([]string{"Jan 2025"})
	for _, p := range out {
		if strings.HasSuffix(p, "2024") {
			t.Errorf("expected no expansion into the prior fiscal year, got %v", out)
		}
	}
}

func TestExpandPrefetch_MultiMonthRequestIsNotExpanded(t *testing.T) {
	in := []string{"Jan 2025", "Feb 2025"}
	out := expandPrefetch(in)
	if len(out) != len(in) {
		t.Errorf("expected no expansion for a multi-month request, got %v", out)
	}
}

func TestFilterKeyParams_OmitsUnsetDimensionsAndIncludesAccountingBook(t *testing.T) {
	params := filterKeyParams(models.FilterBundle{AccountingBookID: 3})
	if params["accountingBook"] != "3" {
		t.Errorf("expected accountingBook in params, got %v", params)
	}
	if _, ok := params["subsidiary"]; ok {
		t.Error("did not expect a subsidiary key when unset")
	}

	sub := int64(7)
	withSub := filterKeyParams(models.FilterBundle{AccountingBookID: 1, SubsidiaryID: &sub})
	if withSub["subsidiary"] != "7" {
		t.Errorf("expected subsidiary key when set, got %v", withSub)
	}
}
