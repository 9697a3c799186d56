package sqlbuilder

import (
	"strings"
	"testing"
)

func TestBuildBalanceSingle_DispatchesOnClassification(t *testing.T) {
	b := New()
	var filters Filters
	filters.AccountingBookID = 1

	bsSQL, err := b.BuildBalanceSingle("2000", "Jan 2025", "Mar 2025", filters, 1, true)
	if err != nil {
		t.Fatalf("BuildBalanceSingle (balance sheet): %v", err)
	}
	if strings.Contains(bsSQL, "ap.startdate >=") {
		t.Error("balance-sheet path should not bound by a start date; it reports cumulative balance as-of toPeriod")
	}
	if !strings.Contains(bsSQL, "ap.enddate <=") {
		t.Error("balance-sheet path should bound by toPeriod's month-end")
	}

	plSQL, err := b.BuildBalanceSingle("4000", "Jan 2025", "Mar 2025", filters, 1, false)
	if err != nil {
		t.Fatalf("BuildBalanceSingle (P&L): %v", err)
	}
	if !strings.Contains(plSQL, "ap.startdate >=") || !strings.Contains(plSQL, "ap.enddate <=") {
		t.Error("P&L path should sum activity within [fromPeriod, toPeriod]")
	}
}

func TestBuildBudgetSingle_NotRoutedThroughConsolidation(t *testing.T) {
	b := New()
	var filters Filters
	filters.AccountingBookID = 1

	sql, err := b.BuildBudgetSingle("6000", "Jan 2025", "Dec 2025", filters)
	if err != nil {
		t.Fatalf("BuildBudgetSingle: %v", err)
	}
	if strings.Contains(sql, subsidiaryCountJoin) {
		t.Error("budget query must not use the FX-consolidation CROSS JOIN builtin")
	}
	if !strings.Contains(sql, "FROM budget bg") {
		t.Errorf("expected a query against the budget table, got: %s", sql)
	}
}

func TestBuildBudgetSingle_OptionalSegmentFilters(t *testing.T) {
	b := New()
	var filters Filters
	filters.AccountingBookID = 1
	sub := int64(5)
	filters.SubsidiaryID = &sub

	sql, err := b.BuildBudgetSingle("6000", "Jan 2025", "Dec 2025", filters)
	if err != nil {
		t.Fatalf("BuildBudgetSingle: %v", err)
	}
	if !strings.Contains(sql, "bg.subsidiary = 5") {
		t.Errorf("expected subsidiary filter clause, got: %s", sql)
	}
}
