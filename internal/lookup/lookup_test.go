package lookup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/drewjst/ledgergate/internal/domain/models"
	"github.com/drewjst/ledgergate/internal/erp"
	"github.com/drewjst/ledgergate/internal/sqlbuilder"
)

// failingQuerier fails every query whose SQL contains one of failOn, and
// otherwise returns rows keyed by SQL substring — used to prove Bootstrap
// tolerates a partial failure in one dictionary without aborting the others.
type failingQuerier struct {
	failOn []string
	rows   map[string][]erp.Row
}

func (f *failingQuerier) Query(ctx context.Context, sql string, timeout time.Duration) ([]erp.Row, error) {
	for _, bad := range f.failOn {
		if contains(sql, bad) {
			return nil, fmt.Errorf("simulated failure for %q", bad)
		}
	}
	for substr, rows := range f.rows {
		if contains(sql, substr) {
			return rows, nil
		}
	}
	return nil, nil
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestBootstrap_TolerantOfOneDictionaryFailure(t *testing.T) {
	b := sqlbuilder.New()
	q := &failingQuerier{
		failOn: []string{"FROM classification"}, // BuildClasses' source table
		rows: map[string][]erp.Row{
			"FROM department": {{"id": int64(1), "name": "Engineering"}},
		},
	}

	book := Bootstrap(context.Background(), q, b)

	if got := book.Classes(); len(got) != 0 {
		t.Errorf("expected empty classes dictionary after its query failed, got %v", got)
	}
	if got, ok := book.Departments().ResolveID("Engineering"); !ok || got != 1 {
		t.Errorf("expected department dictionary to load despite the classes failure, got (%d, %v)", got, ok)
	}
}

func TestDimensionTable_ResolveID_CaseInsensitiveFallback(t *testing.T) {
	d := dimensionTable{"East Coast": 10}

	if got, ok := d.ResolveID("East Coast"); !ok || got != 10 {
		t.Errorf("exact match: got (%d, %v), want (10, true)", got, ok)
	}
	if got, ok := d.ResolveID("east coast"); !ok || got != 10 {
		t.Errorf("case-insensitive match: got (%d, %v), want (10, true)", got, ok)
	}
	if _, ok := d.ResolveID("West Coast"); ok {
		t.Error("expected no match for an unrelated name")
	}
}

func TestBootstrap_ConsolidationRootDefaultsOnFailure(t *testing.T) {
	b := sqlbuilder.New()
	q := &failingQuerier{failOn: []string{"FROM subsidiary"}}
	book := Bootstrap(context.Background(), q, b)
	if book.ConsolidationRoot() != 1 {
		t.Errorf("ConsolidationRoot() = %d, want default 1 on query failure", book.ConsolidationRoot())
	}
}

func TestAllLookups_ParentSubsidiaryGetsConsolidatedSuffixVariant(t *testing.T) {
	b := sqlbuilder.New()
	q := &failingQuerier{rows: map[string][]erp.Row{
		"FROM subsidiary": {
			{"id": int64(1), "name": "Parent Co", "parent_id": nil},
			{"id": int64(2), "name": "Child Co", "parent_id": int64(1)},
		},
	}}
	book := Bootstrap(context.Background(), q, b)

	all := book.AllLookups()
	var plain, consolidated bool
	for _, d := range all["subsidiaries"] {
		if d.Name == "Parent Co" && d.ID == 1 {
			plain = true
		}
		if d.Name == "Parent Co"+models.ConsolidatedSuffix && d.ID == 1 {
			consolidated = true
		}
	}
	if !plain {
		t.Error("expected the plain parent subsidiary entry")
	}
	if !consolidated {
		t.Error("expected an additional (Consolidated) entry sharing the parent's id")
	}
}

func TestAccountByNumber_PutThenGet(t *testing.T) {
	b := sqlbuilder.New()
	book := Bootstrap(context.Background(), &failingQuerier{}, b)

	if _, ok := book.AccountByNumber("4000"); ok {
		t.Fatal("expected miss before PutAccount")
	}

	book.PutAccount(models.Account{Number: "4000", Name: "Revenue", Type: models.AccountTypeIncome})

	got, ok := book.AccountByNumber("4000")
	if !ok {
		t.Fatal("expected hit after PutAccount")
	}
	if got.Name != "Revenue" || got.Type != models.AccountTypeIncome {
		t.Errorf("AccountByNumber(\"4000\") = %+v", got)
	}
}

func TestAllAccountNumbers_ListsEveryPrimedAccount(t *testing.T) {
	b := sqlbuilder.New()
	book := Bootstrap(context.Background(), &failingQuerier{}, b)
	book.PutAccount(models.Account{Number: "4000", Type: models.AccountTypeIncome})
	book.PutAccount(models.Account{Number: "1000", Type: models.AccountTypeBank})

	got := book.AllAccountNumbers()
	if len(got) != 2 {
		t.Fatalf("AllAccountNumbers() = %v, want 2 entries", got)
	}
	seen := map[string]bool{}
	for _, n := range got {
		seen[n] = true
	}
	if !seen["4000"] || !seen["1000"] {
		t.Errorf("AllAccountNumbers() = %v, missing an expected number", got)
	}
}
