package sqlbuilder

import (
	"fmt"
	"strings"

	"github.com/drewjst/ledgergate/internal/domain/models"
)

// Filters carries the dimension ids threaded into every balance-shaped
// query. AccountingBookID is never zero once NormalizedFilterBundle has run.
type Filters struct {
	SubsidiaryID     *int64
	DepartmentID     *int64
	LocationID       *int64
	ClassID          *int64
	AccountingBookID int64
}

// FromModel adapts a models.FilterBundle into a builder Filters value.
func FromModel(f models.FilterBundle) Filters {
	n := f.NormalizedFilterBundle()
	return Filters{
		SubsidiaryID:     n.SubsidiaryID,
		DepartmentID:     n.DepartmentID,
		LocationID:       n.LocationID,
		ClassID:          n.ClassID,
		AccountingBookID: n.AccountingBookID,
	}
}

// targetSubsidiaryID returns the subsidiary used as the consolidation
// target: the caller's filter if set, else the consolidation root.
func (f Filters) targetSubsidiaryID(consolidationRoot int64) int64 {
	if f.SubsidiaryID != nil {
		return *f.SubsidiaryID
	}
	return consolidationRoot
}

// segmentFilterClauses renders the optional equality filters on the
// transaction-line table (class, department, location) plus the subsidiary
// filter on the transaction header. Per spec §4.2, subsidiary sits on the
// transaction header while class/department/location sit on the line;
// callers pass the header alias ("th") and line alias ("tl") accordingly.
func (f Filters) segmentFilterClauses(transactionAlias, lineAlias string) string {
	var b strings.Builder
	if f.SubsidiaryID != nil {
		fmt.Fprintf(&b, " AND %s.subsidiary = %s", transactionAlias, IntLiteral(*f.SubsidiaryID).SQL())
	}
	if f.ClassID != nil {
		fmt.Fprintf(&b, " AND %s.class = %s", lineAlias, IntLiteral(*f.ClassID).SQL())
	}
	if f.DepartmentID != nil {
		fmt.Fprintf(&b, " AND %s.department = %s", lineAlias, IntLiteral(*f.DepartmentID).SQL())
	}
	if f.LocationID != nil {
		fmt.Fprintf(&b, " AND %s.location = %s", lineAlias, IntLiteral(*f.LocationID).SQL())
	}
	return b.String()
}

// subsidiaryCountJoin is the CROSS JOIN that lets every query decide, inline
// and per-row, whether to invoke the consolidation builtin or pass the raw
// amount through. Using a CROSS JOIN against a scalar count (rather than the
// application branching on a separate lookup) keeps the decision co-located
// with the query that depends on it.
const subsidiaryCountJoin = `CROSS JOIN (SELECT COUNT(*) AS active_sub_count FROM subsidiary WHERE isinactive = 'F') sc`

// consolidatedAmountExpr renders the amount expression for a transaction
// line: the raw amount when only one active subsidiary exists, or the
// consolidation builtin otherwise. ratePeriodExpr is a trusted SQL fragment
// naming the rate-period id column or literal (transaction's own posting
// period for P&L, the reporting period's id for balance-sheet).
func consolidatedAmountExpr(amountCol string, targetSubsidiaryID int64, ratePeriodExpr string) string {
	return fmt.Sprintf(
		"CASE WHEN sc.active_sub_count > 1 THEN consolidate(%s, 'LEDGER', 'DEFAULT', 'DEFAULT', %s, %s, 'DEFAULT') ELSE %s END",
		amountCol, IntLiteral(targetSubsidiaryID).SQL(), ratePeriodExpr, amountCol,
	)
}

// signExpr renders the outer sign-flip multiplier: -1 for flipped account
// types, compounded with a second -1 when the account's special_tag marks it
// as a matching-contra account. Both multipliers always compose.
func signExpr(typeCol, specialTagCol string) string {
	return fmt.Sprintf(
		"(CASE WHEN %s IN (%s) THEN -1 ELSE 1 END) * (CASE WHEN %s LIKE 'Matching%%' THEN -1 ELSE 1 END)",
		typeCol, flippedTypeList(), specialTagCol,
	)
}

// flippedTypeList renders the IN-list of account type tags whose display
// sign is flipped (§3): liabilities, equity, and the two income classes.
func flippedTypeList() string {
	types := []string{
		string(models.AccountTypeAcctPay), string(models.AccountTypeCredCard),
		string(models.AccountTypeOthCurrLiab), string(models.AccountTypeLongTermLiab),
		string(models.AccountTypeDeferRevenue),
		string(models.AccountTypeEquity), string(models.AccountTypeRetainedEarnings),
		string(models.AccountTypeIncome), string(models.AccountTypeOthIncome),
	}
	return joinLiterals(stringsToLiterals(types))
}

// balanceSheetTypeList renders the IN-list of balance-sheet account types
// (assets, liabilities, equity) used to scope CTA's A/L/E sub-queries.
func balanceSheetTypeList(classes ...models.AccountClass) string {
	var types []string
	for tag, meta := range balanceSheetTypeTable() {
		for _, c := range classes {
			if meta == c {
				types = append(types, tag)
			}
		}
	}
	return joinLiterals(stringsToLiterals(types))
}

// balanceSheetTypeTable is a small local mirror of models.typeTable's
// balance-sheet entries; kept here (rather than exported from models) so the
// builder owns which tags it groups into each SQL IN-list.
func balanceSheetTypeTable() map[string]models.AccountClass {
	return map[string]models.AccountClass{
		string(models.AccountTypeBank):             models.ClassBalanceSheetAsset,
		string(models.AccountTypeAcctRec):          models.ClassBalanceSheetAsset,
		string(models.AccountTypeOthCurrAsset):     models.ClassBalanceSheetAsset,
		string(models.AccountTypeFixedAsset):       models.ClassBalanceSheetAsset,
		string(models.AccountTypeOthAsset):         models.ClassBalanceSheetAsset,
		string(models.AccountTypeDeferExpense):     models.ClassBalanceSheetAsset,
		string(models.AccountTypeUnbilledRec):      models.ClassBalanceSheetAsset,
		string(models.AccountTypeAcctPay):          models.ClassBalanceSheetLiability,
		string(models.AccountTypeCredCard):         models.ClassBalanceSheetLiability,
		string(models.AccountTypeOthCurrLiab):      models.ClassBalanceSheetLiability,
		string(models.AccountTypeLongTermLiab):     models.ClassBalanceSheetLiability,
		string(models.AccountTypeDeferRevenue):     models.ClassBalanceSheetLiability,
		string(models.AccountTypeEquity):           models.ClassBalanceSheetEquity,
		string(models.AccountTypeRetainedEarnings): models.ClassBalanceSheetEquity,
	}
}

// profitAndLossTypeList renders the IN-list of P&L account types
// (income + expense classes).
func profitAndLossTypeList() string {
	types := []string{
		string(models.AccountTypeIncome), string(models.AccountTypeOthIncome),
		string(models.AccountTypeCOGS), string(models.AccountTypeCOGSLong),
		string(models.AccountTypeExpense), string(models.AccountTypeOthExpense),
	}
	return joinLiterals(stringsToLiterals(types))
}

// nameExclusionClause renders a NOT (name LIKE ... OR name LIKE ...) guard
// used to keep manually-posted equity entries (retained earnings, CTA,
// translation, net income accounts) out of E_posted in the CTA plug.
func nameExclusionClause(nameCol string, substrings ...string) string {
	var parts []string
	for _, s := range substrings {
		parts = append(parts, fmt.Sprintf("UPPER(%s) LIKE UPPER('%%%s%%')", nameCol, escapeLikeLiteral(s)))
	}
	return "NOT (" + strings.Join(parts, " OR ") + ")"
}

// escapeLikeLiteral doubles single quotes in a literal meant for embedding
// inside a LIKE pattern already wrapped by nameExclusionClause.
func escapeLikeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
