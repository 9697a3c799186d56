package sqlbuilder

import (
	"fmt"
	"time"

	"github.com/drewjst/ledgergate/internal/domain/models"
)

// BuildBalanceSingle composes the /balance single-number query: a P&L
// account sums its activity across [fromPeriod, toPeriod]; a balance-sheet
// account ignores fromPeriod and reports its cumulative balance as of
// toPeriod's month-end, matching the multi-period pivot's cumulative
// semantics (spec §4.2) collapsed to one account.
func (b *Builder) BuildBalanceSingle(account, fromPeriod, toPeriod string, filters Filters, consolidationRoot int64, isBalanceSheet bool) (string, error) {
	if isBalanceSheet {
		return b.buildBalanceSheetSingle(account, toPeriod, filters, consolidationRoot)
	}
	return b.buildProfitAndLossSingle(account, fromPeriod, toPeriod, filters, consolidationRoot)
}

func (b *Builder) buildBalanceSheetSingle(account, periodName string, filters Filters, consolidationRoot int64) (string, error) {
	end, err := monthEndTime(periodName)
	if err != nil {
		return "", err
	}
	targetSub := filters.targetSubsidiaryID(consolidationRoot)
	ratePeriodLit, err := Escape(periodName)
	if err != nil {
		return "", err
	}
	endLit, err := Escape(end.Format("2006-01-02"))
	if err != nil {
		return "", err
	}
	accountLit, err := Escape(account)
	if err != nil {
		return "", err
	}
	amountExpr := consolidatedAmountExpr("tal.amount", targetSub,
		fmt.Sprintf("(SELECT id FROM %s WHERE periodname = %s)", periodTable, ratePeriodLit))

	segClauses := filters.segmentFilterClauses("th", "tl")
	return fmt.Sprintf(`SELECT SUM(%s * %s) AS amount
  FROM %s tal
  JOIN %s tl ON tl.id = tal.transactionline
  JOIN transaction th ON th.id = tal.transaction
  JOIN %s a ON a.id = tal.account
  JOIN %s ap ON ap.id = tl.postingperiod
  %s
 WHERE tal.posting = 'T' AND th.posting = 'T'
   AND tal.accountingbook = %s
   AND a.acctnumber = %s
   AND ap.enddate <= TO_DATE(%s,'YYYY-MM-DD')
   AND COALESCE(a.eliminate,'F') = 'F'%s`,
		amountExpr, signExpr("a.accttype", "a.specialtype"),
		factTable, headerTable, accountTable, periodTable,
		subsidiaryCountJoin,
		IntLiteral(filters.AccountingBookID).SQL(),
		accountLit, endLit, segClauses,
	), nil
}

func (b *Builder) buildProfitAndLossSingle(account, fromPeriod, toPeriod string, filters Filters, consolidationRoot int64) (string, error) {
	start, err := monthStart(fromPeriod)
	if err != nil {
		return "", err
	}
	end, err := monthEnd(toPeriod)
	if err != nil {
		return "", err
	}
	targetSub := filters.targetSubsidiaryID(consolidationRoot)
	startLit, err := Escape(start)
	if err != nil {
		return "", err
	}
	endLit, err := Escape(end)
	if err != nil {
		return "", err
	}
	accountLit, err := Escape(account)
	if err != nil {
		return "", err
	}
	amountExpr := consolidatedAmountExpr("tal.amount", targetSub, "tl.postingperiod")

	segClauses := filters.segmentFilterClauses("th", "tl")
	return fmt.Sprintf(`SELECT SUM(%s * %s) AS amount
  FROM %s tal
  JOIN %s tl ON tl.id = tal.transactionline
  JOIN transaction th ON th.id = tal.transaction
  JOIN %s a ON a.id = tal.account
  JOIN %s ap ON ap.id = tl.postingperiod
  %s
 WHERE tal.posting = 'T' AND th.posting = 'T'
   AND tal.accountingbook = %s
   AND a.acctnumber = %s
   AND ap.startdate >= TO_DATE(%s,'YYYY-MM-DD')
   AND ap.enddate <= TO_DATE(%s,'YYYY-MM-DD')
   AND COALESCE(a.eliminate,'F') = 'F'%s`,
		amountExpr, signExpr("a.accttype", "a.specialtype"),
		factTable, headerTable, accountTable, periodTable,
		subsidiaryCountJoin,
		IntLiteral(filters.AccountingBookID).SQL(),
		accountLit, startLit, endLit, segClauses,
	), nil
}

// BuildBudgetSingle composes the /budget single-number query against the
// ERP's budget table. Budget entries are recorded per subsidiary directly —
// no FX consolidation builtin applies to planned, as opposed to posted,
// amounts — so this is a flat sum rather than routed through
// consolidatedAmountExpr.
func (b *Builder) BuildBudgetSingle(account, fromPeriod, toPeriod string, filters Filters) (string, error) {
	start, err := monthStart(fromPeriod)
	if err != nil {
		return "", err
	}
	end, err := monthEnd(toPeriod)
	if err != nil {
		return "", err
	}
	accountLit, err := Escape(account)
	if err != nil {
		return "", err
	}
	startLit, err := Escape(start)
	if err != nil {
		return "", err
	}
	endLit, err := Escape(end)
	if err != nil {
		return "", err
	}

	var subsidiaryClause, classClause, deptClause, locClause string
	if filters.SubsidiaryID != nil {
		subsidiaryClause = fmt.Sprintf(" AND bg.subsidiary = %s", IntLiteral(*filters.SubsidiaryID).SQL())
	}
	if filters.ClassID != nil {
		classClause = fmt.Sprintf(" AND bg.class = %s", IntLiteral(*filters.ClassID).SQL())
	}
	if filters.DepartmentID != nil {
		deptClause = fmt.Sprintf(" AND bg.department = %s", IntLiteral(*filters.DepartmentID).SQL())
	}
	if filters.LocationID != nil {
		locClause = fmt.Sprintf(" AND bg.location = %s", IntLiteral(*filters.LocationID).SQL())
	}

	return fmt.Sprintf(`SELECT SUM(bg.amount * %s) AS amount
  FROM budget bg
  JOIN %s a ON a.id = bg.account
  JOIN %s ap ON ap.id = bg.period
 WHERE bg.accountingbook = %s
   AND a.acctnumber = %s
   AND ap.startdate >= TO_DATE(%s,'YYYY-MM-DD')
   AND ap.enddate <= TO_DATE(%s,'YYYY-MM-DD')%s%s%s%s`,
		signExpr("a.accttype", "a.specialtype"),
		accountTable, periodTable,
		IntLiteral(filters.AccountingBookID).SQL(),
		accountLit, startLit, endLit,
		subsidiaryClause, classClause, deptClause, locClause,
	), nil
}

func monthEndTime(periodName string) (time.Time, error) {
	return models.EndDateOf(periodName)
}

func monthStart(periodName string) (string, error) {
	end, err := monthEndTime(periodName)
	if err != nil {
		return "", err
	}
	start := end.AddDate(0, 0, -(end.Day() - 1))
	return start.Format("2006-01-02"), nil
}

func monthEnd(periodName string) (string, error) {
	end, err := monthEndTime(periodName)
	if err != nil {
		return "", err
	}
	return end.Format("2006-01-02"), nil
}
