package sqlbuilder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drewjst/ledgergate/internal/domain/models"
)

// Builder composes SQL statements for the gateway's balance-shaped queries.
// It is stateless; every method takes the caller-supplied filter bundle and
// the consolidation root resolved at startup by the lookup bootstrapper.
type Builder struct{}

// New returns a ready-to-use Builder.
func New() *Builder { return &Builder{} }

const (
	factTable    = "transactionaccountingline"
	headerTable  = "transaction"
	accountTable = "account"
	periodTable  = "accountingperiod"
)

// periodColumnAlias turns "Jan 2025" into "bal_2025_01", a safe SQL
// identifier fragment for a pivot column or period table alias.
func periodColumnAlias(prefix, periodName string) (string, error) {
	end, err := models.EndDateOf(periodName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%04d_%02d", prefix, end.Year(), int(end.Month())), nil
}

// BuildAccountTypeResolution resolves the account type (and name, parent,
// special tag) for an explicit set of account numbers — issued once by the
// coordinator when it encounters accounts missing from the account cache.
func (b *Builder) BuildAccountTypeResolution(accounts []string) (string, error) {
	if len(accounts) == 0 {
		return "", fmt.Errorf("build account type resolution: empty account set")
	}
	inList := joinLiterals(stringsToLiterals(accounts))
	return fmt.Sprintf(
		`SELECT a.acctnumber AS account_number, a.accttype AS account_type, a.id AS internal_id,
       a.fullname AS account_name, a.parent AS parent_number, a.specialtype AS special_tag
  FROM %s a
 WHERE a.acctnumber IN (%s)`, accountTable, inList), nil
}

// BuildAccountName, BuildAccountType, BuildAccountParent resolve a single
// metadata field for one account number.
func (b *Builder) BuildAccountName(account string) (string, error) {
	lit, err := Escape(account)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`SELECT a.fullname AS account_name FROM %s a WHERE a.acctnumber = %s`, accountTable, lit), nil
}

func (b *Builder) BuildAccountType(account string) (string, error) {
	lit, err := Escape(account)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`SELECT a.accttype AS account_type FROM %s a WHERE a.acctnumber = %s`, accountTable, lit), nil
}

func (b *Builder) BuildAccountParent(account string) (string, error) {
	lit, err := Escape(account)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`SELECT p.acctnumber AS parent_number
  FROM %s a LEFT JOIN %s p ON p.id = a.parent
 WHERE a.acctnumber = %s`, accountTable, accountTable, lit), nil
}

// BuildAccountSearch matches spec §6/§9: '*' maps to SQL '%'; absent a '*'
// the whole pattern is escaped as a literal substring match; special LIKE
// characters ('%', '_') in caller input are escaped in both cases.
func (b *Builder) BuildAccountSearch(pattern string, activeOnly bool) (string, error) {
	likePattern, err := translateSearchPattern(pattern)
	if err != nil {
		return "", err
	}
	activeClause := ""
	if activeOnly {
		activeClause = " AND a.isinactive = 'F'"
	}
	return fmt.Sprintf(
		`SELECT a.id AS id, a.acctnumber AS accountnumber, a.fullname AS accountname, a.accttype AS accttype
  FROM %s a
 WHERE (a.acctnumber LIKE %s ESCAPE '\' OR a.fullname LIKE %s ESCAPE '\')%s
 ORDER BY a.acctnumber`,
		accountTable, likePattern, likePattern, activeClause), nil
}

// translateSearchPattern converts the caller's '*' wildcard syntax to a
// LIKE pattern. When '*' is present, only '*' is converted (to '%'); the
// remainder is taken literally by escaping LIKE metacharacters first so a
// literal '%' or '_' in the input is not itself treated as a wildcard. When
// '*' is absent, the whole input is escaped and wrapped with '%' on both
// sides for a substring match.
func translateSearchPattern(pattern string) (string, error) {
	if strings.ContainsRune(pattern, 0) {
		return "", fmt.Errorf("search pattern: contains NUL byte")
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(pattern)
	if strings.Contains(pattern, "*") {
		escaped = strings.NewReplacer(`\\*`, `*`).Replace(escaped) // '*' is not a LIKE metachar, nothing to unescape
		translated := strings.ReplaceAll(escaped, "*", "%")
		lit, err := Escape(translated)
		if err != nil {
			return "", err
		}
		return lit, nil
	}
	lit, err := Escape("%" + escaped + "%")
	if err != nil {
		return "", err
	}
	return lit, nil
}

// BuildFullYearPL composes the P&L hot-path query: one row per account, one
// pivot column per calendar month of the fiscal year, consolidation
// evaluated once per raw line inside an inner subquery (not once per
// outer group — the 10-20x win spec.md calls out).
func (b *Builder) BuildFullYearPL(year int, filters Filters, consolidationRoot int64) (string, error) {
	targetSub := filters.targetSubsidiaryID(consolidationRoot)
	innerAmount := consolidatedAmountExpr("tal.amount", targetSub, "tl.postingperiod")

	var pivots strings.Builder
	for m := 1; m <= 12; m++ {
		col := fmt.Sprintf("bal_%04d_%02d", year, m)
		fmt.Fprintf(&pivots, ",\n       SUM(CASE WHEN EXTRACT(MONTH FROM ap.startdate) = %d THEN consolidated_amount * sign_mult ELSE 0 END) AS %s", m, col)
	}

	segClauses := filters.segmentFilterClauses("th", "tl")
	return fmt.Sprintf(`SELECT account_number, account_type%s
  FROM (
    SELECT a.acctnumber AS account_number, a.accttype AS account_type, ap.startdate AS startdate,
           %s AS consolidated_amount,
           %s AS sign_mult
      FROM %s tal
      JOIN %s tl ON tl.id = tal.transactionline
      JOIN transaction th ON th.id = tal.transaction
      JOIN %s a ON a.id = tal.account
      JOIN %s ap ON ap.id = tl.postingperiod
      %s
     WHERE tal.posting = 'T' AND th.posting = 'T'
       AND tal.accountingbook = %s
       AND a.accttype IN (%s)
       AND ap.isyear = 'F' AND ap.isquarter = 'F'
       AND TO_CHAR(ap.startdate,'YYYY') = %s
       AND COALESCE(a.eliminate,'F') = 'F'%s
  ) grouped
 GROUP BY account_number, account_type
 ORDER BY account_number`,
		pivots.String(),
		innerAmount,
		signExpr("a.accttype", "a.specialtype"),
		factTable, headerTable, accountTable, periodTable,
		subsidiaryCountJoin,
		IntLiteral(filters.AccountingBookID).SQL(),
		profitAndLossTypeList(),
		EscapedString(strconv.Itoa(year)).SQL(),
		segClauses,
	), nil
}

// BuildPLMultiMonth composes a targeted P&L pivot over an explicit set of
// periods (all within one fiscal year — the coordinator issues one query
// per year when a range spans years).
func (b *Builder) BuildPLMultiMonth(periods []string, filters Filters, consolidationRoot int64) (string, error) {
	if len(periods) == 0 {
		return "", fmt.Errorf("build P&L multi-month: empty period set")
	}
	targetSub := filters.targetSubsidiaryID(consolidationRoot)
	innerAmount := consolidatedAmountExpr("tal.amount", targetSub, "tl.postingperiod")

	var pivots strings.Builder
	periodNameLits := make([]string, 0, len(periods))
	for _, p := range periods {
		col, err := periodColumnAlias("bal", p)
		if err != nil {
			return "", err
		}
		lit, err := Escape(p)
		if err != nil {
			return "", err
		}
		periodNameLits = append(periodNameLits, lit)
		fmt.Fprintf(&pivots, ",\n       SUM(CASE WHEN ap.periodname = %s THEN consolidated_amount * sign_mult ELSE 0 END) AS %s", lit, col)
	}

	segClauses := filters.segmentFilterClauses("th", "tl")
	return fmt.Sprintf(`SELECT account_number, account_type%s
  FROM (
    SELECT a.acctnumber AS account_number, a.accttype AS account_type, ap.periodname AS periodname,
           %s AS consolidated_amount,
           %s AS sign_mult
      FROM %s tal
      JOIN %s tl ON tl.id = tal.transactionline
      JOIN transaction th ON th.id = tal.transaction
      JOIN %s a ON a.id = tal.account
      JOIN %s ap ON ap.id = tl.postingperiod
      %s
     WHERE tal.posting = 'T' AND th.posting = 'T'
       AND tal.accountingbook = %s
       AND a.accttype IN (%s)
       AND ap.isyear = 'F' AND ap.isquarter = 'F'
       AND ap.periodname IN (%s)
       AND COALESCE(a.eliminate,'F') = 'F'%s
  ) grouped
 GROUP BY account_number, account_type
 ORDER BY account_number`,
		pivots.String(),
		innerAmount,
		signExpr("a.accttype", "a.specialtype"),
		factTable, headerTable, accountTable, periodTable,
		subsidiaryCountJoin,
		IntLiteral(filters.AccountingBookID).SQL(),
		profitAndLossTypeList(),
		strings.Join(periodNameLits, ", "),
		segClauses,
	), nil
}

// BuildBalanceSheetMultiPeriod composes the multi-period balance-sheet
// pivot: one column per requested month-end, each a cumulative sum bounded
// by that month's reporting date, with the outer WHERE clause's cumulative
// bound set to the chronologically latest requested month (never the last
// listed — spec §4.2/§8).
func (b *Builder) BuildBalanceSheetMultiPeriod(periods []string, filters Filters, consolidationRoot int64) (string, error) {
	if len(periods) == 0 {
		return "", fmt.Errorf("build balance-sheet multi-period: empty period set")
	}
	latest, err := models.LatestPeriod(periods)
	if err != nil {
		return "", err
	}
	latestEnd, err := models.EndDateOf(latest)
	if err != nil {
		return "", err
	}
	targetSub := filters.targetSubsidiaryID(consolidationRoot)

	var periodJoins strings.Builder
	var pivots strings.Builder
	for _, p := range periods {
		alias, err := periodColumnAlias("p", p)
		if err != nil {
			return "", err
		}
		col, err := periodColumnAlias("bal", p)
		if err != nil {
			return "", err
		}
		nameLit, err := Escape(p)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&periodJoins, "\n      JOIN %s %s ON %s.periodname = %s", periodTable, alias, alias, nameLit)
		amountExpr := consolidatedAmountExpr("tal.amount", targetSub, alias+".id")
		fmt.Fprintf(&pivots, ",\n       SUM(CASE WHEN ap.enddate <= %s.enddate THEN %s * %s ELSE 0 END) AS %s",
			alias, amountExpr, signExpr("a.accttype", "a.specialtype"), col)
	}

	segClauses := filters.segmentFilterClauses("th", "tl")
	balanceSheetTypes := balanceSheetTypeList(models.ClassBalanceSheetAsset, models.ClassBalanceSheetLiability, models.ClassBalanceSheetEquity)
	latestEndLit, err := Escape(latestEnd.Format("2006-01-02"))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`SELECT a.acctnumber AS account_number, a.accttype AS account_type%s
  FROM %s tal
  JOIN %s tl ON tl.id = tal.transactionline
  JOIN transaction th ON th.id = tal.transaction
  JOIN %s a ON a.id = tal.account
  JOIN %s ap ON ap.id = tl.postingperiod%s
  %s
 WHERE tal.posting = 'T' AND th.posting = 'T'
   AND tal.accountingbook = %s
   AND a.accttype IN (%s)
   AND ap.enddate <= TO_DATE(%s,'YYYY-MM-DD')
   AND COALESCE(a.eliminate,'F') = 'F'%s
 GROUP BY a.acctnumber, a.accttype
 ORDER BY a.acctnumber`,
		pivots.String(),
		factTable, headerTable, accountTable, periodTable,
		periodJoins.String(),
		subsidiaryCountJoin,
		IntLiteral(filters.AccountingBookID).SQL(),
		balanceSheetTypes,
		latestEndLit,
		segClauses,
	), nil
}

// BuildRetainedEarningsRoll composes the RE_roll sub-query: cumulative P&L
// activity through the last day of the prior fiscal year, rate period set
// to the last month of that prior year.
func (b *Builder) BuildRetainedEarningsRoll(fiscalYear int, filters Filters, consolidationRoot int64) (string, error) {
	priorYearEnd := models.LastDayOfYear(fiscalYear - 1)
	endDate, err := models.EndDateOf(priorYearEnd)
	if err != nil {
		return "", err
	}
	targetSub := filters.targetSubsidiaryID(consolidationRoot)

	ratePeriodLit, err := Escape(priorYearEnd)
	if err != nil {
		return "", err
	}
	endDateLit, err := Escape(endDate.Format("2006-01-02"))
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
   AND a.accttype IN (%s)
   AND ap.enddate <= TO_DATE(%s,'YYYY-MM-DD')
   AND COALESCE(a.eliminate,'F') = 'F'%s`,
		amountExpr, signExpr("a.accttype", "a.specialtype"),
		factTable, headerTable, accountTable, periodTable,
		subsidiaryCountJoin,
		IntLiteral(filters.AccountingBookID).SQL(),
		profitAndLossTypeList(),
		endDateLit,
		segClauses,
	), nil
}

// BuildRetainedEarningsManual composes RE_manual: journal entries posted
// directly to RetainedEarnings-typed accounts whose full name matches
// "retained earnings" (case-insensitive), over the same cumulative window.
func (b *Builder) BuildRetainedEarningsManual(fiscalYear int, filters Filters, consolidationRoot int64) (string, error) {
	priorYearEnd := models.LastDayOfYear(fiscalYear - 1)
	endDate, err := models.EndDateOf(priorYearEnd)
	if err != nil {
		return "", err
	}
	targetSub := filters.targetSubsidiaryID(consolidationRoot)
	ratePeriodLit, err := Escape(priorYearEnd)
	if err != nil {
		return "", err
	}
	endDateLit, err := Escape(endDate.Format("2006-01-02"))
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
   AND a.accttype = %s
   AND UPPER(a.fullname) LIKE UPPER('%%retained earnings%%')
   AND ap.enddate <= TO_DATE(%s,'YYYY-MM-DD')
   AND COALESCE(a.eliminate,'F') = 'F'%s`,
		amountExpr, signExpr("a.accttype", "a.specialtype"),
		factTable, headerTable, accountTable, periodTable,
		subsidiaryCountJoin,
		IntLiteral(filters.AccountingBookID).SQL(),
		EscapedString(models.AccountTypeRetainedEarnings).SQL(),
		endDateLit,
		segClauses,
	), nil
}

// BuildNetIncome composes NI: P&L activity in [first-month-of(FY), M],
// rate period set to M.
func (b *Builder) BuildNetIncome(periodName string, filters Filters, consolidationRoot int64) (string, error) {
	fy, err := models.FiscalYearOf(periodName)
	if err != nil {
		return "", err
	}
	firstMonth := models.FirstMonthOfYear(fy)
	firstStart, err := models.EndDateOf(firstMonth)
	if err != nil {
		return "", err
	}
	firstStart = firstStart.AddDate(0, 0, -(firstStart.Day() - 1)) // first day of that month
	targetEnd, err := models.EndDateOf(periodName)
	if err != nil {
		return "", err
	}
	targetSub := filters.targetSubsidiaryID(consolidationRoot)
	ratePeriodLit, err := Escape(periodName)
	if err != nil {
		return "", err
	}
	startLit, err := Escape(firstStart.Format("2006-01-02"))
	if err != nil {
		return "", err
	}
	endLit, err := Escape(targetEnd.Format("2006-01-02"))
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
   AND a.accttype IN (%s)
   AND ap.startdate >= TO_DATE(%s,'YYYY-MM-DD')
   AND ap.enddate <= TO_DATE(%s,'YYYY-MM-DD')
   AND COALESCE(a.eliminate,'F') = 'F'%s`,
		amountExpr, signExpr("a.accttype", "a.specialtype"),
		factTable, headerTable, accountTable, periodTable,
		subsidiaryCountJoin,
		IntLiteral(filters.AccountingBookID).SQL(),
		profitAndLossTypeList(),
		startLit, endLit,
		segClauses,
	), nil
}

// cumulativeBalanceSheetClass composes the shared shape behind CTA's A, L,
// and E_posted sub-queries: a cumulative sum through periodName for a set
// of account classes, with an optional name-exclusion guard.
func (b *Builder) cumulativeBalanceSheetClass(periodName string, filters Filters, consolidationRoot int64, typeList string, excludeNames []string) (string, error) {
	end, err := models.EndDateOf(periodName)
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
	amountExpr := consolidatedAmountExpr("tal.amount", targetSub,
		fmt.Sprintf("(SELECT id FROM %s WHERE periodname = %s)", periodTable, ratePeriodLit))

	exclusion := ""
	if len(excludeNames) > 0 {
		exclusion = "\n   AND " + nameExclusionClause("a.fullname", excludeNames...)
	}

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
   AND a.accttype IN (%s)
   AND ap.enddate <= TO_DATE(%s,'YYYY-MM-DD')
   AND COALESCE(a.eliminate,'F') = 'F'%s%s`,
		amountExpr, signExpr("a.accttype", "a.specialtype"),
		factTable, headerTable, accountTable, periodTable,
		subsidiaryCountJoin,
		IntLiteral(filters.AccountingBookID).SQL(),
		typeList,
		endLit,
		segClauses, exclusion,
	), nil
}

// BuildAssetsCumulative, BuildLiabilitiesCumulative, and
// BuildPostedEquityCumulative are the A, L, and E_posted legs of the CTA
// plug (spec §4.4).
func (b *Builder) BuildAssetsCumulative(periodName string, filters Filters, consolidationRoot int64) (string, error) {
	return b.cumulativeBalanceSheetClass(periodName, filters, consolidationRoot, balanceSheetTypeList(models.ClassBalanceSheetAsset), nil)
}

func (b *Builder) BuildLiabilitiesCumulative(periodName string, filters Filters, consolidationRoot int64) (string, error) {
	return b.cumulativeBalanceSheetClass(periodName, filters, consolidationRoot, balanceSheetTypeList(models.ClassBalanceSheetLiability), nil)
}

// equityExclusionSubstrings are excluded from E_posted so the CTA plug never
// double-counts retained earnings, net income, or translation-adjustment
// postings that the RE/NI sub-queries (or the plug itself) already account
// for.
var equityExclusionSubstrings = []string{
	"retained earnings", "translation", "cta", "net income", "cumulative translation",
}

func (b *Builder) BuildPostedEquityCumulative(periodName string, filters Filters, consolidationRoot int64) (string, error) {
	return b.cumulativeBalanceSheetClass(periodName, filters, consolidationRoot, balanceSheetTypeList(models.ClassBalanceSheetEquity), equityExclusionSubstrings)
}

// BuildTransactionsDrillDown lists the individual posted lines behind one
// account/period cell, for the add-in's drill-down view.
func (b *Builder) BuildTransactionsDrillDown(account, periodName string, filters Filters) (string, error) {
	end, err := models.EndDateOf(periodName)
	if err != nil {
		return "", err
	}
	start := end.AddDate(0, 0, -(end.Day() - 1))
	accountLit, err := Escape(account)
	if err != nil {
		return "", err
	}
	startLit, err := Escape(start.Format("2006-01-02"))
	if err != nil {
		return "", err
	}
	endLit, err := Escape(end.Format("2006-01-02"))
	if err != nil {
		return "", err
	}
	segClauses := filters.segmentFilterClauses("th", "tl")
	return fmt.Sprintf(`SELECT th.id AS internal_id, th.trandate AS transaction_date, th.type AS transaction_type,
       th.tranid AS transaction_number, e.entityid AS entity_name, tl.memo AS memo,
       CASE WHEN tal.amount > 0 THEN tal.amount ELSE 0 END AS debit,
       CASE WHEN tal.amount < 0 THEN -tal.amount ELSE 0 END AS credit,
       tal.amount AS net_amount
  FROM %s tal
  JOIN %s tl ON tl.id = tal.transactionline
  JOIN transaction th ON th.id = tal.transaction
  JOIN %s a ON a.id = tal.account
  LEFT JOIN entity e ON e.id = th.entity
 WHERE tal.posting = 'T' AND th.posting = 'T'
   AND tal.accountingbook = %s
   AND a.acctnumber = %s
   AND th.trandate >= TO_DATE(%s,'YYYY-MM-DD')
   AND th.trandate <= TO_DATE(%s,'YYYY-MM-DD')
   AND COALESCE(a.eliminate,'F') = 'F'%s
 ORDER BY th.trandate`,
		factTable, headerTable, accountTable,
		IntLiteral(filters.AccountingBookID).SQL(),
		accountLit, startLit, endLit, segClauses,
	), nil
}
