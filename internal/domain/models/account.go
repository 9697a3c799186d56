// Package models defines the core entities shared across the gateway:
// accounts, periods, subsidiaries, filter dimensions, and query shapes.
package models

import "strings"

// AccountType is the closed set of GL account type tags the ERP exposes.
// Spellings are case-sensitive and must match the ERP's tags exactly.
type AccountType string

const (
	AccountTypeBank             AccountType = "Bank"
	AccountTypeAcctRec          AccountType = "AcctRec"
	AccountTypeOthCurrAsset     AccountType = "OthCurrAsset"
	AccountTypeFixedAsset       AccountType = "FixedAsset"
	AccountTypeOthAsset         AccountType = "OthAsset"
	AccountTypeDeferExpense     AccountType = "DeferExpense"
	AccountTypeUnbilledRec      AccountType = "UnbilledRec"
	AccountTypeAcctPay          AccountType = "AcctPay"
	AccountTypeCredCard         AccountType = "CredCard"
	AccountTypeOthCurrLiab      AccountType = "OthCurrLiab"
	AccountTypeLongTermLiab     AccountType = "LongTermLiab"
	AccountTypeDeferRevenue     AccountType = "DeferRevenue"
	AccountTypeEquity           AccountType = "Equity"
	AccountTypeRetainedEarnings AccountType = "RetainedEarnings"
	AccountTypeIncome           AccountType = "Income"
	AccountTypeOthIncome        AccountType = "OthIncome"
	AccountTypeCOGS             AccountType = "COGS"
	AccountTypeCOGSLong         AccountType = "Cost of Goods Sold"
	AccountTypeExpense          AccountType = "Expense"
	AccountTypeOthExpense       AccountType = "OthExpense"
	AccountTypeNonPosting       AccountType = "NonPosting"
	AccountTypeStat             AccountType = "Stat"
)

// AccountClass groups account types for query routing (P&L vs balance sheet).
type AccountClass int

const (
	ClassExcluded AccountClass = iota
	ClassBalanceSheetAsset
	ClassBalanceSheetLiability
	ClassBalanceSheetEquity
	ClassIncome
	ClassExpense
)

// typeMeta captures the per-type sign and classification rules from spec §3.
type typeMeta struct {
	class      AccountClass
	flipSign   bool // display-flip column: multiply raw amount by -1
	naturalDeb bool // true if natural balance is a debit
}

var typeTable = map[AccountType]typeMeta{
	AccountTypeBank:         {ClassBalanceSheetAsset, false, true},
	AccountTypeAcctRec:      {ClassBalanceSheetAsset, false, true},
	AccountTypeOthCurrAsset: {ClassBalanceSheetAsset, false, true},
	AccountTypeFixedAsset:   {ClassBalanceSheetAsset, false, true},
	AccountTypeOthAsset:     {ClassBalanceSheetAsset, false, true},
	AccountTypeDeferExpense: {ClassBalanceSheetAsset, false, true},
	AccountTypeUnbilledRec:  {ClassBalanceSheetAsset, false, true},

	AccountTypeAcctPay:      {ClassBalanceSheetLiability, true, false},
	AccountTypeCredCard:     {ClassBalanceSheetLiability, true, false},
	AccountTypeOthCurrLiab:  {ClassBalanceSheetLiability, true, false},
	AccountTypeLongTermLiab: {ClassBalanceSheetLiability, true, false},
	AccountTypeDeferRevenue: {ClassBalanceSheetLiability, true, false},

	AccountTypeEquity:           {ClassBalanceSheetEquity, true, false},
	AccountTypeRetainedEarnings: {ClassBalanceSheetEquity, true, false},

	AccountTypeIncome:    {ClassIncome, true, false},
	AccountTypeOthIncome: {ClassIncome, true, false},

	AccountTypeCOGS:       {ClassExpense, false, true},
	AccountTypeCOGSLong:   {ClassExpense, false, true},
	AccountTypeExpense:    {ClassExpense, false, true},
	AccountTypeOthExpense: {ClassExpense, false, true},

	AccountTypeNonPosting: {ClassExcluded, false, false},
	AccountTypeStat:       {ClassExcluded, false, false},
}

// Class returns the account class for t, or ClassExcluded for unknown tags.
func (t AccountType) Class() AccountClass {
	return typeTable[t].class
}

// FlipsSign reports whether the display-flip column applies to t.
func (t AccountType) FlipsSign() bool {
	return typeTable[t].flipSign
}

// Known reports whether t is a recognized tag from the type table.
func (t AccountType) Known() bool {
	_, ok := typeTable[t]
	return ok
}

// IsProfitAndLoss reports whether t belongs to the income-statement set.
func (t AccountType) IsProfitAndLoss() bool {
	c := t.Class()
	return c == ClassIncome || c == ClassExpense
}

// IsBalanceSheet reports whether t belongs to the balance-sheet set.
func (t AccountType) IsBalanceSheet() bool {
	c := t.Class()
	return c == ClassBalanceSheetAsset || c == ClassBalanceSheetLiability || c == ClassBalanceSheetEquity
}

// matchingPrefix is the special-tag prefix denoting an FX-revaluation contra account.
const matchingPrefix = "Matching"

// IsMatchingContra reports whether specialTag marks a matching-contra account.
func IsMatchingContra(specialTag string) bool {
	return strings.HasPrefix(specialTag, matchingPrefix)
}

// SignMultiplier composes the type-table flip with the matching-contra flip.
// Both multipliers compose per spec §4.2; this is the only correct treatment.
func SignMultiplier(t AccountType, specialTag string) float64 {
	mult := 1.0
	if t.FlipsSign() {
		mult *= -1
	}
	if IsMatchingContra(specialTag) {
		mult *= -1
	}
	return mult
}

// Account identifies a GL account. Number is the public identity;
// InternalID is used only in joins, never exposed as identity.
type Account struct {
	Number       string
	InternalID   int64
	Name         string
	Type         AccountType
	ParentNumber *string
	IsEliminate  bool
	SpecialTag   *string
}

// NameMatchesAny reports whether the account's full name contains (case
// insensitively) any of the given substrings. Used by the derived-equity
// engine to exclude "manual" equity postings from the plug calculation.
func (a Account) NameMatchesAny(substrings ...string) bool {
	lower := strings.ToLower(a.Name)
	for _, s := range substrings {
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
