// Package sqlbuilder composes parameter-free SQL statements against the
// ERP's transaction-accounting-line fact table: P&L pivots, balance-sheet
// multi-period pivots, derived-equity sub-queries, and metadata lookups.
//
// The ERP's SQL endpoint accepts no bind parameters, so every literal is
// escaped and inlined by this package before the statement ever reaches the
// ERP client. The client does not interpret the SQL it executes.
package sqlbuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// SqlLiteral is the closed set of ways a Go value may be interpolated into a
// statement. Modeling it as a sum type (rather than duck-typed
// fmt.Sprintf("%v", x)) is what keeps a caller from accidentally
// interpolating an unescaped string: every literal must name its own kind.
type SqlLiteral interface {
	SQL() string
	sqlLiteral()
}

// IntLiteral renders an integer literal verbatim; integers need no escaping.
type IntLiteral int64

func (l IntLiteral) SQL() string { return strconv.FormatInt(int64(l), 10) }
func (IntLiteral) sqlLiteral()   {}

// EscapedString renders a single-quoted string literal with embedded quotes
// doubled. It performs no NUL check of its own; Escape is the entry point
// that rejects NUL bytes, which the ERP's SQL dialect cannot represent.
type EscapedString string

func (l EscapedString) SQL() string {
	return "'" + strings.ReplaceAll(string(l), "'", "''") + "'"
}
func (EscapedString) sqlLiteral() {}

// RawTrustedFragment is SQL text that is not itself escaped — a column
// reference, a sub-expression built from other literals, or a fragment
// produced by this package's own builders. Never construct one from raw
// caller input.
type RawTrustedFragment string

func (l RawTrustedFragment) SQL() string { return string(l) }
func (RawTrustedFragment) sqlLiteral()    {}

// Escape duplicates single quotes in s and wraps it in single quotes. It is
// the shared helper spec'd for any user-derived literal embedded by the SQL
// builder. It rejects strings containing NUL bytes.
func Escape(s string) (string, error) {
	if strings.ContainsRune(s, 0) {
		return "", fmt.Errorf("escape: input contains NUL byte")
	}
	return EscapedString(s).SQL(), nil
}

// joinLiterals renders a comma-separated SQL list from literals, e.g. for an
// IN (...) clause.
func joinLiterals(lits []SqlLiteral) string {
	parts := make([]string, len(lits))
	for i, l := range lits {
		parts[i] = l.SQL()
	}
	return strings.Join(parts, ", ")
}

// stringsToLiterals converts a slice of raw strings into escaped literals.
func stringsToLiterals(ss []string) []SqlLiteral {
	lits := make([]SqlLiteral, len(ss))
	for i, s := range ss {
		lits[i] = EscapedString(s)
	}
	return lits
}
