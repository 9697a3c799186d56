package sqlbuilder

import "fmt"

// BuildClasses, BuildLocations, BuildDepartments select the id/name/active
// flag for one dimension table each — used once at startup by the lookup
// bootstrapper.
func (b *Builder) BuildClasses() string {
	return `SELECT id AS id, name AS name, isinactive AS isinactive FROM classification WHERE isinactive = 'F'`
}

func (b *Builder) BuildLocations() string {
	return `SELECT id AS id, name AS name, isinactive AS isinactive FROM location WHERE isinactive = 'F'`
}

func (b *Builder) BuildDepartments() string {
	return `SELECT id AS id, name AS name, isinactive AS isinactive FROM department WHERE isinactive = 'F'`
}

// BuildSubsidiaries selects the full subsidiary hierarchy so the
// bootstrapper can retain the set of parent ids (needed to offer
// "(Consolidated)" display variants).
func (b *Builder) BuildSubsidiaries() string {
	return `SELECT id AS id, name AS name, parent AS parent_id, isinactive AS isinactive, iselimination AS iselimination FROM subsidiary`
}

// BuildAccountingBooks selects every accounting book's id and name.
func (b *Builder) BuildAccountingBooks() string {
	return `SELECT id AS id, name AS name FROM accountingbook`
}

// BuildConsolidationRoot selects the first active top-level subsidiary,
// ordered by id, limited to one row with FETCH FIRST 1 ROWS ONLY.
func (b *Builder) BuildConsolidationRoot() string {
	return `SELECT id AS id, name AS name FROM subsidiary
 WHERE parent IS NULL AND isinactive = 'F'
 ORDER BY id
 FETCH FIRST 1 ROWS ONLY`
}

// BuildAccountTitles loads acctnumber -> fullname for every active account,
// primed at startup so most name lookups never round-trip.
func (b *Builder) BuildAccountTitles() string {
	return fmt.Sprintf(`SELECT a.acctnumber AS account_number, a.fullname AS account_name,
       a.accttype AS account_type, a.id AS internal_id, a.specialtype AS special_tag
  FROM %s a
 WHERE a.isinactive = 'F'`, accountTable)
}

// BuildActiveSubsidiaryCount selects the number of active subsidiaries,
// which the /test connectivity handler reports. Individual balance queries always embed
// their own CROSS JOIN copy of this count rather than depend on a value
// computed ahead of time, so this standalone query is informational only.
func (b *Builder) BuildActiveSubsidiaryCount() string {
	return `SELECT COUNT(*) AS active_sub_count FROM subsidiary WHERE isinactive = 'F'`
}
