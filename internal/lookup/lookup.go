// Package lookup bootstraps and serves the gateway's name→id dictionaries:
// subsidiaries, departments, locations, classes, accounting books, and the
// account-title cache, plus the default consolidation root.
package lookup

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/drewjst/ledgergate/internal/domain/models"
	"github.com/drewjst/ledgergate/internal/erp"
	"github.com/drewjst/ledgergate/internal/sqlbuilder"
)

// Querier is the subset of the ERP client the bootstrapper needs.
type Querier interface {
	Query(ctx context.Context, sql string, timeout time.Duration) ([]erp.Row, error)
}

// Book bootstraps and holds the dimension dictionaries. The dimension maps
// are populated once at startup and only read afterward; the account-title
// cache additionally takes on-demand entries through PutAccount, guarded by
// titlesMu.
type Book struct {
	builder *sqlbuilder.Builder

	classes         map[string]int64
	locations       map[string]int64
	departments     map[string]int64
	accountingBooks map[string]int64
	subsidiaries    map[string]int64
	subsidiaryNames map[int64]string
	parentIDs       map[int64]bool

	consolidationRoot int64

	titlesMu      sync.RWMutex
	accountTitles map[string]models.Account
}

const defaultTimeout = 60 * time.Second

// Bootstrap runs every lookup query tolerant of partial failure: a failed
// query logs and leaves that dictionary empty rather than aborting startup.
func Bootstrap(ctx context.Context, q Querier, builder *sqlbuilder.Builder) *Book {
	b := &Book{
		builder:         builder,
		classes:         map[string]int64{},
		locations:       map[string]int64{},
		departments:     map[string]int64{},
		accountingBooks: map[string]int64{},
		subsidiaries:    map[string]int64{},
		subsidiaryNames: map[int64]string{},
		parentIDs:       map[int64]bool{},
		accountTitles:   map[string]models.Account{},
	}

	b.classes = loadDimension(ctx, q, builder.BuildClasses())
	b.locations = loadDimension(ctx, q, builder.BuildLocations())
	b.departments = loadDimension(ctx, q, builder.BuildDepartments())
	b.accountingBooks = loadDimension(ctx, q, builder.BuildAccountingBooks())

	b.loadSubsidiaries(ctx, q)
	b.loadConsolidationRoot(ctx, q)
	b.loadAccountTitles(ctx, q)

	return b
}

func loadDimension(ctx context.Context, q Querier, sql string) map[string]int64 {
	out := map[string]int64{}
	rows, err := q.Query(ctx, sql, defaultTimeout)
	if err != nil {
		slog.Warn("lookup bootstrap: dimension query failed, continuing with empty map", "error", err)
		return out
	}
	for _, r := range rows {
		name, _ := r["name"].(string)
		id := toInt64(r["id"])
		if name != "" {
			out[name] = id
		}
	}
	return out
}

func (b *Book) loadSubsidiaries(ctx context.Context, q Querier) {
	rows, err := q.Query(ctx, b.builder.BuildSubsidiaries(), defaultTimeout)
	if err != nil {
		slog.Warn("lookup bootstrap: subsidiaries query failed, continuing with empty map", "error", err)
		return
	}
	for _, r := range rows {
		name, _ := r["name"].(string)
		id := toInt64(r["id"])
		if name != "" {
			b.subsidiaries[name] = id
			b.subsidiaryNames[id] = name
		}
		if parent, ok := r["parent_id"]; ok && parent != nil {
			b.parentIDs[toInt64(parent)] = true
		}
	}
}

func (b *Book) loadConsolidationRoot(ctx context.Context, q Querier) {
	rows, err := q.Query(ctx, b.builder.BuildConsolidationRoot(), defaultTimeout)
	if err != nil || len(rows) == 0 {
		slog.Warn("lookup bootstrap: consolidation root query failed or empty, defaulting to id 1", "error", err)
		b.consolidationRoot = 1
		return
	}
	b.consolidationRoot = toInt64(rows[0]["id"])
}

func (b *Book) loadAccountTitles(ctx context.Context, q Querier) {
	rows, err := q.Query(ctx, b.builder.BuildAccountTitles(), defaultTimeout)
	if err != nil {
		slog.Warn("lookup bootstrap: account titles query failed, continuing with empty cache", "error", err)
		return
	}
	for _, r := range rows {
		number, _ := r["account_number"].(string)
		if number == "" {
			continue
		}
		name, _ := r["account_name"].(string)
		acctType, _ := r["account_type"].(string)
		var specialTag *string
		if st, ok := r["special_tag"].(string); ok && st != "" {
			specialTag = &st
		}
		b.accountTitles[number] = models.Account{
			Number:     number,
			InternalID: toInt64(r["internal_id"]),
			Name:       name,
			Type:       models.AccountType(acctType),
			SpecialTag: specialTag,
		}
	}
}



// ConsolidationRoot returns the default target subsidiary for the
// consolidation builtin.
func (b *Book) ConsolidationRoot() int64 { return b.consolidationRoot }

// AccountByNumber returns a primed account title, if the bootstrapper has
// seen it.
func (b *Book) AccountByNumber(number string) (models.Account, bool) {
	b.titlesMu.RLock()
	defer b.titlesMu.RUnlock()
	a, ok := b.accountTitles[number]
	return a, ok
}

// PutAccount records an account resolved on-demand (spec §3: "populated
// lazily on first reference; cached for process lifetime"). No cache entry
// is ever mutated in place — a lookup always installs a fresh Account value.
func (b *Book) PutAccount(a models.Account) {
	b.titlesMu.Lock()
	defer b.titlesMu.Unlock()
	b.accountTitles[a.Number] = a
}

// AllAccountNumbers lists every account number in the title cache (primed
// at startup or added by PutAccount); the full-year refresh uses this whole
// set as its account universe.
func (b *Book) AllAccountNumbers() []string {
	b.titlesMu.RLock()
	defer b.titlesMu.RUnlock()
	out := make([]string, 0, len(b.accountTitles))
	for num := range b.accountTitles {
		out = append(out, num)
	}
	return out
}

// ResolveID implements normalize.DimensionResolver over one of the
// dictionaries.
type dimensionTable map[string]int64

func (d dimensionTable) ResolveID(name string) (int64, bool) {
	if id, ok := d[name]; ok {
		return id, true
	}
	for stored, id := range d {
		if strings.EqualFold(stored, name) {
			return id, true
		}
	}
	return 0, false
}

// Subsidiaries, Departments, Locations, Classes, AccountingBooks expose the
// resolver for their respective dimension.
func (b *Book) Subsidiaries() dimensionTable    { return b.subsidiaries }
func (b *Book) Departments() dimensionTable     { return b.departments }
func (b *Book) Locations() dimensionTable       { return b.locations }
func (b *Book) Classes() dimensionTable         { return b.classes }
func (b *Book) AccountingBooks() dimensionTable { return b.accountingBooks }

// AllLookups renders the §6 "/lookups/all" response shape: every dimension
// as a sorted []{id,name} list, with parent subsidiaries additionally
// offered under a "(Consolidated)" suffix sharing the same id.
func (b *Book) AllLookups() map[string][]models.Dimension {
	subs := make([]models.Dimension, 0, len(b.subsidiaries)+len(b.parentIDs))
	for name, id := range b.subsidiaries {
		subs = append(subs, models.Dimension{ID: id, Name: name})
		if b.parentIDs[id] {
			subs = append(subs, models.Dimension{ID: id, Name: name + models.ConsolidatedSuffix})
		}
	}
	out := map[string][]models.Dimension{
		"subsidiaries":    subs,
		"departments":     toDimensions(b.departments),
		"classes":         toDimensions(b.classes),
		"locations":       toDimensions(b.locations),
		"accountingBooks": toDimensions(b.accountingBooks),
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	return out
}

func toDimensions(m map[string]int64) []models.Dimension {
	out := make([]models.Dimension, 0, len(m))
	for name, id := range m {
		out = append(out, models.Dimension{ID: id, Name: name})
	}
	return out
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n
	default:
		return 0
	}
}
