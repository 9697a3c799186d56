// Package coordinator implements the batch coordinator: it normalizes a
// client request, classifies its accounts into P&L and balance-sheet sets,
// fans out the minimum number of ERP queries to satisfy it, applies smart
// prefetch expansion, and zero-fills the result shape.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/drewjst/ledgergate/internal/cache"
	"github.com/drewjst/ledgergate/internal/domain/models"
	"github.com/drewjst/ledgergate/internal/erp"
	"github.com/drewjst/ledgergate/internal/lookup"
	"github.com/drewjst/ledgergate/internal/normalize"
	"github.com/drewjst/ledgergate/internal/sqlbuilder"
)

// maxConcurrentQueries caps the ERP fan-out for any single request at 3,
// the process-wide default spec §4.3/§5 fixes to stay under the ERP's rate
// limit.
const maxConcurrentQueries = 3

// fullYearThresholdMonths is the month count above which the P&L path
// switches from a targeted multi-month pivot to the full-year pivot.
const fullYearThresholdMonths = 6

// Querier is the subset of the ERP client the coordinator drives.
type Querier interface {
	Query(ctx context.Context, sql string, timeout time.Duration) ([]erp.Row, error)
}

// Coordinator turns a client request into the minimum set of ERP queries.
type Coordinator struct {
	client    Querier
	builder   *sqlbuilder.Builder
	cache     *cache.Cache
	coalescer *cache.Coalescer
	book      *lookup.Book
}

// New constructs a Coordinator.
func New(client Querier, builder *sqlbuilder.Builder, c *cache.Cache, coalescer *cache.Coalescer, book *lookup.Book) *Coordinator {
	return &Coordinator{client: client, builder: builder, cache: c, coalescer: coalescer, book: book}
}

// Request is the caller-facing shape before normalization: raw account and
// period strings (as the HTTP layer received them) plus a raw filter
// bundle whose dimension fields may be ids or display names.
type Request struct {
	Accounts       []string
	Periods        []string
	Subsidiary     string
	Department     string
	Location       string
	Class          string
	AccountingBook string
	Refresh        bool
}

// ResolveFilters exposes resolveFilters for callers outside the package
// (the single-number /balance and /budget handlers, and the equity engine's
// request path) that need the same dimension-resolution rule the batch
// coordinator uses.
func (c *Coordinator) ResolveFilters(req Request) models.FilterBundle {
	return c.resolveFilters(req)
}

// resolveFilters normalizes each dimension independently; a failure to
// resolve one dimension leaves that one filter unset rather than aborting
// the request (spec §4.6).
func (c *Coordinator) resolveFilters(req Request) models.FilterBundle {
	var fb models.FilterBundle
	if req.Subsidiary != "" {
		if id, err := normalize.Dimension(req.Subsidiary, c.book.Subsidiaries()); err == nil {
			fb.SubsidiaryID = &id
		} else {
			slog.Warn("filter resolution failed", "dimension", "subsidiary", "value", req.Subsidiary, "error", err)
		}
	}
	if req.Department != "" {
		if id, err := normalize.Dimension(req.Department, c.book.Departments()); err == nil {
			fb.DepartmentID = &id
		} else {
			slog.Warn("filter resolution failed", "dimension", "department", "value", req.Department, "error", err)
		}
	}
	if req.Location != "" {
		if id, err := normalize.Dimension(req.Location, c.book.Locations()); err == nil {
			fb.LocationID = &id
		} else {
			slog.Warn("filter resolution failed", "dimension", "location", "value", req.Location, "error", err)
		}
	}
	if req.Class != "" {
		if id, err := normalize.Dimension(req.Class, c.book.Classes()); err == nil {
			fb.ClassID = &id
		} else {
			slog.Warn("filter resolution failed", "dimension", "class", "value", req.Class, "error", err)
		}
	}
	if req.AccountingBook != "" {
		if id, err := normalize.Dimension(req.AccountingBook, c.book.AccountingBooks()); err == nil {
			fb.AccountingBookID = id
		} else {
			slog.Warn("filter resolution failed", "dimension", "accountingBook", "value", req.AccountingBook, "error", err)
		}
	}
	return fb.NormalizedFilterBundle()
}

// classified groups normalized accounts by P&L/balance-sheet membership.
type classified struct {
	plAccounts []string
	bsAccounts []string
	unknown    []string
	types      map[string]models.AccountType
}

// classify looks up each account's type in the bootstrapper's cache,
// resolving any unknowns with a single type-resolution query.
func (c *Coordinator) classify(ctx context.Context, accounts []string) (classified, error) {
	cl := classified{types: map[string]models.AccountType{}}
	var unknown []string
	for _, num := range accounts {
		if a, ok := c.book.AccountByNumber(num); ok {
			cl.types[num] = a.Type
			continue
		}
		unknown = append(unknown, num)
	}

	if len(unknown) > 0 {
		sql, err := c.builder.BuildAccountTypeResolution(unknown)
		if err != nil {
			return cl, err
		}
		rows, err := c.client.Query(ctx, sql, 60*time.Second)
		if err != nil {
			return cl, err
		}
		for _, r := range rows {
			num, _ := r["account_number"].(string)
			typ, _ := r["account_type"].(string)
			acct := models.Account{Number: num, Type: models.AccountType(typ)}
			if name, ok := r["account_name"].(string); ok {
				acct.Name = name
			}
			c.book.PutAccount(acct)
			cl.types[num] = acct.Type
		}
	}

	for _, num := range accounts {
		typ, ok := cl.types[num]
		if !ok {
			cl.unknown = append(cl.unknown, num)
			continue
		}
		switch {
		case typ.IsProfitAndLoss():
			cl.plAccounts = append(cl.plAccounts, num)
		case typ.IsBalanceSheet():
			cl.bsAccounts = append(cl.bsAccounts, num)
		}
	}
	return cl, nil
}

// FetchBalances is the batch coordinator's central operation: normalize,
// classify, fan out, zero-fill. It backs every balance-shaped endpoint in
// spec §6 (batch balance, full-year refresh, bs periods).
func (c *Coordinator) FetchBalances(ctx context.Context, req Request) (models.BalanceResult, error) {
	accounts, err := normalize.Accounts(req.Accounts)
	if err != nil {
		return nil, &erp.Error{Kind: erp.KindValidation, Message: err.Error()}
	}
	periods, err := normalize.Periods(req.Periods)
	if err != nil {
		return nil, &erp.Error{Kind: erp.KindValidation, Message: err.Error()}
	}

	result := models.NewBalanceResult(accounts)
	if len(accounts) == 0 || len(periods) == 0 {
		return result, nil
	}

	filters := c.resolveFilters(req)

	cl, err := c.classify(ctx, accounts)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQueries)

	var mu resultMutex
	mu.result = result

	if len(cl.plAccounts) > 0 {
		for _, yearPeriods := range groupByFiscalYear(periods) {
			yearPeriods := yearPeriods
			g.Go(func() error {
				rows, err := c.runPLFanout(gctx, yearPeriods, filters, req.Refresh)
				if err != nil {
					return err
				}
				mu.mergeRows(rows, cl.plAccounts, yearPeriods)
				return nil
			})
		}
	}

	if len(cl.bsAccounts) > 0 {
		g.Go(func() error {
			sqlStr, err := c.builder.BuildBalanceSheetMultiPeriod(periods, sqlbuilder.FromModel(filters), c.book.ConsolidationRoot())
			if err != nil {
				return err
			}
			key, err := cache.Key("bs_periods", map[string]any{"periods": periods, "filters": filterKeyParams(filters)})
			if err != nil {
				return err
			}
			rows, err := c.cachedQuery(gctx, key, sqlStr, 120*time.Second)
			if err != nil {
				return err
			}
			mu.mergeRows(rows, cl.bsAccounts, periods)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.ZeroFill(accounts, periods)
	return result, nil
}

// runPLFanout issues either the full-year pivot or a targeted multi-month
// pivot for one fiscal year's worth of requested periods, honoring the
// smart-prefetch expansion rule.
func (c *Coordinator) runPLFanout(ctx context.Context, periods []string, filters models.FilterBundle, refresh bool) ([]erp.Row, error) {
	year, err := models.FiscalYearOf(periods[0])
	if err != nil {
		return nil, err
	}

	useFullYear := refresh || len(periods) > fullYearThresholdMonths
	bFilters := sqlbuilder.FromModel(filters)

	if useFullYear {
		sqlStr, err := c.builder.BuildFullYearPL(year, bFilters, c.book.ConsolidationRoot())
		if err != nil {
			return nil, err
		}
		key, err := cache.Key("full_year_refresh", map[string]any{"year": year, "filters": filterKeyParams(filters)})
		if err != nil {
			return nil, err
		}
		return c.cachedQuery(ctx, key, sqlStr, 120*time.Second)
	}

	expanded := expandPrefetch(periods)
	sqlStr, err := c.builder.BuildPLMultiMonth(expanded, bFilters, c.book.ConsolidationRoot())
	if err != nil {
		return nil, err
	}
	key, err := cache.Key("balance", map[string]any{"periods": expanded, "filters": filterKeyParams(filters)})
	if err != nil {
		return nil, err
	}
	return c.cachedQuery(ctx, key, sqlStr, 90*time.Second)
}

// cachedQuery wraps a single ERP round trip with the cache + coalescer: a
// hit returns without touching the ERP client; a miss installs (or joins)
// an in-flight coalesced call.
func (c *Coordinator) cachedQuery(ctx context.Context, key, sqlStr string, timeout time.Duration) ([]erp.Row, error) {
	var rows []erp.Row
	if ok, _ := c.cache.Get(key, &rows); ok {
		return rows, nil
	}

	v, err, _ := c.coalescer.Do(ctx, key, func(ctx context.Context) (any, error) {
		r, err := c.client.Query(ctx, sqlStr, timeout)
		if err != nil {
			return nil, err
		}
		if setErr := c.cache.Set(key, r); setErr != nil {
			slog.Warn("cache set failed", "key", key, "error", setErr)
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]erp.Row), nil
}

// groupByFiscalYear buckets periods by fiscal year so a range crossing
// years issues one query per year (spec §4.3 #1, §8 boundary behaviors).
func groupByFiscalYear(periods []string) [][]string {
	byYear := map[int][]string{}
	var years []int
	for _, p := range periods {
		y, err := models.FiscalYearOf(p)
		if err != nil {
			continue
		}
		if _, ok := byYear[y]; !ok {
			years = append(years, y)
		}
		byYear[y] = append(byYear[y], p)
	}
	out := make([][]string, 0, len(years))
	for _, y := range years {
		out = append(out, byYear[y])
	}
	return out
}

// expandPrefetch applies the ±1-month smart-prefetch rule for a single
// targeted P&L request: the response is still shaped to the original
// periods by the caller, but the cache is populated for this superset.
func expandPrefetch(periods []string) []string {
	if len(periods) != 1 {
		return periods
	}
	year, err := models.FiscalYearOf(periods[0])
	if err != nil {
		return periods
	}
	end, err := models.EndDateOf(periods[0])
	if err != nil {
		return periods
	}
	prev := end.AddDate(0, -1, 0)
	next := end.AddDate(0, 1, 0)
	candidates := []string{models.FormatPeriodName(prev.Year(), prev.Month()), periods[0], models.FormatPeriodName(next.Year(), next.Month())}
	out := make([]string, 0, 3)
	for _, p := range candidates {
		if y, err := models.FiscalYearOf(p); err == nil && y == year {
			out = append(out, p)
		}
	}
	return out
}

func filterKeyParams(f models.FilterBundle) map[string]any {
	m := map[string]any{"accountingBook": fmt.Sprint(f.AccountingBookID)}
	if f.SubsidiaryID != nil {
		m["subsidiary"] = fmt.Sprint(*f.SubsidiaryID)
	}
	if f.DepartmentID != nil {
		m["department"] = fmt.Sprint(*f.DepartmentID)
	}
	if f.LocationID != nil {
		m["location"] = fmt.Sprint(*f.LocationID)
	}
	if f.ClassID != nil {
		m["class"] = fmt.Sprint(*f.ClassID)
	}
	return m
}
