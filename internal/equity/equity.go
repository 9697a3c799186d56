// Package equity implements the derived-equity engine: retained earnings,
// net income, and the cumulative-translation-adjustment "plug", each a
// deterministic composition of balance-sheet and P&L sub-queries that runs
// through the same cache and coalescer as ordinary balance fetches.
package equity

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/drewjst/ledgergate/internal/cache"
	"github.com/drewjst/ledgergate/internal/domain/models"
	"github.com/drewjst/ledgergate/internal/erp"
	"github.com/drewjst/ledgergate/internal/lookup"
	"github.com/drewjst/ledgergate/internal/sqlbuilder"
)

// outerTimeout is the engine's outermost budget; balance-sheet sub-queries
// on large histories can take 60-90s (spec §4.4).
const outerTimeout = 300 * time.Second

// subQueryTimeout bounds each individual sub-query the engine issues.
const subQueryTimeout = 120 * time.Second

// Querier is the subset of the ERP client the engine drives directly.
type Querier interface {
	Query(ctx context.Context, sql string, timeout time.Duration) ([]erp.Row, error)
}

// Engine composes retained earnings, net income, and CTA.
type Engine struct {
	client    Querier
	builder   *sqlbuilder.Builder
	cache     *cache.Cache
	coalescer *cache.Coalescer
	book      *lookup.Book
}

// New constructs an Engine.
func New(client Querier, builder *sqlbuilder.Builder, c *cache.Cache, coalescer *cache.Coalescer, book *lookup.Book) *Engine {
	return &Engine{client: client, builder: builder, cache: c, coalescer: coalescer, book: book}
}

// scalarQuery executes sql expecting a single "amount" row/column, through
// the cache and coalescer under tag/params, and returns it as a
// decimal.Decimal for exact summation by the caller.
func (e *Engine) scalarQuery(ctx context.Context, tag string, params map[string]any, sql string) (decimal.Decimal, error) {
	key, err := cache.Key(tag, params)
	if err != nil {
		return decimal.Zero, err
	}

	var cached float64
	if ok, _ := e.cache.Get(key, &cached); ok {
		return decimal.NewFromFloat(cached), nil
	}

	v, err, _ := e.coalescer.Do(ctx, key, func(ctx context.Context) (any, error) {
		subCtx, cancel := context.WithTimeout(ctx, subQueryTimeout)
		defer cancel()
		rows, err := e.client.Query(subCtx, sql, subQueryTimeout)
		if err != nil {
			return nil, err
		}
		amount := 0.0
		if len(rows) > 0 {
			amount = toFloat(rows[0]["amount"])
		}
		if setErr := e.cache.Set(key, amount); setErr != nil {
			return amount, nil
		}
		return amount, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(v.(float64)), nil
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	default:
		return 0
	}
}

// RetainedEarnings computes RE = RE_roll + RE_manual for target month M.
func (e *Engine) RetainedEarnings(ctx context.Context, periodName string, filters models.FilterBundle) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, outerTimeout)
	defer cancel()

	fy, err := models.FiscalYearOf(periodName)
	if err != nil {
		return decimal.Zero, err
	}
	bFilters := sqlbuilder.FromModel(filters)
	root := e.book.ConsolidationRoot()

	rollSQL, err := e.builder.BuildRetainedEarningsRoll(fy, bFilters, root)
	if err != nil {
		return decimal.Zero, err
	}
	manualSQL, err := e.builder.BuildRetainedEarningsManual(fy, bFilters, root)
	if err != nil {
		return decimal.Zero, err
	}

	params := map[string]any{"fiscalYear": fy, "filters": filterKeyParams(filters)}
	roll, err := e.scalarQuery(ctx, "retained_earnings_roll", params, rollSQL)
	if err != nil {
		return decimal.Zero, err
	}
	manual, err := e.scalarQuery(ctx, "retained_earnings_manual", params, manualSQL)
	if err != nil {
		return decimal.Zero, err
	}
	return roll.Add(manual), nil
}

// NetIncome computes NI for target month M.
func (e *Engine) NetIncome(ctx context.Context, periodName string, filters models.FilterBundle) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, outerTimeout)
	defer cancel()

	bFilters := sqlbuilder.FromModel(filters)
	sqlStr, err := e.builder.BuildNetIncome(periodName, bFilters, e.book.ConsolidationRoot())
	if err != nil {
		return decimal.Zero, err
	}
	params := map[string]any{"period": periodName, "filters": filterKeyParams(filters)}
	return e.scalarQuery(ctx, "net_income", params, sqlStr)
}

// CTA computes the plug: (A - L) - E_posted - RE - NI.
func (e *Engine) CTA(ctx context.Context, periodName string, filters models.FilterBundle) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, outerTimeout)
	defer cancel()

	bFilters := sqlbuilder.FromModel(filters)
	root := e.book.ConsolidationRoot()
	params := map[string]any{"period": periodName, "filters": filterKeyParams(filters)}

	assetsSQL, err := e.builder.BuildAssetsCumulative(periodName, bFilters, root)
	if err != nil {
		return decimal.Zero, err
	}
	liabsSQL, err := e.builder.BuildLiabilitiesCumulative(periodName, bFilters, root)
	if err != nil {
		return decimal.Zero, err
	}
	equitySQL, err := e.builder.BuildPostedEquityCumulative(periodName, bFilters, root)
	if err != nil {
		return decimal.Zero, err
	}

	assets, err := e.scalarQuery(ctx, "cta_assets", params, assetsSQL)
	if err != nil {
		return decimal.Zero, err
	}
	liabilities, err := e.scalarQuery(ctx, "cta_liabilities", params, liabsSQL)
	if err != nil {
		return decimal.Zero, err
	}
	posted, err := e.scalarQuery(ctx, "cta_posted_equity", params, equitySQL)
	if err != nil {
		return decimal.Zero, err
	}
	re, err := e.RetainedEarnings(ctx, periodName, filters)
	if err != nil {
		return decimal.Zero, err
	}
	ni, err := e.NetIncome(ctx, periodName, filters)
	if err != nil {
		return decimal.Zero, err
	}

	return assets.Sub(liabilities).Sub(posted).Sub(re).Sub(ni), nil
}

func filterKeyParams(f models.FilterBundle) map[string]any {
	n := f.NormalizedFilterBundle()
	m := map[string]any{"accountingBook": n.AccountingBookID}
	if n.SubsidiaryID != nil {
		m["subsidiary"] = *n.SubsidiaryID
	}
	if n.DepartmentID != nil {
		m["department"] = *n.DepartmentID
	}
	if n.LocationID != nil {
		m["location"] = *n.LocationID
	}
	if n.ClassID != nil {
		m["class"] = *n.ClassID
	}
	return m
}
