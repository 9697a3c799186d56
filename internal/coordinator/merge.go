package coordinator

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/drewjst/ledgergate/internal/domain/models"
	"github.com/drewjst/ledgergate/internal/erp"
)

// resultMutex serializes concurrent writes from the coordinator's fanned-out
// goroutines into one shared BalanceResult. Combining is commutative (spec
// §4.3), so plain mutual exclusion — not a merge algorithm — is all that's
// required.
type resultMutex struct {
	mu     sync.Mutex
	result models.BalanceResult
}

// accountSet turns a slice into a membership set for O(1) filtering.
func accountSet(accounts []string) map[string]bool {
	m := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		m[a] = true
	}
	return m
}

// mergeRows writes rows — which cover every account of the queried type,
// not just the ones this caller asked about — into the shared result,
// restricted to wanted and keyed by the "bal_YYYY_MM" pivot column for each
// of periods.
func (m *resultMutex) mergeRows(rows []erp.Row, wanted []string, periods []string) {
	want := accountSet(wanted)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range rows {
		number, _ := row["account_number"].(string)
		if !want[number] {
			continue
		}
		for _, p := range periods {
			col, err := models.EndDateOf(p)
			if err != nil {
				continue
			}
			colName := pivotColumnName(col.Year(), int(col.Month()))
			raw, ok := row[colName]
			if !ok {
				continue
			}
			amount := toFloat(raw)
			m.result.Set(number, p, amount)
		}
	}
}

func pivotColumnName(year, month int) string {
	return fmt.Sprintf("bal_%04d_%02d", year, month)
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}
