// Package normalize implements the ingress-side normalization rules for
// account numbers, period names, and filter-dimension names.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drewjst/ledgergate/internal/domain/models"
)

// Account trims whitespace and forces the value to a string identity. The
// transport layer (JSON) may hand us a number for a purely-numeric account
// number; Go's decoder would have already turned that into a float64 if the
// caller left quotes off, so the http layer is responsible for reading
// account fields as json.Number or string and passing the literal text here.
// Account never re-interprets its input as numeric.
func Account(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("normalize account: empty input")
	}
	return trimmed, nil
}

// Accounts normalizes a slice of raw account strings, preserving order and
// rejecting the whole batch if any entry is invalid.
func Accounts(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		n, err := Account(r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Period normalizes one caller-supplied period representation to "Mon YYYY".
func Period(raw string) (string, error) {
	return models.NormalizePeriodName(raw)
}

// Periods normalizes a slice of raw period representations.
func Periods(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		n, err := Period(r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// DimensionResolver looks up a dimension's id by name, honoring the
// exact -> case-insensitive -> strip-"(Consolidated)" -> parse-as-id
// fallback chain from the lookup bootstrapper's name→id maps.
type DimensionResolver interface {
	ResolveID(name string) (int64, bool)
}

// Dimension resolves a caller-supplied dimension value (an id or a display
// name) to an id using resolver's name table, stripping the consolidated
// suffix and falling back to a raw integer parse. Per spec §4.6, a failure
// here is scoped to this one dimension; it never aborts the whole request.
func Dimension(raw string, resolver DimensionResolver) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("normalize dimension: empty input")
	}

	if id, ok := resolver.ResolveID(trimmed); ok {
		return id, nil
	}

	stripped := strings.TrimSuffix(trimmed, models.ConsolidatedSuffix)
	if stripped != trimmed {
		if id, ok := resolver.ResolveID(stripped); ok {
			return id, nil
		}
	}

	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return id, nil
	}

	return 0, fmt.Errorf("normalize dimension: no match for %q", raw)
}
