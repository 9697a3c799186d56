package erp

import (
	"fmt"
	"testing"
)

func TestKindOf_DirectError(t *testing.T) {
	err := newError(KindRateLimit, "too many requests", "")
	if got := KindOf(err); got != KindRateLimit {
		t.Errorf("KindOf = %q, want %q", got, KindRateLimit)
	}
}

func TestKindOf_UnwrapsWrappedError(t *testing.T) {
	inner := newError(KindAuth, "bad signature", "")
	wrapped := fmt.Errorf("round trip failed: %w", inner)
	if got := KindOf(wrapped); got != KindAuth {
		t.Errorf("KindOf(wrapped) = %q, want %q", got, KindAuth)
	}
}

func TestKindOf_DefaultsToBackendForUnclassifiedError(t *testing.T) {
	if got := KindOf(fmt.Errorf("some opaque failure")); got != KindBackend {
		t.Errorf("KindOf(opaque) = %q, want %q", got, KindBackend)
	}
}

func TestError_MessageIncludesDetailWhenPresent(t *testing.T) {
	withDetail := newError(KindBackend, "query failed", "column does not exist")
	if got := withDetail.Error(); got != "BACKEND: query failed (column does not exist)" {
		t.Errorf("Error() = %q", got)
	}

	withoutDetail := newError(KindBackend, "query failed", "")
	if got := withoutDetail.Error(); got != "BACKEND: query failed" {
		t.Errorf("Error() = %q", got)
	}
}
