package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/drewjst/ledgergate/internal/erp"
)

func TestWriteErpError_MapsKindToStatusAndCode(t *testing.T) {
	tests := []struct {
		kind       erp.Kind
		wantStatus int
		wantCode   ErrCode
	}{
		{erp.KindValidation, http.StatusBadRequest, ErrCodeValidation},
		{erp.KindAuth, http.StatusBadGateway, ErrCodeAuth},
		{erp.KindRateLimit, http.StatusTooManyRequests, ErrCodeRateLimited},
		{erp.KindTimeout, http.StatusGatewayTimeout, ErrCodeTimeout},
		{erp.KindNotFound, http.StatusNotFound, ErrCodeNotFound},
		{erp.KindBackend, http.StatusBadGateway, ErrCodeBackend},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			w := httptest.NewRecorder()
			writeErpError(w, &erp.Error{Kind: tt.kind, Message: "boom"})

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body errorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.wantCode {
				t.Errorf("error code = %q, want %q", body.Error, tt.wantCode)
			}
		})
	}
}

func TestWriteErpError_RateLimitedSetsRetryAfter(t *testing.T) {
	w := httptest.NewRecorder()
	writeErpError(w, &erp.Error{Kind: erp.KindRateLimit, Message: "slow down"})

	if got := w.Header().Get("Retry-After"); got == "" {
		t.Error("expected a Retry-After header on a rate-limited response")
	}
}

func TestWriteErpError_UnclassifiedErrorMapsToBackend(t *testing.T) {
	w := httptest.NewRecorder()
	writeErpError(w, errNotAnErpError{})

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != ErrCodeBackend {
		t.Errorf("error code = %q, want %q", body.Error, ErrCodeBackend)
	}
}

type errNotAnErpError struct{}

func (errNotAnErpError) Error() string { return "opaque failure" }
