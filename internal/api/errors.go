package api

import (
	"encoding/json"
	"net/http"

	"github.com/drewjst/ledgergate/internal/erp"
)

// ErrCode values name the machine-readable error codes the JSON error body
// carries, mirroring the teacher's ErrCode* constant convention.
type ErrCode string

const (
	ErrCodeValidation  ErrCode = "VALIDATION"
	ErrCodeAuth        ErrCode = "AUTH"
	ErrCodeRateLimited ErrCode = "RATE_LIMITED"
	ErrCodeTimeout     ErrCode = "TIMEOUT"
	ErrCodeBackend     ErrCode = "BACKEND"
	ErrCodeNotFound    ErrCode = "NOT_FOUND"
	ErrCodeInternal    ErrCode = "INTERNAL"
)

// errorBody is the compact JSON error shape spec §7 fixes: {error, detail}.
type errorBody struct {
	Error  ErrCode `json:"error"`
	Detail string  `json:"detail"`
}

// writeJSON marshals v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the compact {error, detail} body for a known ErrCode.
func writeError(w http.ResponseWriter, status int, code ErrCode, detail string) {
	writeJSON(w, status, errorBody{Error: code, Detail: detail})
}

// writeErpError classifies err via erp.KindOf and writes the HTTP status and
// error code §7's table fixes for each erp.Kind. RATE_LIMITED additionally
// carries a short Retry-After.
func writeErpError(w http.ResponseWriter, err error) {
	kind := erp.KindOf(err)
	switch kind {
	case erp.KindValidation:
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case erp.KindAuth:
		writeError(w, http.StatusBadGateway, ErrCodeAuth, err.Error())
	case erp.KindRateLimit:
		w.Header().Set("Retry-After", "5")
		writeError(w, http.StatusTooManyRequests, ErrCodeRateLimited, err.Error())
	case erp.KindTimeout:
		writeError(w, http.StatusGatewayTimeout, ErrCodeTimeout, err.Error())
	case erp.KindNotFound:
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	default:
		writeError(w, http.StatusBadGateway, ErrCodeBackend, err.Error())
	}
}
