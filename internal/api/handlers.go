package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/drewjst/ledgergate/internal/cache"
	"github.com/drewjst/ledgergate/internal/coordinator"
	"github.com/drewjst/ledgergate/internal/domain/models"
	"github.com/drewjst/ledgergate/internal/equity"
	"github.com/drewjst/ledgergate/internal/erp"
	"github.com/drewjst/ledgergate/internal/lookup"
	"github.com/drewjst/ledgergate/internal/normalize"
	"github.com/drewjst/ledgergate/internal/sqlbuilder"
)

// defaultQueryTimeout bounds the single-round-trip handlers (name/type/
// parent/search/transactions) that don't go through the coordinator's
// fan-out.
const defaultQueryTimeout = 60 * time.Second

// Handler wires every HTTP operation in spec §6 to the coordinator, the
// derived-equity engine, and the lookup bootstrapper.
type Handler struct {
	coordinator *coordinator.Coordinator
	equity      *equity.Engine
	client      *erp.Client
	builder     *sqlbuilder.Builder
	book        *lookup.Book
	cache       *cache.Cache
	coalescer   *cache.Coalescer
	accountID   string
}

// NewHandler constructs a Handler from the gateway's wired dependencies.
func NewHandler(c *coordinator.Coordinator, e *equity.Engine, client *erp.Client, builder *sqlbuilder.Builder, book *lookup.Book, ca *cache.Cache, co *cache.Coalescer, accountID string) *Handler {
	return &Handler{coordinator: c, equity: e, client: client, builder: builder, book: book, cache: ca, coalescer: co, accountID: accountID}
}

// cachedScalar executes sql under tag/params through the cache and
// coalescer, expecting a single "amount" column.
func (h *Handler) cachedScalar(ctx context.Context, tag string, params map[string]any, sql string) (float64, error) {
	key, err := cache.Key(tag, params)
	if err != nil {
		return 0, err
	}
	var cached float64
	if ok, _ := h.cache.Get(key, &cached); ok {
		return cached, nil
	}
	v, err, _ := h.coalescer.Do(ctx, key, func(ctx context.Context) (any, error) {
		rows, err := h.client.Query(ctx, sql, defaultQueryTimeout)
		if err != nil {
			return nil, err
		}
		amount := 0.0
		if len(rows) > 0 {
			amount = toAmountFloat(rows[0]["amount"])
		}
		_ = h.cache.Set(key, amount)
		return amount, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func toAmountFloat(v any) float64 {
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

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"account_id":        h.accountID,
		"subsidiary_count":  len(h.book.Subsidiaries()),
	})
}

// Ping handles GET /test: a live round trip to the ERP to confirm
// credentials and connectivity.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	sql := h.builder.BuildActiveSubsidiaryCount()
	rows, err := h.client.Query(r.Context(), sql, defaultQueryTimeout)
	if err != nil {
		writeErpError(w, err)
		return
	}
	active := 0
	if len(rows) > 0 {
		active = int(toAmountFloat(rows[0]["active_sub_count"]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account":          h.accountID,
		"active_accounts":  active,
		"message":          "connected",
	})
}

// LookupsAll handles GET /lookups/all.
func (h *Handler) LookupsAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.book.AllLookups())
}

// AccountingBooks handles GET /lookups/accountingbooks.
func (h *Handler) AccountingBooks(w http.ResponseWriter, r *http.Request) {
	books := h.book.AccountingBooks()
	out := make([]models.Dimension, 0, len(books))
	for name, id := range books {
		out = append(out, models.Dimension{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

// accountFromRequest reads the account number from a URL path parameter
// (GET form) or a JSON body field "account" (POST form).
func accountFromRequest(r *http.Request) (string, error) {
	if num := chi.URLParam(r, "num"); num != "" {
		return normalize.Account(num)
	}
	var body struct {
		Account string `json:"account"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	return normalize.Account(body.Account)
}

// AccountName handles GET /account/{num}/name and POST /account/name.
func (h *Handler) AccountName(w http.ResponseWriter, r *http.Request) {
	account, err := accountFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	if cached, ok := h.book.AccountByNumber(account); ok && cached.Name != "" {
		writeJSON(w, http.StatusOK, cached.Name)
		return
	}
	sql, err := h.builder.BuildAccountName(account)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	rows, err := h.client.Query(r.Context(), sql, defaultQueryTimeout)
	if err != nil {
		writeErpError(w, err)
		return
	}
	if len(rows) == 0 {
		writeJSON(w, http.StatusNotFound, "")
		return
	}
	name, _ := rows[0]["account_name"].(string)
	writeJSON(w, http.StatusOK, name)
}

// AccountType handles GET /account/{num}/type and POST /account/type.
func (h *Handler) AccountType(w http.ResponseWriter, r *http.Request) {
	account, err := accountFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	if cached, ok := h.book.AccountByNumber(account); ok && cached.Type != "" {
		writeJSON(w, http.StatusOK, string(cached.Type))
		return
	}
	sql, err := h.builder.BuildAccountType(account)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	rows, err := h.client.Query(r.Context(), sql, defaultQueryTimeout)
	if err != nil {
		writeErpError(w, err)
		return
	}
	if len(rows) == 0 {
		writeJSON(w, http.StatusNotFound, "")
		return
	}
	typ, _ := rows[0]["account_type"].(string)
	writeJSON(w, http.StatusOK, typ)
}

// AccountParent handles GET /account/{num}/parent and POST /account/parent.
func (h *Handler) AccountParent(w http.ResponseWriter, r *http.Request) {
	account, err := accountFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	sql, err := h.builder.BuildAccountParent(account)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	rows, err := h.client.Query(r.Context(), sql, defaultQueryTimeout)
	if err != nil {
		writeErpError(w, err)
		return
	}
	if len(rows) == 0 {
		writeJSON(w, http.StatusOK, "")
		return
	}
	parent, _ := rows[0]["parent_number"].(string)
	writeJSON(w, http.StatusOK, parent)
}

// AccountSearch handles GET /accounts/search?pattern=&active_only=.
func (h *Handler) AccountSearch(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	activeOnly := r.URL.Query().Get("active_only") != "false"

	sql, err := h.builder.BuildAccountSearch(pattern, activeOnly)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	rows, err := h.client.Query(r.Context(), sql, defaultQueryTimeout)
	if err != nil {
		writeErpError(w, err)
		return
	}

	type accountHit struct {
		ID            int64  `json:"id"`
		AccountNumber string `json:"accountnumber"`
		AccountName   string `json:"accountname"`
		AccountType   string `json:"accttype"`
	}
	accounts := make([]accountHit, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, accountHit{
			ID:            int64(toAmountFloat(row["id"])),
			AccountNumber: asString(row["accountnumber"]),
			AccountName:   asString(row["accountname"]),
			AccountType:   asString(row["accttype"]),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pattern":  pattern,
		"count":    len(accounts),
		"accounts": accounts,
	})
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// filtersFromQuery reads the shared filter bundle fields from URL query
// parameters.
func filtersFromQuery(q map[string][]string) (subsidiary, department, location, class, accountingBook string) {
	first := func(key string) string {
		if vs, ok := q[key]; ok && len(vs) > 0 {
			return vs[0]
		}
		return ""
	}
	return first("subsidiary"), first("department"), first("location"), first("class"), first("accountingBook")
}

// BalanceSingle handles GET /balance.
func (h *Handler) BalanceSingle(w http.ResponseWriter, r *http.Request) {
	h.singleNumber(w, r, false)
}

// BudgetSingle handles GET /budget.
func (h *Handler) BudgetSingle(w http.ResponseWriter, r *http.Request) {
	h.singleNumber(w, r, true)
}

func (h *Handler) singleNumber(w http.ResponseWriter, r *http.Request, budget bool) {
	q := r.URL.Query()
	account, err := normalize.Account(q.Get("account"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	fromPeriod, err := normalize.Period(q.Get("from_period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	toPeriod, err := normalize.Period(q.Get("to_period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	sub, dept, loc, class, book := filtersFromQuery(q)
	filters := h.resolveFilters(sub, dept, loc, class, book)
	bFilters := sqlbuilder.FromModel(filters)

	var sql, tag string
	if budget {
		sql, err = h.builder.BuildBudgetSingle(account, fromPeriod, toPeriod, bFilters)
		tag = "budget"
	} else {
		isBS := h.isBalanceSheetAccount(r, account)
		sql, err = h.builder.BuildBalanceSingle(account, fromPeriod, toPeriod, bFilters, h.book.ConsolidationRoot(), isBS)
		tag = "balance"
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	params := map[string]any{
		"account": account, "from": fromPeriod, "to": toPeriod,
		"accountingBook": bFilters.AccountingBookID,
		"filters":        filters,
	}
	amount, err := h.cachedScalar(r.Context(), tag, params, sql)
	if err != nil {
		writeErpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, amount)
}

// isBalanceSheetAccount consults the lookup bootstrapper's primed cache for
// account's type; an unresolved account is treated as P&L (the range-sum
// path), matching the bootstrapper's own lazy-resolution default.
func (h *Handler) isBalanceSheetAccount(r *http.Request, account string) bool {
	if a, ok := h.book.AccountByNumber(account); ok {
		return a.Type.IsBalanceSheet()
	}
	sql, err := h.builder.BuildAccountTypeResolution([]string{account})
	if err != nil {
		return false
	}
	rows, err := h.client.Query(r.Context(), sql, defaultQueryTimeout)
	if err != nil || len(rows) == 0 {
		return false
	}
	typ, _ := rows[0]["account_type"].(string)
	num, _ := rows[0]["account_number"].(string)
	name, _ := rows[0]["account_name"].(string)
	h.book.PutAccount(models.Account{Number: num, Type: models.AccountType(typ), Name: name})
	return models.AccountType(typ).IsBalanceSheet()
}

// resolveFilters normalizes the shared filter bundle from its raw string
// form the same way the coordinator does.
func (h *Handler) resolveFilters(subsidiary, department, location, class, accountingBook string) models.FilterBundle {
	req := coordinator.Request{
		Subsidiary: subsidiary, Department: department, Location: location,
		Class: class, AccountingBook: accountingBook,
	}
	return h.coordinator.ResolveFilters(req)
}

// batchBalanceRequest is the union of the two accepted /batch/balance
// shapes: an explicit per-cell request list, or an accounts×periods grid.
type batchBalanceRequest struct {
	Requests []struct {
		Account     string         `json:"account"`
		FromPeriod  string         `json:"fromPeriod"`
		ToPeriod    string         `json:"toPeriod"`
		Filters     filtersPayload `json:"filters"`
	} `json:"requests"`
	Accounts []string       `json:"accounts"`
	Periods  []string       `json:"periods"`
	Filters  filtersPayload `json:"filters"`
	Refresh  bool           `json:"refresh"`
}

type filtersPayload struct {
	Subsidiary     string `json:"subsidiary"`
	Department     string `json:"department"`
	Location       string `json:"location"`
	Class          string `json:"class"`
	AccountingBook string `json:"accountingBook"`
}

// BatchBalance handles POST /batch/balance.
func (h *Handler) BatchBalance(w http.ResponseWriter, r *http.Request) {
	var body batchBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "malformed request body")
		return
	}

	accounts := body.Accounts
	periods := body.Periods
	if len(body.Requests) > 0 {
		accountSet := map[string]bool{}
		periodSet := map[string]bool{}
		for _, req := range body.Requests {
			accountSet[req.Account] = true
			periodSet[req.FromPeriod] = true
			periodSet[req.ToPeriod] = true
		}
		accounts = toSlice(accountSet)
		periods = toSlice(periodSet)
	}

	result, err := h.coordinator.FetchBalances(r.Context(), coordinator.Request{
		Accounts: accounts, Periods: periods,
		Subsidiary: body.Filters.Subsidiary, Department: body.Filters.Department,
		Location: body.Filters.Location, Class: body.Filters.Class,
		AccountingBook: body.Filters.AccountingBook, Refresh: body.Refresh,
	})
	if err != nil {
		writeErpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": result})
}

func toSlice(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// BatchAccountTypes handles POST /batch/account_types.
func (h *Handler) BatchAccountTypes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Accounts []string `json:"accounts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "malformed request body")
		return
	}
	accounts, err := normalize.Accounts(body.Accounts)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	out := map[string]string{}
	var unknown []string
	for _, num := range accounts {
		if a, ok := h.book.AccountByNumber(num); ok {
			out[num] = string(a.Type)
			continue
		}
		unknown = append(unknown, num)
	}
	if len(unknown) > 0 {
		sql, err := h.builder.BuildAccountTypeResolution(unknown)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		rows, err := h.client.Query(r.Context(), sql, defaultQueryTimeout)
		if err != nil {
			writeErpError(w, err)
			return
		}
		for _, row := range rows {
			num, _ := row["account_number"].(string)
			typ, _ := row["account_type"].(string)
			name, _ := row["account_name"].(string)
			h.book.PutAccount(models.Account{Number: num, Type: models.AccountType(typ), Name: name})
			out[num] = typ
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// FullYearRefresh handles POST /batch/full_year_refresh.
func (h *Handler) FullYearRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Year    int            `json:"year"`
		SkipBS  bool           `json:"skip_bs"`
		Filters filtersPayload `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "malformed request body")
		return
	}
	if body.Year == 0 {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "year is required")
		return
	}

	periods := yearPeriods(body.Year)
	result, err := h.coordinator.FetchBalances(r.Context(), coordinator.Request{
		Accounts: h.allAccountNumbers(), Periods: periods,
		Subsidiary: body.Filters.Subsidiary, Department: body.Filters.Department,
		Location: body.Filters.Location, Class: body.Filters.Class,
		AccountingBook: body.Filters.AccountingBook, Refresh: true,
	})
	if err != nil {
		writeErpError(w, err)
		return
	}

	accountTypes := map[string]string{}
	for num := range result {
		if a, ok := h.book.AccountByNumber(num); ok {
			accountTypes[num] = string(a.Type)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": result, "account_types": accountTypes})
}

// allAccountNumbers lists every account in the lookup book's title cache,
// which the full-year refresh uses as its whole account set.
func (h *Handler) allAccountNumbers() []string {
	return h.book.AllAccountNumbers()
}

func yearPeriods(year int) []string {
	out := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		out = append(out, models.FormatPeriodName(year, m))
	}
	return out
}

// BSPeriods handles POST /batch/bs_periods.
func (h *Handler) BSPeriods(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Periods []string       `json:"periods"`
		Filters filtersPayload `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "malformed request body")
		return
	}
	result, err := h.coordinator.FetchBalances(r.Context(), coordinator.Request{
		Accounts: h.balanceSheetAccountNumbers(), Periods: body.Periods,
		Subsidiary: body.Filters.Subsidiary, Department: body.Filters.Department,
		Location: body.Filters.Location, Class: body.Filters.Class,
		AccountingBook: body.Filters.AccountingBook,
	})
	if err != nil {
		writeErpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": result})
}

func (h *Handler) balanceSheetAccountNumbers() []string {
	var out []string
	for _, num := range h.book.AllAccountNumbers() {
		if a, ok := h.book.AccountByNumber(num); ok && a.Type.IsBalanceSheet() {
			out = append(out, num)
		}
	}
	return out
}

// equityRequest is the shared body shape for /retained-earnings, /net-income.
type equityRequest struct {
	Period     string         `json:"period"`
	Subsidiary string         `json:"subsidiary"`
	Filters    filtersPayload `json:"filters"`
}

// RetainedEarnings handles POST /retained-earnings.
func (h *Handler) RetainedEarnings(w http.ResponseWriter, r *http.Request) {
	var body equityRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "malformed request body")
		return
	}
	period, err := normalize.Period(body.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	filters := h.resolveFilters(body.Filters.Subsidiary, body.Filters.Department, body.Filters.Location, body.Filters.Class, body.Filters.AccountingBook)
	amount, err := h.equity.RetainedEarnings(r.Context(), period, filters)
	if err != nil {
		writeErpError(w, err)
		return
	}
	f, _ := amount.Float64()
	writeJSON(w, http.StatusOK, f)
}

// NetIncome handles POST /net-income.
func (h *Handler) NetIncome(w http.ResponseWriter, r *http.Request) {
	var body equityRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "malformed request body")
		return
	}
	period, err := normalize.Period(body.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	filters := h.resolveFilters(body.Filters.Subsidiary, body.Filters.Department, body.Filters.Location, body.Filters.Class, body.Filters.AccountingBook)
	amount, err := h.equity.NetIncome(r.Context(), period, filters)
	if err != nil {
		writeErpError(w, err)
		return
	}
	f, _ := amount.Float64()
	writeJSON(w, http.StatusOK, f)
}

// CTA handles POST /cta.
func (h *Handler) CTA(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Period         string `json:"period"`
		Subsidiary     string `json:"subsidiary"`
		AccountingBook string `json:"accountingBook"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "malformed request body")
		return
	}
	period, err := normalize.Period(body.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	filters := h.resolveFilters(body.Subsidiary, "", "", "", body.AccountingBook)
	amount, err := h.equity.CTA(r.Context(), period, filters)
	if err != nil {
		writeErpError(w, err)
		return
	}
	f, _ := amount.Float64()
	writeJSON(w, http.StatusOK, f)
}

// Transactions handles GET /transactions.
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	account, err := normalize.Account(q.Get("account"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	period, err := normalize.Period(q.Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	sub, dept, loc, class, book := filtersFromQuery(q)
	filters := h.resolveFilters(sub, dept, loc, class, book)

	sql, err := h.builder.BuildTransactionsDrillDown(account, period, sqlbuilder.FromModel(filters))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	rows, err := h.client.Query(r.Context(), sql, defaultQueryTimeout)
	if err != nil {
		writeErpError(w, err)
		return
	}

	type txn struct {
		TransactionDate   string  `json:"transaction_date"`
		TransactionType   string  `json:"transaction_type"`
		TransactionNumber string  `json:"transaction_number"`
		EntityName        string  `json:"entity_name"`
		Memo              string  `json:"memo"`
		Debit             float64 `json:"debit"`
		Credit            float64 `json:"credit"`
		NetAmount         float64 `json:"net_amount"`
		NetSuiteURL       string  `json:"netsuite_url"`
	}
	out := make([]txn, 0, len(rows))
	for _, row := range rows {
		out = append(out, txn{
			TransactionDate:   asString(row["transaction_date"]),
			TransactionType:   asString(row["transaction_type"]),
			TransactionNumber: asString(row["transaction_number"]),
			EntityName:        asString(row["entity_name"]),
			Memo:              asString(row["memo"]),
			Debit:             toAmountFloat(row["debit"]),
			Credit:            toAmountFloat(row["credit"]),
			NetAmount:         toAmountFloat(row["net_amount"]),
			NetSuiteURL:       h.netSuiteTransactionURL(row["internal_id"]),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

// netSuiteTransactionURL builds the UI deep-link for one transaction's
// internal id, following NetSuite's standard account-scoped domain
// convention. Returns "" when the row carries no internal id.
func (h *Handler) netSuiteTransactionURL(internalID any) string {
	id := asString(internalID)
	if id == "" || h.accountID == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.app.netsuite.com/app/accounting/transactions/transaction.nl?id=%s", h.accountID, id)
}

