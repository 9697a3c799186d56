package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter builds the gateway's chi.Mux: the global middleware stack plus
// every route in spec §6's external interface table. Unlike the teacher's
// router, no per-IP RateLimit middleware is wired in — see middleware.go's
// comment on that omission.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS())
	r.Use(SecurityHeaders)

	r.Get("/health", h.Health)
	r.Get("/test", h.Ping)

	r.Get("/lookups/all", h.LookupsAll)
	r.Get("/lookups/accountingbooks", h.AccountingBooks)

	r.Get("/account/{num}/name", h.AccountName)
	r.Post("/account/name", h.AccountName)
	r.Get("/account/{num}/type", h.AccountType)
	r.Post("/account/type", h.AccountType)
	r.Get("/account/{num}/parent", h.AccountParent)
	r.Post("/account/parent", h.AccountParent)
	r.Get("/accounts/search", h.AccountSearch)

	r.Get("/balance", h.BalanceSingle)
	r.Get("/budget", h.BudgetSingle)

	r.Post("/batch/balance", h.BatchBalance)
	r.Post("/batch/account_types", h.BatchAccountTypes)
	r.Post("/batch/full_year_refresh", h.FullYearRefresh)
	r.Post("/batch/bs_periods", h.BSPeriods)

	r.Post("/retained-earnings", h.RetainedEarnings)
	r.Post("/net-income", h.NetIncome)
	r.Post("/cta", h.CTA)

	r.Get("/transactions", h.Transactions)

	return r
}
