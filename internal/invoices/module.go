// Package invoices provides invoice lookup and settlement.
package invoices

import (
	apphttp "petcare_backend/internal/http"
	"petcare_backend/internal/invoices/handler"
	"petcare_backend/internal/invoices/repository"
	"petcare_backend/platform/httpkit"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the invoices domain module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule creates a new invoices module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := repository.New(pool)
	return &Module{handler: handler.New(repo), repo: repo}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "invoices"
}

// Repository returns the repository for cross-module use. It satisfies
// the quotes service's InvoiceStore port.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	invoices := ctx.Protected.Group("/invoices")
	invoices.Use(httpkit.StaffOnly())
	m.handler.RegisterInvoiceRoutes(invoices)

	quotes := ctx.Protected.Group("/quotes")
	quotes.Use(httpkit.StaffOnly())
	m.handler.RegisterQuoteRoutes(quotes)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
