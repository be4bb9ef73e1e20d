package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/repository"
)

// InvoiceHandler exposes invoices read-only.  Invoices are created and
// removed exclusively by reservation transitions.
type InvoiceHandler struct {
	Invoices *repository.InvoiceRepo
}

func NewInvoiceHandler(invoices *repository.InvoiceRepo) *InvoiceHandler {
	if invoices == nil {
		panic("nil repository passed to NewInvoiceHandler")
	}
	return &InvoiceHandler{Invoices: invoices}
}

// List handles GET /v1/invoices.
func (h *InvoiceHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	list, err := h.Invoices.List(ctx, pageFrom(c))
	if err != nil {
		return dbError(c, err, "invoice")
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/invoices/:id.
func (h *InvoiceHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "invoice")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	inv, err := h.Invoices.GetByID(ctx, id)
	if err != nil {
		return dbError(c, err, "invoice")
	}
	return c.JSON(http.StatusOK, inv)
}
