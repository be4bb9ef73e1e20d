package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/repository"
)

// CustomerHandler serves the agent-only customer records.
type CustomerHandler struct {
	Customers    *repository.CustomerRepo
	Reservations *repository.ReservationRepo
}

func NewCustomerHandler(customers *repository.CustomerRepo, reservations *repository.ReservationRepo) *CustomerHandler {
	if customers == nil || reservations == nil {
		panic("nil repository passed to NewCustomerHandler")
	}
	return &CustomerHandler{Customers: customers, Reservations: reservations}
}

type customerReq struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=190"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Address   string `json:"address" validate:"omitempty,max=255"`
}

func (r customerReq) model() model.Customer {
	return model.Customer{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, Phone: r.Phone, Address: r.Address}
}

// Create handles POST /v1/customers.
func (h *CustomerHandler) Create(c echo.Context) error {
	var req customerReq
	if err := bindValid(c, &req); err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cu := req.model()
	if err := h.Customers.Create(ctx, &cu); err != nil {
		return dbError(c, err, "customer")
	}
	return c.JSON(http.StatusCreated, cu)
}

// List handles GET /v1/customers?q=&limit=&offset=.
func (h *CustomerHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	list, err := h.Customers.List(ctx, c.QueryParam("q"), pageFrom(c))
	if err != nil {
		return dbError(c, err, "customer")
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/customers/:id.
func (h *CustomerHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "customer")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	cu, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return dbError(c, err, "customer")
	}
	return c.JSON(http.StatusOK, cu)
}

// Update handles PUT /v1/customers/:id.
func (h *CustomerHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "customer")
	}
	var req customerReq
	if err := bindValid(c, &req); err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cu := req.model()
	cu.ID = id
	if err := h.Customers.Update(ctx, &cu); err != nil {
		return dbError(c, err, "customer")
	}
	updated, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return dbError(c, err, "customer")
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/customers/:id.  Customers with reservations
// are kept (409).
func (h *CustomerHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "customer")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Customers.Delete(ctx, id); err != nil {
		return dbError(c, err, "customer")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListReservations handles GET /v1/customers/:id/reservations.
func (h *CustomerHandler) ListReservations(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "customer")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if _, err := h.Customers.GetByID(ctx, id); err != nil {
		return dbError(c, err, "customer")
	}
	list, err := h.Reservations.ListByCustomer(ctx, id, pageFrom(c))
	if err != nil {
		return dbError(c, err, "reservation")
	}
	return c.JSON(http.StatusOK, list)
}
