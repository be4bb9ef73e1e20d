package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/repository"
	"github.com/iliyamo/hotel-management/internal/service"
)

// ReservationLifecycle performs the status transitions of a reservation.
// *service.Lifecycle implements it.
type ReservationLifecycle interface {
	Cancel(ctx context.Context, id uint64) (model.ReservationStatus, error)
	Checkout(ctx context.Context, id uint64) (model.ReservationStatus, error)
	MarkPaid(ctx context.Context, id uint64) (model.ReservationStatus, error)
}

// ReservationHandler serves reservation creation and listing plus the
// lifecycle operations.  Status never changes here directly: every
// transition goes through Lifecycle.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Rooms        *repository.RoomRepo
	Customers    *repository.CustomerRepo
	Invoices     *repository.InvoiceRepo
	Lifecycle    ReservationLifecycle
}

func NewReservationHandler(reservations *repository.ReservationRepo, rooms *repository.RoomRepo,
	customers *repository.CustomerRepo, invoices *repository.InvoiceRepo, lc ReservationLifecycle) *ReservationHandler {
	if reservations == nil || rooms == nil || customers == nil || invoices == nil || lc == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations, Rooms: rooms, Customers: customers, Invoices: invoices, Lifecycle: lc}
}

const dateLayout = "2006-01-02"

// Amounts are supplied by the caller; pricing happens upstream.
type reservationReq struct {
	CustomerID uint64          `json:"customer_id" validate:"required"`
	RoomID     uint64          `json:"room_id" validate:"required"`
	CheckIn    string          `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string          `json:"check_out" validate:"required,datetime=2006-01-02"`
	Amount     decimal.Decimal `json:"amount"`
	Discount   decimal.Decimal `json:"discount"`
	TVA        decimal.Decimal `json:"tva"`
}

// Create handles POST /v1/reservations.  The room row is locked for the
// duration of the overlap check so two agents cannot book the same nights.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req reservationReq
	if err := bindValid(c, &req); err != nil {
		return nil
	}
	checkIn, _ := time.ParseInLocation(dateLayout, req.CheckIn, time.UTC)
	checkOut, _ := time.ParseInLocation(dateLayout, req.CheckOut, time.UTC)
	if !checkOut.After(checkIn) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be after check_in"})
	}
	if req.Amount.IsNegative() || req.Discount.IsNegative() || req.TVA.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amounts must not be negative"})
	}
	if req.Discount.GreaterThan(req.Amount) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "discount exceeds amount"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Customers.GetByID(ctx, req.CustomerID); err != nil {
		return dbError(c, err, "customer")
	}

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return dbError(c, err, "reservation")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	room, err := h.Rooms.GetByIDTx(ctx, tx, req.RoomID)
	if err != nil {
		return dbError(c, err, "room")
	}
	if !room.Available {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is out of service"})
	}
	overlap, err := h.Reservations.HasOverlapTx(ctx, tx, room.ID, checkIn, checkOut)
	if err != nil {
		return dbError(c, err, "reservation")
	}
	if overlap {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room already booked for these dates"})
	}

	res := model.Reservation{
		CustomerID: req.CustomerID,
		RoomID:     room.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Amount:     req.Amount,
		Discount:   req.Discount,
		TVA:        req.TVA,
	}
	if err := h.Reservations.CreateTx(ctx, tx, &res); err != nil {
		return dbError(c, err, "reservation")
	}
	if err := tx.Commit(); err != nil {
		return dbError(c, err, "reservation")
	}
	committed = true
	zerolog.Ctx(ctx).Info().Uint64("reservation_id", res.ID).Uint64("room_id", res.RoomID).Msg("reservation created")
	return c.JSON(http.StatusCreated, res)
}

// List handles GET /v1/reservations?status=&customer_id=&room_id=.
func (h *ReservationHandler) List(c echo.Context) error {
	var f repository.ReservationFilter
	if s := c.QueryParam("status"); s != "" {
		st, err := model.ParseReservationStatus(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		f.Status = st
	}
	if err := echo.QueryParamsBinder(c).
		Uint64("customer_id", &f.CustomerID).
		Uint64("room_id", &f.RoomID).
		BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid filter"})
	}
	f.Page = pageFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	list, err := h.Reservations.List(ctx, f)
	if err != nil {
		return dbError(c, err, "reservation")
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "reservation")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return dbError(c, err, "reservation")
	}
	return c.JSON(http.StatusOK, res)
}

// Invoice handles GET /v1/reservations/:id/invoice.
func (h *ReservationHandler) Invoice(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "reservation")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	inv, err := h.Invoices.GetByReservation(ctx, id)
	if err != nil {
		return dbError(c, err, "invoice")
	}
	return c.JSON(http.StatusOK, inv)
}

// Cancel handles POST /v1/reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.Lifecycle.Cancel)
}

// Checkout handles POST /v1/reservations/:id/checkout.
func (h *ReservationHandler) Checkout(c echo.Context) error {
	return h.transition(c, h.Lifecycle.Checkout)
}

// MarkPaid handles POST /v1/root/reservations/:id/pay, the manual
// counterpart of the payment.confirmed queue.
func (h *ReservationHandler) MarkPaid(c echo.Context) error {
	return h.transition(c, h.Lifecycle.MarkPaid)
}

type transitionResp struct {
	ID     uint64                  `json:"id"`
	Status model.ReservationStatus `json:"status"`
}

func (h *ReservationHandler) transition(c echo.Context, op func(context.Context, uint64) (model.ReservationStatus, error)) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "reservation")
	}
	// The request context is passed as is: a client disconnect aborts the
	// transaction, and the engine rolls back.
	st, err := op(c.Request().Context(), id)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, transitionResp{ID: id, Status: st})
}

// lifecycleError maps the engine's error taxonomy to HTTP.  Only the
// error Message reaches the client; internal causes are logged.
func lifecycleError(c echo.Context, err error) error {
	le, ok := service.AsLifecycleError(err)
	if !ok {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("unexpected lifecycle error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	switch le.Kind {
	case service.KindNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": le.Message})
	case service.KindInvalidTransition:
		return c.JSON(http.StatusConflict, echo.Map{"error": le.Message, "reason": le.Reason})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": le.Message})
}
