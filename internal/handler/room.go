package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-management/internal/middleware"
	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/repository"
)

// RoomHandler serves the room inventory.  Reads are public and cached;
// writes are agent-only and invalidate the cache.
type RoomHandler struct {
	Rooms *repository.RoomRepo
	Cache CacheInvalidator
}

func NewRoomHandler(rooms *repository.RoomRepo, cache CacheInvalidator) *RoomHandler {
	if rooms == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Cache: orNop(cache)}
}

type roomReq struct {
	Number      string          `json:"number" validate:"required,max=16"`
	Type        string          `json:"type" validate:"required,oneof=single double suite"`
	Capacity    int             `json:"capacity" validate:"required,gte=1,lte=12"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description" validate:"omitempty,max=1000"`
	Available   *bool           `json:"available"`
}

func (r roomReq) model() model.Room {
	avail := true
	if r.Available != nil {
		avail = *r.Available
	}
	return model.Room{Number: r.Number, Type: r.Type, Capacity: r.Capacity, Price: r.Price,
		Description: r.Description, Available: avail}
}

// List handles GET /v1/rooms.  Out-of-service rooms are hidden unless
// ?all=true is given.
func (h *RoomHandler) List(c echo.Context) error {
	all, _ := strconv.ParseBool(c.QueryParam("all"))
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	list, err := h.Rooms.List(ctx, !all, pageFrom(c))
	if err != nil {
		return dbError(c, err, "room")
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "room")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	rm, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return dbError(c, err, "room")
	}
	return c.JSON(http.StatusOK, rm)
}

// Create handles POST /v1/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := bindValid(c, &req); err != nil {
		return nil
	}
	if !req.Price.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be positive"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rm := req.model()
	if err := h.Rooms.Create(ctx, &rm); err != nil {
		return dbError(c, err, "room")
	}
	h.Cache.Invalidate(ctx, middleware.CacheRooms)
	return c.JSON(http.StatusCreated, rm)
}

// Update handles PUT /v1/rooms/:id.
func (h *RoomHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "room")
	}
	var req roomReq
	if err := bindValid(c, &req); err != nil {
		return nil
	}
	if !req.Price.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be positive"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rm := req.model()
	rm.ID = id
	if err := h.Rooms.Update(ctx, &rm); err != nil {
		return dbError(c, err, "room")
	}
	h.Cache.Invalidate(ctx, middleware.CacheRooms)
	updated, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return dbError(c, err, "room")
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/rooms/:id.  Rooms with reservation history
// cannot be deleted (409); mark them unavailable instead.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "room")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Rooms.Delete(ctx, id); err != nil {
		return dbError(c, err, "room")
	}
	h.Cache.Invalidate(ctx, middleware.CacheRooms)
	return c.NoContent(http.StatusNoContent)
}
