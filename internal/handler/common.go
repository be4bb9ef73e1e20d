package handler // handler defines http handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-management/internal/middleware"
	"github.com/iliyamo/hotel-management/internal/repository"
)

// dbTimeout bounds every repository call made by a handler.
const dbTimeout = 5 * time.Second

// CacheInvalidator drops cached public responses after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, group string)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context, string) {}

func orNop(ci CacheInvalidator) CacheInvalidator {
	if ci == nil {
		return nopInvalidator{}
	}
	return ci
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func badID(c echo.Context, what string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + what + " id"})
}

// pageFrom reads ?limit= and ?offset=.  The repository clamps the values.
func pageFrom(c echo.Context) repository.Page {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return repository.Page{Limit: limit, Offset: offset}
}

// bindValid binds the request body into v and runs the echo validator.
// It writes the 400 response itself; a non-nil return means the handler
// must stop.
func bindValid(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		return errResponded
	}
	if err := c.Validate(v); err != nil {
		var ve *middleware.ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": ve.Fields})
		} else {
			_ = c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return errResponded
	}
	return nil
}

var errResponded = errors.New("response already written")

// dbError maps repository errors to HTTP.  what names the resource in the
// 404 and 409 messages.
func dbError(c echo.Context, err error, what string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": what + " already exists"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": what + " is still referenced"})
	}
	zerolog.Ctx(c.Request().Context()).Error().Err(err).Str("resource", what).Msg("database error")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
