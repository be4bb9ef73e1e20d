package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/repository"
	"github.com/iliyamo/hotel-management/internal/utils"
)

// AgentHandler lets root manage staff accounts.
type AgentHandler struct {
	Agents     *repository.AgentRepo
	BcryptCost int
}

func NewAgentHandler(agents *repository.AgentRepo, bcryptCost int) *AgentHandler {
	if agents == nil {
		panic("nil repository passed to NewAgentHandler")
	}
	return &AgentHandler{Agents: agents, BcryptCost: bcryptCost}
}

type agentReq struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=120"`
}

// Create handles POST /v1/root/agents.
func (h *AgentHandler) Create(c echo.Context) error {
	var req agentReq
	if err := bindValid(c, &req); err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Agents.Create(ctx, req.Username, req.Password, req.FullName, h.BcryptCost)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return dbError(c, err, "agent")
	}
	a, err := h.Agents.GetByID(ctx, id)
	if err != nil {
		return dbError(c, err, "agent")
	}
	return c.JSON(http.StatusCreated, a)
}

// List handles GET /v1/root/agents.
func (h *AgentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	list, err := h.Agents.List(ctx)
	if err != nil {
		return dbError(c, err, "agent")
	}
	return c.JSON(http.StatusOK, list)
}

// Delete handles DELETE /v1/root/agents/:id.  Sessions already issued to
// the agent stay valid until they expire.
func (h *AgentHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "agent")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Agents.Delete(ctx, id); err != nil {
		return dbError(c, err, "agent")
	}
	return c.NoContent(http.StatusNoContent)
}
