package referral

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sivec/sivec/internal/platform/auth"
	"github.com/sivec/sivec/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "medico", "enfermeiro", "gestor", "motorista"))
	readGroup.GET("/encaminhamentos", h.List)
	readGroup.GET("/encaminhamentos/:id", h.Get)
	readGroup.GET("/encaminhamentos/:id/historico", h.History)

	writeGroup := api.Group("", auth.RequireRole("admin", "medico", "enfermeiro"))
	writeGroup.POST("/encaminhamentos", h.Create)
	writeGroup.PUT("/encaminhamentos/:id", h.Update)
	writeGroup.DELETE("/encaminhamentos/:id", h.Delete)

	statusGroup := api.Group("", auth.RequireRole("admin", "medico", "gestor", "motorista"))
	statusGroup.PATCH("/encaminhamentos/:id/status", h.UpdateStatus)

	fleetGroup := api.Group("", auth.RequireRole("admin", "gestor"))
	fleetGroup.POST("/encaminhamentos/:id/veiculo", h.AssignVehicle)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrTerminalState), errors.Is(err, ErrVehicleUnavailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// actorID resolves the authenticated user into the audit trail reference.
func actorID(c echo.Context) *uuid.UUID {
	raw := auth.UserIDFromContext(c.Request().Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func (h *Handler) Create(c echo.Context) error {
	var ref Referral
	if err := c.Bind(&ref); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ref.RequestedBy = actorID(c)
	if err := h.svc.Create(c.Request().Context(), &ref); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, ref)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ref, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ref)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, key := range []string{"triage_id", "patient_id", "status", "priority", "vehicle_id", "dest_facility_id"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	items, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var ref Referral
	if err := c.Bind(&ref); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ref.ID = id
	if err := h.svc.Update(c.Request().Context(), &ref); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ref)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body StatusUpdate
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ref, err := h.svc.UpdateStatus(c.Request().Context(), id, body, actorID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ref)
}

func (h *Handler) AssignVehicle(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body VehicleAssignment
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.VehicleID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "vehicle_id is required")
	}
	ref, err := h.svc.AssignVehicle(c.Request().Context(), id, body, actorID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ref)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) History(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	changes, err := h.svc.History(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, changes)
}
