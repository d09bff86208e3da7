package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/transport"
	middleware "github.com/Skotchmaster/inventory/pkg/middleware/auth"
	"github.com/Skotchmaster/inventory/pkg/logging"
)

type EquipmentHTTP struct {
	Svc *service.EquipmentService
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, &service.ValidationError{Fields: []service.FieldError{{Field: "id", Message: "invalid id"}}}
	}
	return id, nil
}

func (h *EquipmentHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "equipment.list")

	q := c.QueryParams()
	filter, err := transport.ParseEquipmentFilter(q)
	if err != nil {
		return serviceError(l, "list_equipment_error", err)
	}
	page, limit := transport.ParsePage(q)

	res, err := h.Svc.List(ctx, filter, page, limit)
	if err != nil {
		return serviceError(l, "list_equipment_error", err)
	}

	return c.JSON(http.StatusOK, transport.NewEquipmentListResponse(res))
}

func (h *EquipmentHTTP) Mine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "equipment.mine")

	items, err := h.Svc.ListAssignedTo(ctx, middleware.UserIDFrom(c))
	if err != nil {
		return serviceError(l, "list_my_equipment_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewEquipmentList(items))
}

func (h *EquipmentHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "equipment.search")

	page, limit := transport.ParsePage(c.QueryParams())
	res, err := h.Svc.Search(ctx, c.QueryParam("q"), page, limit)
	if err != nil {
		return serviceError(l, "search_equipment_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewEquipmentListResponse(res))
}

func (h *EquipmentHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "equipment.get")

	id, err := parseID(c)
	if err != nil {
		return serviceError(l, "get_equipment_error", err)
	}

	eq, err := h.Svc.Get(ctx, id)
	if err != nil {
		return serviceError(l, "get_equipment_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewEquipmentResponse(*eq))
}

func (h *EquipmentHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "equipment.create")

	var req transport.CreateEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "create_equipment_error", err)
	}

	eq, err := h.Svc.Create(ctx, middleware.UserIDFrom(c), req.Input())
	if err != nil {
		return serviceError(l, "create_equipment_error", err)
	}
	return c.JSON(http.StatusCreated, transport.NewEquipmentResponse(*eq))
}

func (h *EquipmentHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "equipment.update")

	id, err := parseID(c)
	if err != nil {
		return serviceError(l, "update_equipment_error", err)
	}

	var req transport.UpdateEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "update_equipment_error", err)
	}

	eq, err := h.Svc.Update(ctx, middleware.UserIDFrom(c), id, req.Input())
	if err != nil {
		return serviceError(l, "update_equipment_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewEquipmentResponse(*eq))
}

func (h *EquipmentHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "equipment.delete")

	id, err := parseID(c)
	if err != nil {
		return serviceError(l, "delete_equipment_error", err)
	}

	if err := h.Svc.Delete(ctx, middleware.UserIDFrom(c), id); err != nil {
		return serviceError(l, "delete_equipment_error", err)
	}

	l.Info("delete_equipment_success", "equipment_id", id.String())
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "equipment deleted"})
}
