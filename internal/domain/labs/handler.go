package labs

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/labcopy/labcopy/internal/platform/auth"
	"github.com/labcopy/labcopy/pkg/pagination"
)

type Handler struct {
	pipeline  *Pipeline
	overrides RangeOverrideRepository
}

func NewHandler(pipeline *Pipeline, overrides RangeOverrideRepository) *Handler {
	return &Handler{pipeline: pipeline, overrides: overrides}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "clinician"))
	g.POST("/labs/normalize", h.Normalize)
	g.GET("/range-overrides", h.ListOverrides)
	g.PUT("/range-overrides", h.UpsertOverride)
	g.DELETE("/range-overrides", h.DeleteOverride)
}

// NormalizeRequest carries a batch of raw extracted records.
type NormalizeRequest struct {
	Records []RawLabRecord `json:"records"`
}

func (h *Handler) Normalize(c echo.Context) error {
	var req NormalizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	stored, err := h.overrides.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	groups := h.pipeline.Run(req.Records, OverrideMap(stored))
	if groups == nil {
		groups = []LabGroup{}
	}
	return c.JSON(http.StatusOK, groups)
}

func (h *Handler) ListOverrides(c echo.Context) error {
	pg := pagination.FromContext(c)
	ovs, total, err := h.overrides.ListPage(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if ovs == nil {
		ovs = []*RangeOverride{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(ovs, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpsertOverride(c echo.Context) error {
	var ov RangeOverride
	if err := c.Bind(&ov); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if ov.OrderCode == "" || ov.Facility == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "order_code and facility are required")
	}
	if ov.Min == nil && ov.Max == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one of min or max is required")
	}
	if ov.Min != nil && ov.Max != nil && *ov.Min > *ov.Max {
		return echo.NewHTTPError(http.StatusBadRequest, "min must not exceed max")
	}
	if err := h.overrides.Upsert(c.Request().Context(), &ov); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ov)
}

func (h *Handler) DeleteOverride(c echo.Context) error {
	orderCode := c.QueryParam("order_code")
	facility := c.QueryParam("facility")
	if orderCode == "" || facility == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "order_code and facility are required")
	}
	if err := h.overrides.Delete(c.Request().Context(), orderCode, facility); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
