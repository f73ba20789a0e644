package format

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/labcopy/labcopy/internal/domain/labs"
	"github.com/labcopy/labcopy/internal/domain/meds"
	"github.com/labcopy/labcopy/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "clinician"))
	g.GET("/format-templates", h.ListTemplates)
	g.GET("/format-templates/:kind", h.GetTemplate)
	g.PUT("/format-templates/:kind", h.SaveTemplate)
	g.DELETE("/format-templates/:kind", h.ResetTemplate)
	g.POST("/render/labs", h.RenderLabs)
	g.POST("/render/medications", h.RenderMedications)
}

func templateKind(c echo.Context) (TemplateKind, error) {
	kind := TemplateKind(c.Param("kind"))
	if kind != KindLab && kind != KindMedication {
		return "", echo.NewHTTPError(http.StatusBadRequest, "kind must be lab or medication")
	}
	return kind, nil
}

func (h *Handler) ListTemplates(c echo.Context) error {
	sts, err := h.svc.ListTemplates(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if sts == nil {
		sts = []*StoredTemplate{}
	}
	return c.JSON(http.StatusOK, sts)
}

func (h *Handler) GetTemplate(c echo.Context) error {
	kind, err := templateKind(c)
	if err != nil {
		return err
	}
	tpl, err := h.svc.GetTemplate(c.Request().Context(), kind)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tpl)
}

func (h *Handler) SaveTemplate(c echo.Context) error {
	kind, err := templateKind(c)
	if err != nil {
		return err
	}
	var tpl Template
	if err := c.Bind(&tpl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SaveTemplate(c.Request().Context(), kind, tpl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, tpl)
}

func (h *Handler) ResetTemplate(c echo.Context) error {
	kind, err := templateKind(c)
	if err != nil {
		return err
	}
	if err := h.svc.ResetTemplate(c.Request().Context(), kind); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// RenderLabsRequest carries groups plus an optional inline template;
// without one the stored lab template applies.
type RenderLabsRequest struct {
	Groups   []labs.LabGroup `json:"groups"`
	Template *Template       `json:"template,omitempty"`
}

// RenderResponse wraps the clipboard text.
type RenderResponse struct {
	Text string `json:"text"`
}

func (h *Handler) RenderLabs(c echo.Context) error {
	var req RenderLabsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	text, err := h.svc.RenderLabs(c.Request().Context(), req.Groups, req.Template)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, RenderResponse{Text: text})
}

// RenderMedicationsRequest mirrors RenderLabsRequest for medications.
type RenderMedicationsRequest struct {
	Groups   []meds.MedGroup `json:"groups"`
	Template *Template       `json:"template,omitempty"`
}

func (h *Handler) RenderMedications(c echo.Context) error {
	var req RenderMedicationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	text, err := h.svc.RenderMedications(c.Request().Context(), req.Groups, req.Template)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, RenderResponse{Text: text})
}
