package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	schemeapp "github.com/pawnfin/console/internal/application/scheme"
	"github.com/pawnfin/console/internal/domain/loan"
	"github.com/pawnfin/console/internal/domain/scheme"
	"github.com/pawnfin/console/internal/infrastructure/logger"
	"github.com/pawnfin/console/internal/interfaces/http/dto"
	"github.com/pawnfin/console/internal/interfaces/http/view"
	"go.uber.org/zap"
)

// SchemeHandler serves the interest scheme editor
type SchemeHandler struct {
	BaseHandler
	schemeService *schemeapp.Service
}

// NewSchemeHandler creates a new scheme handler
func NewSchemeHandler(base BaseHandler, schemeService *schemeapp.Service) *SchemeHandler {
	return &SchemeHandler{BaseHandler: base, schemeService: schemeService}
}

type schemePage struct {
	Schemes   []scheme.Scheme
	Draft     scheme.Draft
	Label     string
	MaxRows   int
	LoadError string
}

func (h *SchemeHandler) schemePage(c *gin.Context, draft scheme.Draft) view.Page {
	data := schemePage{Draft: draft, MaxRows: scheme.MaxRows}
	list, err := h.schemeService.List(c.Request.Context())
	if err != nil {
		logger.GetGinLogger(c).Error("Failed to list schemes", zap.Error(err))
	}
	data.Schemes = list
	data.LoadError = errorText(err)
	data.Label = scheme.Label(draft.ID, list)
	return h.page(c, "Interest Schemes", "schemes", data)
}

// List renders GET /schemes, with ?id= opening that scheme in the editor.
func (h *SchemeHandler) List(c *gin.Context) {
	draft, err := h.schemeService.Editor(c.Request.Context(), c.Query("id"))
	if err != nil {
		h.HandleError(c, err, view.PageSchemes, h.schemePage(c, scheme.NewDraft()))
		return
	}
	h.render(c, http.StatusOK, view.PageSchemes, h.schemePage(c, draft))
}

// Submit handles POST /schemes: save, add or remove a row, or start a new scheme.
func (h *SchemeHandler) Submit(c *gin.Context) {
	var form dto.SchemeForm
	if err := bind(c, &form); err != nil {
		h.HandleError(c, err, view.PageSchemes, h.schemePage(c, form.Draft()))
		return
	}
	draft := form.Draft()

	switch {
	case form.Remove != "":
		draft.RemoveRow(form.RemoveIndex())
	case form.Action == dto.ActionAddRow:
		draft.AddRow()
	case form.Action == "new":
		h.redirect(c, "/schemes")
		return
	default:
		saved, err := h.schemeService.Save(c.Request.Context(), draft)
		if err != nil {
			h.HandleError(c, err, view.PageSchemes, h.schemePage(c, draft))
			return
		}
		logger.GetGinLogger(c).Info("Scheme saved", zap.String("scheme_id", saved.ID), zap.String("name", saved.Name))
		h.setFlash(c, "Scheme "+saved.Name+" saved.")
		h.redirect(c, "/schemes?id="+url.QueryEscape(saved.ID))
		return
	}
	h.render(c, http.StatusOK, view.PageSchemes, h.schemePage(c, draft))
}

// Delete handles POST /schemes/:id/delete
func (h *SchemeHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.schemeService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err, view.PageSchemes, h.schemePage(c, scheme.NewDraft()))
		return
	}
	logger.GetGinLogger(c).Info("Scheme deleted", zap.String("scheme_id", id))
	h.setFlash(c, "Scheme deleted.")
	h.redirect(c, "/schemes")
}

// Rate answers GET /api/schemes/rate?name= for the loan forms' scheme picker.
func (h *SchemeHandler) Rate(c *gin.Context) {
	name := c.Query("name")
	monthly, ok, err := h.schemeService.DefaultRate(c.Request.Context(), name)
	if err != nil {
		logger.GetGinLogger(c).Error("Failed to resolve scheme rate", zap.String("scheme", name), zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeInternal, "Schemes are unavailable")
		return
	}
	resp := dto.RateResponse{Scheme: name, Found: ok}
	if ok {
		resp.MonthlyPct = monthly.String()
		resp.YearlyPct = loan.YearlyFromMonthly(monthly).String()
	}
	h.Success(c, resp)
}
