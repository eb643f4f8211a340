package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	companyapp "github.com/pawnfin/console/internal/application/company"
	"github.com/pawnfin/console/internal/domain/company"
	"github.com/pawnfin/console/internal/infrastructure/logger"
	"github.com/pawnfin/console/internal/interfaces/http/dto"
	"github.com/pawnfin/console/internal/interfaces/http/middleware"
	"github.com/pawnfin/console/internal/interfaces/http/view"
	"go.uber.org/zap"
)

// CompanyHandler serves company selection and management
type CompanyHandler struct {
	BaseHandler
	companyService *companyapp.Service
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(base BaseHandler, companyService *companyapp.Service) *CompanyHandler {
	return &CompanyHandler{BaseHandler: base, companyService: companyService}
}

type companyPage struct {
	Companies []company.Company
	Selected  string
	Name      string
	LoadError string
	Manage    bool
	Action    string
}

// Picker renders GET /company
func (h *CompanyHandler) Picker(c *gin.Context) {
	h.show(c, false)
}

// Manage renders GET /companies
func (h *CompanyHandler) Manage(c *gin.Context) {
	h.show(c, true)
}

func (h *CompanyHandler) show(c *gin.Context, manage bool) {
	p, ok := h.listPage(c, manage)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, view.PageCompany, p)
}

// listPage loads the company list into a page. It returns false when the
// response was already written.
func (h *CompanyHandler) listPage(c *gin.Context, manage bool) (view.Page, bool) {
	sess := middleware.GetSession(c)
	data := companyPage{Selected: sess.CompanyID(), Manage: manage, Action: "/company"}
	title, active := "Select company", ""
	if manage {
		data.Action, title, active = "/companies", "Companies", "companies"
	}

	list, err := h.companyService.List(c.Request.Context(), sess)
	if h.expired(c, err) {
		return view.Page{}, false
	}
	data.Companies = list
	data.LoadError = errorText(err)
	return h.page(c, title, active, data), true
}

// Submit handles POST /company and POST /companies: select or create.
func (h *CompanyHandler) Submit(c *gin.Context) {
	manage := c.FullPath() == "/companies"
	p, ok := h.listPage(c, manage)
	if !ok {
		return
	}

	var form dto.CompanyForm
	if err := bind(c, &form); err != nil {
		h.HandleError(c, err, view.PageCompany, p)
		return
	}

	ctx := c.Request.Context()
	sess := middleware.GetSession(c)
	log := logger.GetGinLogger(c)

	if form.Action == dto.ActionCreate {
		data := p.Data.(companyPage)
		data.Name = form.Name
		p.Data = data

		resp, selected, err := h.companyService.Create(ctx, sess, form.Name)
		if err != nil {
			h.HandleError(c, err, view.PageCompany, p)
			return
		}
		log.Info("Company created", zap.String("company_id", resp.ID), zap.Bool("selected", selected))
		switch {
		case selected:
			h.setFlash(c, "Company "+resp.Name+" created and selected.")
			if manage {
				h.redirect(c, "/companies")
			} else {
				h.redirect(c, "/")
			}
		default:
			h.setFlash(c, "Company created.")
			h.redirect(c, c.FullPath())
		}
		return
	}

	selected, err := h.companyService.Select(ctx, sess, form.ID)
	if err != nil {
		h.HandleError(c, err, view.PageCompany, p)
		return
	}
	log.Info("Company selected", zap.String("company_id", selected.ID))
	if manage {
		h.setFlash(c, "Now working in "+selected.DisplayName()+".")
		h.redirect(c, "/companies")
		return
	}
	h.redirect(c, "/")
}

// Switch handles POST /company/switch
func (h *CompanyHandler) Switch(c *gin.Context) {
	if err := h.companyService.Switch(c.Request.Context(), middleware.GetSession(c)); err != nil {
		logger.GetGinLogger(c).Error("Failed to clear company", zap.Error(err))
	}
	h.redirect(c, "/company")
}
