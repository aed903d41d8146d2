package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/api"
	"wastetrack/internal/database"
	"wastetrack/internal/forms"
	"wastetrack/internal/models"
	"wastetrack/internal/session"
)

//
// СПИСОК
//

func (h *Handler) ListCompanies(c *gin.Context) {
	companies := load(c, h.log, "companies", h.api.Companies().List)
	regions := load(c, h.log, "regions", h.api.Regions().List)

	// "all" и пустое значение: без фильтра
	selected := forms.CoerceID(c.Query("region_id"))
	if selected != "" {
		regionID, _ := strconv.Atoi(selected)
		filtered := make([]models.Company, 0, len(companies.Items))
		for _, co := range companies.Items {
			if co.RegionID() == regionID {
				filtered = append(filtered, co)
			}
		}
		companies.Items = filtered
	}

	render(c, http.StatusOK, "companies_list.html", gin.H{
		"companies":      companies,
		"regions":        regions,
		"selectedRegion": selected,
		"canCreate":      session.FromContext(c).IsAdmin() || session.FromContext(c).IsCollector(),
	})
}

//
// СОЗДАНИЕ / РЕДАКТИРОВАНИЕ
//

type companyPage struct {
	title  string
	action string
	id     int
}

func (h *Handler) renderCompanyForm(c *gin.Context, status int, page companyPage, form forms.CompanyForm, msg string) {
	regions := load(c, h.log, "regions", h.api.Regions().List)
	services := load(c, h.log, "services", h.api.Services().List)

	render(c, status, "company_form.html", gin.H{
		"title":     page.title,
		"action":    page.action,
		"companyID": page.id,
		"form":      form,
		"regions":   regions,
		"services":  services,
		"statuses":  models.CompanyStatuses,
		"error":     msg,
	})
}

var newCompanyPage = companyPage{title: "Create New Company", action: "/companies/new"}

func editCompanyPage(id int) companyPage {
	return companyPage{title: "Edit Company", action: "/companies/" + strconv.Itoa(id) + "/edit", id: id}
}

func (h *Handler) ShowNewCompany(c *gin.Context) {
	h.renderCompanyForm(c, http.StatusOK, newCompanyPage, forms.CompanyForm{}, "")
}

func (h *Handler) CreateCompany(c *gin.Context) {
	form, err := forms.BindCompany(c)
	if err != nil {
		h.renderCompanyForm(c, http.StatusBadRequest, newCompanyPage, form, "Invalid form data.")
		return
	}

	st := session.FromContext(c)
	id, err := h.api.Companies().Create(c.Request.Context(), st.Token, form.Payload())
	if err != nil {
		h.log.Warn().Err(err).Str("name", form.Name).Msg("create company")
		h.renderCompanyForm(c, statusFor(err), newCompanyPage, form, api.Message(err, "Failed to create company."))
		return
	}

	// --- АУДИТ: создание компании ---
	h.journal.Record(c.Request.Context(), *st.User, database.EntityCompany, id, "create", "created company "+form.Name)

	c.Redirect(http.StatusFound, "/companies")
}

func (h *Handler) ShowEditCompany(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		notFound(c, "Company not found.")
		return
	}

	co, err := h.api.Companies().Get(c.Request.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			notFound(c, "Company not found.")
			return
		}
		h.log.Error().Err(err).Int("company_id", id).Msg("load company for edit")
		render(c, http.StatusBadGateway, "company_form.html", gin.H{
			"title": "Edit Company",
			"fatal": "Failed to load company details.",
		})
		return
	}

	h.renderCompanyForm(c, http.StatusOK, editCompanyPage(id), forms.CompanyFormFrom(co), "")
}

// UpdateCompany keeps the submitted values on failure; nothing is re-read from the API.
func (h *Handler) UpdateCompany(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		notFound(c, "Company not found.")
		return
	}

	form, err := forms.BindCompany(c)
	if err != nil {
		h.renderCompanyForm(c, http.StatusBadRequest, editCompanyPage(id), form, "Invalid form data.")
		return
	}

	st := session.FromContext(c)
	if err := h.api.Companies().Update(c.Request.Context(), st.Token, id, form.Payload()); err != nil {
		h.log.Warn().Err(err).Int("company_id", id).Msg("update company")
		h.renderCompanyForm(c, statusFor(err), editCompanyPage(id), form,
			api.Message(err, "An unexpected error occurred during update."))
		return
	}

	h.journal.Record(c.Request.Context(), *st.User, database.EntityCompany, id, "update", "updated company "+form.Name)

	c.Redirect(http.StatusFound, "/companies/"+strconv.Itoa(id))
}
