package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/api"
	"wastetrack/internal/database"
	"wastetrack/internal/forms"
	"wastetrack/internal/models"
	"wastetrack/internal/session"
	"wastetrack/internal/workflow"
)

const notApprovedForEditing = "Unauthorized or company not approved for editing."

type ownerView struct {
	edit    bool
	form    *forms.CompanyForm
	message string
	errMsg  string
}

// ====== КОМПАНИЯ ВЛАДЕЛЬЦА ======

func (h *Handler) renderMyCompany(c *gin.Context, status int, co models.Company, v ownerView) {
	data := gin.H{
		"company":  co,
		"canEdit":  workflow.OwnerCanEdit(co),
		"editMode": v.edit,
		"message":  v.message,
		"error":    v.errMsg,
	}
	if v.edit {
		form := forms.CompanyFormFrom(co)
		if v.form != nil {
			form = *v.form
		}
		data["form"] = form
		data["regions"] = load(c, h.log, "regions", h.api.Regions().List)
		data["services"] = load(c, h.log, "services", h.api.Services().List)
	}
	render(c, status, "my_company.html", data)
}

// myCompany читает компанию владельца; при ошибке сам отвечает страницей.
func (h *Handler) myCompany(c *gin.Context, st session.State) (models.Company, bool) {
	co, err := h.api.Companies().MyCompany(c.Request.Context(), st.Token)
	if err == nil {
		return co, true
	}

	if api.IsNotFound(err) {
		render(c, http.StatusNotFound, "my_company.html", gin.H{"fatal": "No company profile found for this user."})
		return co, false
	}
	h.log.Error().Err(err).Int("user_id", st.User.ID).Msg("load my company")
	render(c, statusFor(err), "my_company.html", gin.H{
		"fatal": api.Message(err, "Failed to load your company details."),
	})
	return co, false
}

func (h *Handler) MyCompanyDashboard(c *gin.Context) {
	co, ok := h.myCompany(c, session.FromContext(c))
	if !ok {
		return
	}
	h.renderMyCompany(c, http.StatusOK, co, ownerView{edit: c.Query("edit") == "1"})
}

// UpdateMyCompany refuses before sending anything when the company is not approved.
func (h *Handler) UpdateMyCompany(c *gin.Context) {
	st := session.FromContext(c)
	co, ok := h.myCompany(c, st)
	if !ok {
		return
	}

	form, err := forms.BindCompany(c)
	if err != nil {
		h.renderMyCompany(c, http.StatusBadRequest, co, ownerView{edit: true, form: &form, errMsg: "Invalid form data."})
		return
	}
	// статус владелец не меняет
	form.Status = ""

	if !st.IsCompanyOwner() || !workflow.OwnerCanEdit(co) {
		h.renderMyCompany(c, http.StatusForbidden, co, ownerView{edit: true, form: &form, errMsg: notApprovedForEditing})
		return
	}

	ctx := c.Request.Context()
	if err := h.api.Companies().Update(ctx, st.Token, co.ID, form.Payload()); err != nil {
		h.log.Warn().Err(err).Int("company_id", co.ID).Msg("owner update company")
		h.renderMyCompany(c, statusFor(err), co, ownerView{
			edit:   true,
			form:   &form,
			errMsg: api.Message(err, "An unexpected error occurred during update."),
		})
		return
	}
	h.journal.Record(ctx, *st.User, database.EntityCompany, co.ID, "update", "owner updated company "+form.Name)

	// перечитываем и выходим из режима редактирования
	fresh, ok := h.myCompany(c, st)
	if !ok {
		return
	}
	h.renderMyCompany(c, http.StatusOK, fresh, ownerView{message: "Company profile updated successfully!"})
}
