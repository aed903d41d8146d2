package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"wastetrack/internal/api"
	"wastetrack/internal/forms"
	"wastetrack/internal/models"
	"wastetrack/internal/session"
)

// уже вошедшего пользователя отправляем на его дашборд
func redirectSignedIn(c *gin.Context) bool {
	st := session.FromContext(c)
	if !st.Authenticated() {
		return false
	}
	c.Redirect(http.StatusFound, st.User.Role.DashboardPath())
	return true
}

// ВХОД

func (h *Handler) ShowLogin(c *gin.Context) {
	if redirectSignedIn(c) {
		return
	}
	render(c, http.StatusOK, "login.html", gin.H{"error": "", "form": forms.LoginForm{}})
}

func (h *Handler) Login(c *gin.Context) {
	form, err := forms.BindLogin(c)
	if err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{"error": "Invalid form data.", "form": form})
		return
	}
	if err := form.Validate(); err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{"error": err.Error(), "form": form})
		return
	}

	user, err := h.sessions.Login(c.Request.Context(), sessions.Default(c), form.Username, form.Password)
	if err != nil {
		h.log.Info().Err(err).Str("username", form.Username).Msg("login failed")
		form.Password = ""
		render(c, statusFor(err), "login.html", gin.H{
			"error": api.Message(err, "An unexpected error occurred during login. Please try again."),
			"form":  form,
		})
		return
	}

	c.Redirect(http.StatusFound, user.Role.DashboardPath())
}

// РЕГИСТРАЦИЯ

func (h *Handler) ShowRegister(c *gin.Context) {
	if redirectSignedIn(c) {
		return
	}
	render(c, http.StatusOK, "register.html", gin.H{"error": "", "form": forms.RegisterForm{}})
}

func (h *Handler) Register(c *gin.Context) {
	form, err := forms.BindRegister(c)
	if err != nil {
		render(c, http.StatusBadRequest, "register.html", gin.H{"error": "Invalid form data.", "form": form})
		return
	}

	user, err := h.sessions.Register(c.Request.Context(), sessions.Default(c), form.Input())
	if err != nil {
		form.Password = ""
		render(c, statusFor(err), "register.html", gin.H{
			"error": api.Message(err, "Registration failed"),
			"form":  form,
		})
		return
	}

	c.Redirect(http.StatusFound, user.Role.DashboardPath())
}

func (h *Handler) renderRegisterCompany(c *gin.Context, status int, form forms.CompanyRegistrationForm, msg string) {
	ctx := c.Request.Context()
	regions, rerr := h.api.Regions().List(ctx)
	services, serr := h.api.Services().List(ctx)
	if (rerr != nil || serr != nil) && msg == "" {
		h.log.Error().AnErr("regions", rerr).AnErr("services", serr).Msg("load registration lists")
		msg = "Failed to load regions or services for registration."
	}

	form.Password = ""
	render(c, status, "register_company.html", gin.H{
		"error":    msg,
		"form":     form,
		"regions":  regions,
		"services": services,
	})
}

func (h *Handler) ShowRegisterCompany(c *gin.Context) {
	if redirectSignedIn(c) {
		return
	}
	h.renderRegisterCompany(c, http.StatusOK, forms.CompanyRegistrationForm{}, "")
}

func (h *Handler) RegisterCompany(c *gin.Context) {
	form, err := forms.BindCompanyRegistration(c)
	if err != nil {
		h.renderRegisterCompany(c, http.StatusBadRequest, form, "Invalid form data.")
		return
	}
	if err := form.Validate(); err != nil {
		h.renderRegisterCompany(c, http.StatusBadRequest, form, err.Error())
		return
	}

	_, err = h.sessions.RegisterCompany(c.Request.Context(), sessions.Default(c), form.Input())
	if err != nil {
		h.log.Info().Err(err).Str("username", form.Username).Msg("company registration failed")
		h.renderRegisterCompany(c, statusFor(err), form, api.Message(err, "Company registration failed."))
		return
	}

	c.Redirect(http.StatusFound, models.RoleCompanyOwner.DashboardPath())
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(sessions.Default(c)); err != nil {
		h.log.Error().Err(err).Msg("logout")
	}
	c.Redirect(http.StatusFound, "/login")
}
