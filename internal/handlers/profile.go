package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/api"
	"wastetrack/internal/forms"
	"wastetrack/internal/session"
)

// ПРОФИЛЬ

func (h *Handler) ShowProfile(c *gin.Context) {
	st := session.FromContext(c)
	render(c, http.StatusOK, "profile.html", gin.H{"form": forms.ProfileFormFrom(*st.User)})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	st := session.FromContext(c)

	form, err := forms.BindProfile(c)
	if err != nil {
		render(c, http.StatusBadRequest, "profile.html", gin.H{"form": forms.ProfileFormFrom(*st.User), "error": "Invalid form data."})
		return
	}

	upd, err := form.Changes(*st.User)
	if err != nil {
		form.Password, form.ConfirmPassword = "", ""
		render(c, http.StatusBadRequest, "profile.html", gin.H{"form": form, "error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	msg, err := h.api.Users().UpdateMe(ctx, st.Token, upd)
	form.Password, form.ConfirmPassword = "", ""
	if err != nil {
		h.log.Warn().Err(err).Int("user_id", st.User.ID).Msg("update profile")
		render(c, statusFor(err), "profile.html", gin.H{"form": form, "error": api.Message(err, "Failed to update profile.")})
		return
	}
	if msg == "" {
		msg = "Profile updated successfully!"
	}

	// шапка должна показать новое имя
	if u, err := h.api.Users().Me(ctx, st.Token); err == nil {
		st.User = &u
		c.Set(session.ContextKey, st)
		form = forms.ProfileFormFrom(u)
	} else {
		h.log.Warn().Err(err).Msg("reload profile")
	}

	render(c, http.StatusOK, "profile.html", gin.H{"form": form, "message": msg})
}
