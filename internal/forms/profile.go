package forms

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/api"
	"wastetrack/internal/models"
)

var (
	ErrPasswordMismatch = errors.New("New password and confirm password do not match.")
	ErrNoChanges        = errors.New("No changes detected.")
)

type ProfileForm struct {
	Username        string `form:"username"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

func BindProfile(c *gin.Context) (ProfileForm, error) {
	var f ProfileForm
	if err := c.ShouldBind(&f); err != nil {
		return f, err
	}
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	return f, nil
}

// ProfileFormFrom never carries a password back into the page.
func ProfileFormFrom(u models.User) ProfileForm {
	return ProfileForm{Username: u.Username, Email: u.Email}
}

// Changes compares the form with the current profile and returns only the
// changed fields. Both errors are detected before any request is made.
func (f ProfileForm) Changes(current models.User) (api.ProfileUpdate, error) {
	if f.Password != "" && f.Password != f.ConfirmPassword {
		return api.ProfileUpdate{}, ErrPasswordMismatch
	}

	var upd api.ProfileUpdate
	if f.Username != current.Username {
		upd.Username = f.Username
	}
	if f.Email != current.Email {
		upd.Email = f.Email
	}
	upd.Password = f.Password

	if upd == (api.ProfileUpdate{}) {
		return upd, ErrNoChanges
	}
	return upd, nil
}
