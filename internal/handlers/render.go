package handlers

import (
	"github.com/gin-gonic/gin"

	"wastetrack/internal/session"
)

// render — обёртка над c.HTML, которая во все шаблоны прокидывает сессию и CurrentUser.
func render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	// сессию кладёт middleware.InjectSession
	st := session.FromContext(c)
	data["Session"] = st
	if st.Authenticated() {
		data["CurrentUser"] = st.User
		data["CurrentUsername"] = st.User.Username
		data["CurrentUserRole"] = st.User.Role
	}

	c.HTML(status, tmpl, data)
}
