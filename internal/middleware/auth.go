package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/access"
	"wastetrack/internal/models"
	"wastetrack/internal/session"
)

// RetryAfterSeconds: сколько браузер ждёт перед повтором, пока сессия восстанавливается.
const RetryAfterSeconds = "1"

// RequireAuth пускает любого вошедшего пользователя.
func RequireAuth() gin.HandlerFunc {
	return RequireRole()
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch d := access.Decide(roles, session.FromContext(c)); d {
		case access.Allow:
			c.Next()
		case access.Wait:
			c.Header("Retry-After", RetryAfterSeconds)
			c.HTML(http.StatusServiceUnavailable, "loading.html", gin.H{})
			c.Abort()
		default:
			c.Redirect(http.StatusFound, d.Target())
			c.Abort()
		}
	}
}
