package middleware

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"wastetrack/internal/session"
)

type Restorer interface {
	Restore(ctx context.Context, p session.Persister) session.State
}

// InjectSession восстанавливает сессию по токену из cookie на каждом запросе.
// Пользователь всегда перечитывается из API, в cookie лежит только токен.
func InjectSession(store Restorer) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := store.Restore(c.Request.Context(), sessions.Default(c))
		c.Set(session.ContextKey, st)
		c.Next()
	}
}
