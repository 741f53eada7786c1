package session

import (
	"defectboard/bizerror"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathSessions = "/v1/sessions"
	PathSession  = "/v1/session"
)

func RegisterSessionsRestAPI(r *gin.Engine, m *Manager) {
	g := r.Group(PathSessions)
	g.POST("", func(c *gin.Context) {
		login := LoginRequest{}
		if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		secCtx, err := m.Login(login.Name, login.Password)
		if err != nil {
			panic(err)
		}
		c.SetCookie(KeySecToken, secCtx.Token, int(TokenExpiration/time.Second), "/", "", false, true)
		c.JSON(http.StatusOK, secCtx)
	})
	g.DELETE("", func(c *gin.Context) {
		m.Logout(RequestToken(c))
		c.SetCookie(KeySecToken, "", -1, "/", "", false, true)
		c.AbortWithStatus(http.StatusNoContent)
	})

	r.GET(PathSession, m.SimpleAuthFilter(), func(c *gin.Context) {
		c.JSON(http.StatusOK, FindSecurityContext(c))
	})
}
