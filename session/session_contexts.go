package session

import (
	"defectboard/bizerror"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const KeySecCtx = "SecCtx"
const KeySecToken = "sec_token"

func newToken() string {
	return uuid.New().String()
}

func FindSecurityContext(ctx *gin.Context) *Context {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return nil
	}
	secCtx, ok := value.(*Context)
	if !ok || secCtx.Token == "" {
		return nil
	}
	return secCtx
}

func SaveSecurityContext(ctx *gin.Context, secCtx *Context) {
	if secCtx != nil && secCtx.Token != "" {
		ctx.Set(KeySecCtx, secCtx)
	}
}

// RequestToken reads the sec_token cookie, then a bearer Authorization header.
func RequestToken(ctx *gin.Context) string {
	if token, err := ctx.Cookie(KeySecToken); err == nil && token != "" {
		return token
	}
	auth := ctx.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func (m *Manager) SimpleAuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		secCtx, err := m.Current(RequestToken(ctx))
		if err != nil {
			panic(bizerror.ErrUnauthenticated)
		}
		SaveSecurityContext(ctx, secCtx)
		ctx.Next()
	}
}

// RouteGate redirects unauthenticated page requests to loginPath, remembering where they were going.
func (m *Manager) RouteGate(loginPath string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		secCtx, err := m.Current(RequestToken(ctx))
		if err != nil {
			ctx.Redirect(http.StatusFound, loginPath+"?redirect="+url.QueryEscape(ctx.Request.URL.RequestURI()))
			ctx.Abort()
			return
		}
		SaveSecurityContext(ctx, secCtx)
		ctx.Next()
	}
}
