package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"miniblog/internal/pkg"
	"miniblog/internal/repository/redis"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	SessionCookieName  = "session"
	LoginPath          = "/auth/login/"
)

// LoginRedirectURL points back at the originally requested path so the
// login handler can return the user there. Slashes stay literal so the
// location reads /auth/login/?next=/create/.
func LoginRedirectURL(path string) string {
	return LoginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}

// sessionClaims validates the cookie token against the redis whitelist
// and slides its TTL. Returns nil when the request has no live session.
func sessionClaims(c *gin.Context) *pkg.Claims {
	tokenStr, err := c.Cookie(SessionCookieName)
	if err != nil || tokenStr == "" {
		return nil
	}

	claims, err := pkg.ParseSessionToken(tokenStr)
	if err != nil {
		return nil
	}

	sessions := &redis.SessionRepository{}
	originToken, err := sessions.GetToken(claims.UserID)
	if err != nil || originToken != tokenStr {
		// Logged in elsewhere or logged out: this cookie is dead.
		return nil
	}

	_ = sessions.ExtendToken(claims.UserID)
	return claims
}

// CurrentUser exposes the session identity on public pages without
// requiring one.
func CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := sessionClaims(c); claims != nil {
			c.Set(ContextUserIDKey, claims.UserID)
			c.Set(ContextUsernameKey, claims.Username)
		}
		c.Next()
	}
}

// AuthRequired redirects anonymous requests to the login page with a
// next parameter instead of answering 401; this is a browser app.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := sessionClaims(c)
		if claims == nil {
			c.Redirect(http.StatusFound, LoginRedirectURL(c.Request.URL.Path))
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}
