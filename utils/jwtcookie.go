package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const CookieName = "Authorization" // cookie key holding the token

func SetAuthCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	// SameSite has to be set before SetCookie to apply to it
	c.SetSameSite(http.SameSiteLaxMode) // sent on same-site navigation, blocks most CSRF

	// secure follows auth.secure_cookie, on behind https
	c.SetCookie(CookieName, token, int(ttl.Seconds()), "/", "", secure, true) // HttpOnly
}

func ClearAuthCookie(c *gin.Context) { // logout
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", false, true) // negative max-age deletes it
}

// TokenFromRequest reads the Authorization header, then the cookie.
func TokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return h // API clients
	}
	if ck, err := c.Cookie(CookieName); err == nil {
		return ck // pages
	}
	return ""
}
