// Package transport moves tokens between HTTP requests/responses and the
// session service: secure cookies with a bearer-header fallback on the way
// in, paired cookies plus response body on the way out.
package transport

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// Options controls cookie attributes. Secure is forced on outside
// development so tokens never travel over plain HTTP in production.
type Options struct {
	Domain        string
	Secure        bool
	AccessMaxAge  int // seconds
	RefreshMaxAge int // seconds
}

type Adapter struct {
	opts Options
}

func New(opts Options) *Adapter {
	return &Adapter{opts: opts}
}

// ExtractAccess returns the access token from the accessToken cookie,
// falling back to "Authorization: Bearer <token>". Empty when absent.
func (a *Adapter) ExtractAccess(c *gin.Context) string {
	if v, err := c.Cookie(AccessCookie); err == nil && v != "" {
		return v
	}

	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

type refreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

// ExtractRefresh returns the refresh token from the refreshToken cookie,
// falling back to the refreshToken JSON body field. The Authorization
// header is never consulted for refresh tokens.
func (a *Adapter) ExtractRefresh(c *gin.Context) string {
	if v, err := c.Cookie(RefreshCookie); err == nil && v != "" {
		return v
	}

	var body refreshBody
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}

// Deliver sets both token cookies. Always both in one call: no response
// ever carries only half a pair. HttpOnly keeps them out of script reach.
func (a *Adapter) Deliver(c *gin.Context, access, refresh string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, access, a.opts.AccessMaxAge, "/", a.opts.Domain, a.opts.Secure, true)
	c.SetCookie(RefreshCookie, refresh, a.opts.RefreshMaxAge, "/", a.opts.Domain, a.opts.Secure, true)
}

// Clear expires both token cookies.
func (a *Adapter) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", a.opts.Domain, a.opts.Secure, true)
	c.SetCookie(RefreshCookie, "", -1, "/", a.opts.Domain, a.opts.Secure, true)
}
