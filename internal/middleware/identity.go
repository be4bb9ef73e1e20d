package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/utils"
)

// SessionFrom returns the claims stored by CookieAuth.
func SessionFrom(c echo.Context) (utils.SessionClaims, bool) {
	cl, ok := c.Get(ctxClaims).(utils.SessionClaims)
	return cl, ok
}

// SessionToken returns the raw token that authenticated the request.
func SessionToken(c echo.Context) string {
	s, _ := c.Get(ctxToken).(string)
	return s
}

// userID is the identity written to the request log: "agent:<id>",
// "root:<name>" or "guest".
func userID(c echo.Context) string {
	if v, ok := c.Get(ctxUserID).(string); ok && v != "" {
		return v
	}
	return "guest"
}

func subjectKey(cl utils.SessionClaims) string {
	if cl.Subject == 0 {
		return strings.ToLower(cl.Role) + ":" + cl.Username
	}
	return fmt.Sprintf("%s:%d", strings.ToLower(cl.Role), cl.Subject)
}
