package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleClaimURI is the role claim issued by ASP.NET Identity.
const RoleClaimURI = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"

// Claims is what marquee reads from a bearer token.
type Claims struct {
	Subject   string
	Username  string
	Role      string
	ExpiresAt *time.Time
}

// PeekClaims decodes token without verifying its signature.
func PeekClaims(token string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("malformed token: %w", err)
	}

	var c Claims
	c.Subject, _ = mc.GetSubject()
	c.Username = firstString(mc, "unique_name", "name", "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name")
	c.Role = firstString(mc, "role", RoleClaimURI)

	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		c.ExpiresAt = &t
	}
	return c, nil
}

// firstString returns the first key holding a string (or the first of a string list).
func firstString(mc jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := mc[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case []any:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}
