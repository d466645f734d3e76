package users

import (
	"strings"

	"github.com/Jidetireni/sanctuary-access/pkg/token"
	"github.com/samber/lo"
)

// AdminGate decides admin status from the configured admin email list.
type AdminGate struct {
	emails map[string]struct{}
}

func NewAdminGate(emails []string) *AdminGate {
	return &AdminGate{
		emails: lo.SliceToMap(emails, func(e string) (string, struct{}) {
			return normalizeEmail(e), struct{}{}
		}),
	}
}

func (g *AdminGate) IsAdminEmail(email string) bool {
	if email == "" {
		return false
	}
	_, ok := g.emails[normalizeEmail(email)]
	return ok
}

// IsAdmin re-checks a session against the current configuration. The admin role only
// counts for Google verified sessions whose email is still configured.
func (g *AdminGate) IsAdmin(claims *token.UserClaims) bool {
	if claims == nil || !claims.HasRole(token.RoleAdmin) {
		return false
	}
	return claims.Provider == token.ProviderGoogle && g.IsAdminEmail(claims.Email)
}

// RolesFor returns the roles a fresh session should carry.
func (g *AdminGate) RolesFor(email string, provider token.Provider) []string {
	roles := []string{token.RoleMember}
	if provider == token.ProviderGoogle && g.IsAdminEmail(email) {
		roles = append(roles, token.RoleAdmin)
	}
	return roles
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
