package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"chwadmin/internal/access"
)

// RequirePermissions lets a request through only when the caller holds every
// listed permission.
func RequirePermissions(requiredPermissions ...access.Permission) echo.MiddlewareFunc {
	check := access.All(requiredPermissions...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch GetEvaluator(c).Decide(check) {
			case access.Granted:
				return next(c)
			case access.Pending:
				return echo.NewHTTPError(http.StatusServiceUnavailable, "permissions are still loading")
			default:
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
		}
	}
}

// RequireAnyOf lets a request through when the caller holds at least one of
// the listed permissions.
func RequireAnyOf(permissions ...access.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ev := GetEvaluator(c)
			for _, p := range permissions {
				if ev.HasPermission(access.One(p)) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		}
	}
}
