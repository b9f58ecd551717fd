package middleware

import (
	"context"
	"net/http"

	"talentreview/internal/platform/requestctx"
	"talentreview/internal/transport/http/api"
)

type PermissionStore interface {
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

// RequirePermission lets the request through only when the caller's role
// grants permission.
func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)
			user, ok := GetUser(ctx)
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
				return
			}

			allowed, err := store.HasPermission(ctx, user.RoleID, permission)
			switch {
			case err != nil:
				requestctx.Logger(ctx).Error("permission lookup failed", "permission", permission, "roleId", user.RoleID, "err", err)
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", requestID)
			case !allowed:
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
