package shared

import (
	"context"
	"net/http"

	"talentreview/internal/domain/audit"
	"talentreview/internal/domain/auth"
	"talentreview/internal/platform/requestctx"
)

type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

// RecordAudit writes an audit entry for the current request. Failures are
// logged and never fail the request.
func RecordAudit(r *http.Request, auditor Auditor, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if auditor == nil {
		return
	}
	ctx := r.Context()
	entry := audit.Entry{
		TenantID:   user.TenantID,
		ActorID:    user.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestctx.GetRequestID(ctx),
		IP:         ClientIP(r),
		Before:     before,
		After:      after,
	}
	if err := auditor.Record(ctx, entry); err != nil {
		requestctx.Logger(ctx).Warn("audit record failed", "action", action, "err", err)
	}
}
