package httpx

import (
	"context"

	"github.com/shelfside/bookforum/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyAccountID ctxKey = "account_id"
	CtxKeySession   ctxKey = "session"
)

// AccountIDFromCtx returns the authenticated account id, if any.
func AccountIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyAccountID).(string); ok {
		return v
	}
	return ""
}

// SessionFromCtx returns the verified session claims, if any.
func SessionFromCtx(ctx context.Context) (jwtx.SessionClaims, bool) {
	v, ok := ctx.Value(CtxKeySession).(jwtx.SessionClaims)
	return v, ok
}
