package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgAuth "github.com/angelmondragon/haani-backend/pkg/auth"
	"github.com/angelmondragon/haani-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext rebuilds the authenticated actor. ok is false when the
// request never passed Auth.
func ActorFromContext(ctx context.Context) (pkgAuth.Actor, bool) {
	role := enums.UserRole(RoleFromContext(ctx))
	if !role.IsValid() {
		return pkgAuth.Actor{}, false
	}
	actor := pkgAuth.Actor{Role: role}
	if raw := UserIDFromContext(ctx); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return pkgAuth.Actor{}, false
		}
		actor.UserID = id
	}
	return actor, true
}

// WithActor injects an actor into the context, as Auth does after verifying a
// token.
func WithActor(ctx context.Context, actor pkgAuth.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if actor.UserID != uuid.Nil {
		ctx = context.WithValue(ctx, ctxUserID, actor.UserID.String())
	}
	return context.WithValue(ctx, ctxRole, string(actor.Role))
}
