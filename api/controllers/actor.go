package controllers

import (
	"net/http"

	"github.com/angelmondragon/haani-backend/api/middleware"
	"github.com/angelmondragon/haani-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
)

func requireActor(r *http.Request) (auth.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return auth.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return actor, nil
}
