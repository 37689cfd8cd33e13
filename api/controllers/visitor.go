package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-session/api/middleware"
	"github.com/angelmondragon/storefront-session/api/responses"
	"github.com/angelmondragon/storefront-session/internal/session"
	pkgerrors "github.com/angelmondragon/storefront-session/pkg/errors"
	"github.com/angelmondragon/storefront-session/pkg/logger"
)

func requireVisitor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*session.Visitor, bool) {
	visitor := middleware.VisitorFromContext(r.Context())
	if visitor == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "visitor session missing"))
		return nil, false
	}
	return visitor, true
}
