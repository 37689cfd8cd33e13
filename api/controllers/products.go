package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-session/api/responses"
	"github.com/angelmondragon/storefront-session/internal/catalog"
	"github.com/angelmondragon/storefront-session/pkg/catalogapi"
	pkgerrors "github.com/angelmondragon/storefront-session/pkg/errors"
	"github.com/angelmondragon/storefront-session/pkg/logger"
)

// ProductDetail returns the product page view-model.
func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "productId"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		view, err := svc.ProductDetail(r.Context(), catalogapi.ID(productID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
