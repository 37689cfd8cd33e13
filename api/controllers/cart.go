package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-session/api/responses"
	"github.com/angelmondragon/storefront-session/api/validators"
	"github.com/angelmondragon/storefront-session/internal/cart"
	"github.com/angelmondragon/storefront-session/pkg/catalogapi"
	pkgerrors "github.com/angelmondragon/storefront-session/pkg/errors"
	"github.com/angelmondragon/storefront-session/pkg/logger"
)

// CartView refetches the visitor's cart and returns it with its summary.
func CartView(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := requireVisitor(w, r, logg)
		if !ok {
			return
		}
		view, err := visitor.Cart.Refresh(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartAdd adds a product in the selected size.
func CartAdd(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := requireVisitor(w, r, logg)
		if !ok {
			return
		}

		var payload addToCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := visitor.Cart.Add(r.Context(), cart.AddInput{
			ProductID: payload.ProductID,
			Size:      payload.Size,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func CartUpdateLine(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := requireVisitor(w, r, logg)
		if !ok {
			return
		}
		lineID, err := lineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := visitor.Cart.ChangeQuantity(r.Context(), lineID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CartRemoveLine(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := requireVisitor(w, r, logg)
		if !ok {
			return
		}
		lineID, err := lineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := visitor.Cart.Remove(r.Context(), lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func lineIDParam(r *http.Request) (catalogapi.ID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "lineId"))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart line id is required")
	}
	return catalogapi.ID(raw), nil
}

// Size and quantity rules live in the cart model so the visitor sees the
// same messages however the request arrives.
type addToCartRequest struct {
	ProductID catalogapi.ID `json:"product_id"`
	Size      string        `json:"size"`
	Quantity  int           `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}
