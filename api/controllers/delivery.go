package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-session/api/responses"
	"github.com/angelmondragon/storefront-session/api/validators"
	"github.com/angelmondragon/storefront-session/internal/cart"
	"github.com/angelmondragon/storefront-session/pkg/logger"
)

func DeliveryCheck(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload deliveryCheckRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := cart.CheckDelivery(payload.Pincode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

type deliveryCheckRequest struct {
	Pincode string `json:"pincode"`
}
