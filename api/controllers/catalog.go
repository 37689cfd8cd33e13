package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-session/api/responses"
	"github.com/angelmondragon/storefront-session/api/validators"
	"github.com/angelmondragon/storefront-session/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-session/pkg/errors"
	"github.com/angelmondragon/storefront-session/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	maxCategoryLen    = 64
	maxFilterValueLen = 128
)

// CatalogView returns the visitor's catalog page, loading it on first use.
func CatalogView(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := requireVisitor(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, visitor.Browse.Load(r.Context()))
	}
}

// CatalogToggleFilter selects a filter value, or clears it when already selected.
func CatalogToggleFilter(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := requireVisitor(w, r, logg)
		if !ok {
			return
		}

		var payload toggleFilterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category := validators.SanitizeString(payload.Category, maxCategoryLen)
		value := validators.SanitizeString(payload.Value, maxFilterValueLen)
		responses.WriteSuccess(w, visitor.Browse.SetFilter(r.Context(), category, value))
	}
}

func CatalogSetPriceRange(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := requireVisitor(w, r, logg)
		if !ok {
			return
		}

		var payload priceRangeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, visitor.Browse.SetPriceRange(r.Context(), *payload.Min, *payload.Max))
	}
}

func CatalogSetSort(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := requireVisitor(w, r, logg)
		if !ok {
			return
		}

		var payload sortRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key, err := enums.ParseSortKey(payload.Sort)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort").WithDetails(map[string]any{"sort": payload.Sort}))
			return
		}

		responses.WriteSuccess(w, visitor.Browse.SetSort(r.Context(), key))
	}
}

func CatalogReset(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := requireVisitor(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, visitor.Browse.Reset(r.Context()))
	}
}

type toggleFilterRequest struct {
	Category string `json:"category" validate:"required,max=64"`
	Value    string `json:"value" validate:"required,max=128"`
}

type priceRangeRequest struct {
	Min *decimal.Decimal `json:"min" validate:"required"`
	Max *decimal.Decimal `json:"max" validate:"required"`
}

type sortRequest struct {
	Sort string `json:"sort" validate:"max=32"`
}
