package cart

import (
	"errors"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-session/pkg/errors"
	"github.com/go-playground/validator/v10"
)

const (
	MinQuantity = 1
	MaxQuantity = 10

	msgSelectSize      = "Please select a size first."
	msgQuantityRange   = "Quantity must be between 1 and 10."
	msgProductRequired = "Product is required."
	msgInvalidPincode  = "Please enter a valid 6-digit pincode."
	msgFreeShipping    = "This product is eligible for FREE SHIPPING."
)

var validate = validator.New()

type addInput struct {
	ProductID string `validate:"required"`
	Size      string `validate:"required"`
	Quantity  int    `validate:"min=1,max=10"`
}

type quantityInput struct {
	Quantity int `validate:"min=1,max=10"`
}

type pincodeInput struct {
	Pincode string `validate:"len=6,number"`
}

var fieldMessages = map[string]string{
	"ProductID": msgProductRequired,
	"Size":      msgSelectSize,
	"Quantity":  msgQuantityRange,
	"Pincode":   msgInvalidPincode,
}

// validateInput turns the first failing field into a visitor-facing
// validation error.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		field := fieldErrs[0]
		message, ok := fieldMessages[field.StructField()]
		if !ok {
			message = "invalid " + strings.ToLower(field.Field())
		}
		return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{
			"field": strings.ToLower(field.Field()),
			"rule":  field.Tag(),
		})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid input")
}

// DeliveryStatus answers a pincode availability check.
type DeliveryStatus struct {
	Pincode   string `json:"pincode"`
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// CheckDelivery accepts any 6-digit pincode; delivery is free everywhere we ship.
func CheckDelivery(pincode string) (DeliveryStatus, error) {
	pincode = strings.TrimSpace(pincode)
	if err := validateInput(pincodeInput{Pincode: pincode}); err != nil {
		return DeliveryStatus{}, err
	}
	return DeliveryStatus{Pincode: pincode, Available: true, Message: msgFreeShipping}, nil
}
