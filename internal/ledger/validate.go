package ledger

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs the tag rules and folds the first failure into a
// *ValidationError with a message fit for the user.
func validateStruct(data any) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Reason: err.Error()}
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "Name":
		return invalid("name must not be empty")
	case fe.Field() == "Quantity":
		return invalid("quantity must be positive")
	case fe.Field() == "SellPrice" && fe.Tag() == "gtefield":
		return invalid("sell price must be >= buy price")
	case fe.Tag() == "gte":
		return invalid("%s must be >= 0", fe.Field())
	default:
		return invalid("%s is not valid", fe.Field())
	}
}
