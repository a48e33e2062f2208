package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateClaims rejects tokens that carry no user identity.
func ValidateClaims(claims *CustomClaims) error {
	return validate.Struct(claims)
}
