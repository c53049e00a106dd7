package common

import "github.com/go-playground/validator/v10"

// Validate is the shared struct validator; payload types declare their rules with `validate` tags.
var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
}
