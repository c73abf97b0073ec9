package middleware

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	pkgvalidator "github.com/jwalitptl/dental-api/pkg/validator"
)

var errUnexpectedValidator = errors.New("gin binding validator is not go-playground/validator")

// RegisterValidators installs json field naming and the custom rules (such
// as hhmm) on gin's binding validator. Call once before serving.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errUnexpectedValidator
	}
	pkgvalidator.Register(v)
	return nil
}
