package middleware

import (
	"errors"

	"dentflow/services/booking"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the "wallclock" (HH:MM) tag to gin's binding validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return v.RegisterValidation("wallclock", func(fl validator.FieldLevel) bool {
		_, err := booking.ParseClock(fl.Field().String())
		return err == nil
	})
}
