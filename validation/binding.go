package validation

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterBindingValidators attaches the loan field rules to gin's binding
// engine so request structs can declare them as binding tags.
func RegisterBindingValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return Name(fl.Field().String())
	})
	v.RegisterValidation("percent", func(fl validator.FieldLevel) bool {
		return Percentage(decimal.NewFromFloat(fl.Field().Float()))
	})
	v.RegisterValidation("loandays", func(fl validator.FieldLevel) bool {
		return Days(int(fl.Field().Int()))
	})
	v.RegisterValidation("phonenum", func(fl validator.FieldLevel) bool {
		return Phone(fl.Field().String())
	})
	v.RegisterValidation("dateymd", func(fl validator.FieldLevel) bool {
		return Date(fl.Field().String())
	})
}
