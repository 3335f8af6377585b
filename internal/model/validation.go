package model

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations wires the domain enums into gin's binding validator
// so request structs can declare `binding:"specialty"` etc.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine")
	}

	if err := v.RegisterValidation("specialty", func(fl validator.FieldLevel) bool {
		return ValidSpecialty(Specialty(fl.Field().String()))
	}); err != nil {
		return err
	}

	if err := v.RegisterValidation("patientstatus", func(fl validator.FieldLevel) bool {
		return ValidStatus(PatientStatus(fl.Field().String()))
	}); err != nil {
		return err
	}

	return v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return ValidPriority(PatientPriority(fl.Field().String()))
	})
}
