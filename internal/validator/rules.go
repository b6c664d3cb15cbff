package validator

import (
	"log"
	"strings"

	"jobboard_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные теги.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// без правила приложение работать не должно
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'not-blank': строка не пустая и не из одних пробелов
	mustRegister("not-blank", validateNotBlank)

	// 'national_id': 12 цифр, первая 2-9
	mustRegister("national_id", validateNationalID)

	mustRegister("is-gender", validateGender)
	mustRegister("is-user-role", validateUserRole)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateNationalID(fl validator.FieldLevel) bool {
	return models.IsValidNationalID(fl.Field().String())
}

func validateGender(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // для этого есть 'required'
	}
	switch strings.ToLower(value) {
	case "male", "female", "other":
		return true
	default:
		return false
	}
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.UserRole(value).IsValid()
}
