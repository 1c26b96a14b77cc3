package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/dev-Vortex51/iitms/core"
)

var (
	dayStatusTag  = "daystatus"
	dayStatusText = "unknown day status"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(dayStatusTag, dayStatusValidation)
	core.RegisterCustomTranslation(validate, translator, dayStatusTag, dayStatusText)
}

func dayStatusValidation(fl validator.FieldLevel) bool {
	return DayStatus(fl.Field().String()).Valid()
}
