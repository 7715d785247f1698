package admission

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/udahili/core"
)

var (
	phoneTag   = "phone_"
	phoneText  = "invalid contact number"
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9\s.-]{5,19}$`)
)

// InitValidators registers the admission-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	core.RegisterCustomTranslation(validate, translator, phoneTag, phoneText)
}

func phoneValidation(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}
