package application

import (
	"database/sql/driver"
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/risingacademy/backend/core"
)

var (
	appSlotTag   = "appslot"
	appSlotTexts = map[string]string{
		"en": "unknown availability slot",
		"fr": "créneau de disponibilité inconnu",
		"ar": "موعد التوفر غير معروف",
	}

	decisionTag   = "decision"
	decisionTexts = map[string]string{
		"en": "status must be one of: approved, rejected",
		"fr": "le statut doit être approved ou rejected",
		"ar": "يجب أن تكون الحالة approved أو rejected",
	}
)

// InitValidators registers the application validators.
func InitValidators(validate *validator.Validate, uni *ut.UniversalTranslator) {
	// validate null types by their underlying value
	validate.RegisterCustomTypeFunc(nullValuer, null.String{}, null.Int{})

	_ = validate.RegisterValidation(appSlotTag, appSlotValidation)
	core.RegisterLocalizedTranslation(validate, uni, appSlotTag, appSlotTexts)

	_ = validate.RegisterValidation(decisionTag, decisionValidation)
	core.RegisterLocalizedTranslation(validate, uni, decisionTag, decisionTexts)
}

func nullValuer(field reflect.Value) interface{} {
	if valuer, ok := field.Interface().(driver.Valuer); ok {
		if val, err := valuer.Value(); err == nil {
			return val
		}
	}
	return nil
}

// appSlotValidation only allows the availability slots offered by the form.
func appSlotValidation(fl validator.FieldLevel) bool {
	slot := fl.Field().String()
	for _, s := range AvailabilitySlots {
		if s == slot {
			return true
		}
	}
	return false
}

// decisionValidation only allows approved and rejected.
func decisionValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).Decision()
}
