package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/ar"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ar_translations "github.com/go-playground/validator/v10/translations/ar"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
)

// Locales handled by the validation messages; the first one is the fallback.
var Locales = []string{"en", "fr", "ar"}

var (
	// custom validation tags & texts
	phoneTag   = "phone"
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()./-]{5,40}$`)
	phoneTexts = map[string]string{
		"en": "invalid phone number",
		"fr": "numéro de téléphone invalide",
		"ar": "رقم الهاتف غير صالح",
	}

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredTexts   = map[string]string{
		"en": "this field is required",
		"fr": "ce champ est obligatoire",
		"ar": "هذا الحقل مطلوب",
	}
)

// NewUniversalTranslator returns the translators for all supported locales, English being the fallback.
func NewUniversalTranslator() *ut.UniversalTranslator {
	_en := en.New()
	return ut.New(_en, _en, fr.New(), ar.New())
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, uni *ut.UniversalTranslator) {
	if trans, ok := uni.GetTranslator("en"); ok {
		_ = en_translations.RegisterDefaultTranslations(validate, trans)
	}
	if trans, ok := uni.GetTranslator("fr"); ok {
		_ = fr_translations.RegisterDefaultTranslations(validate, trans)
	}
	if trans, ok := uni.GetTranslator("ar"); ok {
		_ = ar_translations.RegisterDefaultTranslations(validate, trans)
	}

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	RegisterLocalizedTranslation(validate, uni, phoneTag, phoneTexts)

	RegisterLocalizedTranslation(validate, uni, requiredTag, requiredTexts, true)
	RegisterLocalizedTranslation(validate, uni, requiredWithTag, requiredTexts, true)
}

// RegisterLocalizedTranslation registers one text per locale for the specified validation tag.
// Locales without a text get the English one.
func RegisterLocalizedTranslation(validate *validator.Validate, uni *ut.UniversalTranslator, tag string, texts map[string]string, override ...bool) {
	for _, locale := range Locales {
		trans, ok := uni.GetTranslator(locale)
		if !ok {
			continue
		}
		text, ok := texts[locale]
		if !ok {
			text = texts["en"]
		}
		RegisterCustomTranslation(validate, trans, tag, text, override...)
	}
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// FindTranslator returns the translator of the first supported locale, or the fallback one.
// Locales may be given as "fr", "fr-FR" or "fr_FR".
func FindTranslator(uni *ut.UniversalTranslator, locales ...string) ut.Translator {
	candidates := make([]string, 0, len(locales)*2)
	for _, l := range locales {
		l = strings.ToLower(strings.ReplaceAll(CleanString(l), "-", "_"))
		if l == "" {
			continue
		}
		candidates = append(candidates, l)
		if i := strings.Index(l, "_"); i > 0 {
			candidates = append(candidates, l[:i])
		}
	}
	trans, _ := uni.FindTranslator(candidates...)
	return trans
}

// Custom Global Validators

// phoneValidation allows digits, spaces, and the usual separators with an optional leading "+".
func phoneValidation(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}
