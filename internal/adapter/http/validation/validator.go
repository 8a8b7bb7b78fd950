package validation

import (
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"userdir/internal/core/model/response"
)

var (
	Validator  *validator.Validate
	Translator ut.Translator
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)

	var found bool
	Translator, found = uni.GetTranslator("en")

	if !found {
		panic("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(Validator, Translator); err != nil {
		panic(err)
	}

	addCustomTranslations()
}

func addCustomTranslations() {
	Validator.RegisterTranslation("required", Translator, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is required", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", getFieldName(fe.Field()))
		return t
	})

	Validator.RegisterTranslation("max", Translator, func(ut ut.Translator) error {
		return ut.Add("max", "{0} must be at most {1} characters", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("max", getFieldName(fe.Field()), fe.Param())
		return t
	})

	Validator.RegisterTranslation("oneof", Translator, func(ut ut.Translator) error {
		return ut.Add("oneof", "{0} must be one of: {1}", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("oneof", getFieldName(fe.Field()), strings.ReplaceAll(fe.Param(), " ", ", "))
		return t
	})
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Text":   "Text",
		"Name":   "Name",
		"Email":  "Email",
		"City":   "City",
		"Phone":  "Phone",
		"Img":    "Image",
		"Status": "Status",
		"Search": "Search",
	}

	if name, exists := fieldNames[field]; exists {
		return name
	}

	return field
}

func FormatValidationErrors(err error) []response.ValidationError {
	var errors []response.ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			errors = append(errors, response.ValidationError{
				Field:   strings.ToLower(fieldError.Field()),
				Message: fieldError.Translate(Translator),
			})
		}
	}

	return errors
}
