package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// Setup registers the validator with English translations on Gin's binding engine,
// plus the `clock` (HH:MM[:SS]) and `weeks` (each week in 1..semesterWeeks) tags.
// Call once during application startup.
func Setup(semesterWeeks int) {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		register(v, semesterWeeks)
	}
}

// New returns a standalone validator configured like the Gin one, for code paths
// that validate outside an HTTP request (imports).
func New(semesterWeeks int) *govalidator.Validate {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	register(v, semesterWeeks)
	return v
}

func register(v *govalidator.Validate, semesterWeeks int) {
	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("clock", func(fl govalidator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("weeks", func(fl govalidator.FieldLevel) bool {
		return validWeeks(fl.Field(), semesterWeeks)
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	registerMessage(v, "clock", "{0} must be a time in HH:MM format")
	registerMessage(v, "weeks", "{0} must only contain weeks between 1 and "+strconv.Itoa(semesterWeeks))
}

func validWeeks(field reflect.Value, max int) bool {
	if field.Kind() != reflect.Slice {
		return false
	}
	seen := make(map[int64]bool, field.Len())
	for i := 0; i < field.Len(); i++ {
		w := field.Index(i).Int()
		if w < 1 || w > int64(max) || seen[w] {
			return false
		}
		seen[w] = true
	}
	return true
}

func registerMessage(v *govalidator.Validate, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error { return ut.Add(tag, text, true) },
		func(ut ut.Translator, fe govalidator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field())
			return msg
		},
	)
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindQuery binds and validates query parameters into dst.
func BindQuery(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindQuery(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
