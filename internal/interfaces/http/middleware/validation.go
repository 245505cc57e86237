package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/webstudio/backend/internal/domain/lead"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/interfaces/http/dto"
)

// siteRule is a custom binding tag and the message shown when it fails
type siteRule struct {
	valid   func(string) bool
	message string
}

var siteRules = map[string]siteRule{
	"locale": {func(s string) bool { return shared.Locale(s).IsValid() }, "Must be one of: cs de en"},
	"slug":   {shared.IsValidSlug, "Use lowercase letters, digits and hyphens"},
	"phone":  {lead.IsValidPhone, "Invalid phone number"},
}

// fixed messages for tags without a parameter
var tagMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"uuid":     "Invalid UUID format",
	"url":      "Invalid URL format",
	"http_url": "Invalid URL format",
}

// SetupValidator teaches gin's validator the site tags and makes it report
// fields by their json name.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerValidators(v)
	}
}

func registerValidators(v *validator.Validate) {
	v.RegisterTagNameFunc(fieldName)
	for tag, rule := range siteRules {
		valid := rule.valid
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		})
	}
}

func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		name, _, _ = strings.Cut(f.Tag.Get("form"), ",")
	}
	return name
}

// HandleValidationError answers a failed bind: 413 for an oversized body,
// otherwise 400 with one detail per invalid field.
func HandleValidationError(c *gin.Context, err error) {
	if isTooLarge(err) {
		abortTooLarge(c)
		return
	}
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// FormatValidationErrors builds the validation envelope. Errors that are not
// field errors, such as malformed JSON, produce no details.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fields validator.ValidationErrors
	var details []dto.ValidationDetail
	if errors.As(err, &fields) {
		details = make([]dto.ValidationDetail, 0, len(fields))
		for _, fe := range fields {
			details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: describe(fe)})
		}
	}
	return dto.Invalid("Request validation failed", requestID, details)
}

func describe(fe validator.FieldError) string {
	tag, p := fe.Tag(), fe.Param()
	if msg, ok := tagMessages[tag]; ok {
		return msg
	}
	if rule, ok := siteRules[tag]; ok {
		return rule.message
	}
	switch tag {
	case "min":
		return bound("at least", p, fe.Type().Kind())
	case "max":
		return bound("at most", p, fe.Type().Kind())
	case "oneof":
		return "Must be one of: " + p
	case "gt":
		return "Must be greater than " + p
	case "gte":
		return "Must be greater than or equal to " + p
	case "lte":
		return "Must be less than or equal to " + p
	}
	return "Invalid value"
}

func bound(rel, n string, k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "Must be " + rel + " " + n + " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return "Must contain " + rel + " " + n + " items"
	}
	return "Must be " + rel + " " + n
}
