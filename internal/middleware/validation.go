package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	customrules "github.com/jwalitptl/booking-api/pkg/validator"
)

// ValidationError represents a single failed field check.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationConfig represents validation middleware configuration
type ValidationConfig struct {
	CustomValidators    map[string]validator.Func
	CustomErrorMessages map[string]string
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		CustomValidators: customrules.Rules(),
		CustomErrorMessages: map[string]string{
			"required": "field is required",
			"email":    "must be a valid email address",
			"min":      "value is too short",
			"max":      "value is too long",
			"phone":    "must be a valid phone number",
			"timeslot": "must be a time such as 10:30",
		},
	}
}

// Validation registers the custom binding rules with gin's validator engine
// and renders field-level errors for requests that fail binding. Errors that
// are not validation failures fall through to the error handler, so this
// middleware must sit inside ErrorHandler in the chain.
func Validation(config ValidationConfig) gin.HandlerFunc {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		for tag, fn := range config.CustomValidators {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(err)
			}
		}

		// Report field names as clients sent them, not as Go struct fields.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	}

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		var fieldErrors []ValidationError
		for _, err := range c.Errors {
			var verrs validator.ValidationErrors
			if !errors.As(err.Err, &verrs) {
				continue
			}
			for _, e := range verrs {
				msg := config.CustomErrorMessages[e.Tag()]
				if msg == "" {
					msg = e.Error()
				}
				fieldErrors = append(fieldErrors, ValidationError{
					Field:   e.Field(),
					Message: msg,
				})
			}
		}

		if len(fieldErrors) > 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"status": "error",
				"errors": fieldErrors,
			})
		}
	}
}
