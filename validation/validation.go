// Package validation defines, once, the acceptance rules for each submission
// entity. The server handlers and the client form controller both use it, so
// the two sides can never disagree about what is valid.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ApplicationData is the JSON payload carried in the multipart
// `applicationData` field.
type ApplicationData struct {
	FirstName           string `json:"firstName" validate:"required,min=2,max=50,personname"`
	LastName            string `json:"lastName" validate:"required,min=2,max=50,personname"`
	Email               string `json:"email" validate:"required,max=100,email"`
	Phone               string `json:"phone" validate:"required,min=7,max=20,phonechars"`
	DateOfBirth         string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Nationality         string `json:"nationality" validate:"omitempty,max=100"`
	City                string `json:"city" validate:"omitempty,max=100"`
	Country             string `json:"country" validate:"omitempty,max=100"`
	VocalRange          string `json:"vocalRange" validate:"required,oneof=soprano mezzo-soprano alto countertenor tenor baritone bass"`
	YearsSinging        string `json:"yearsSinging" validate:"omitempty,max=20"`
	MusicalBackground   string `json:"musicalBackground" validate:"required,min=50,max=3000"`
	ReasonForApplying   string `json:"reasonForApplying" validate:"required,min=100,max=3000"`
	HeardAboutUs        string `json:"heardAboutUs" validate:"required,max=100"`
	DietaryRestriction  string `json:"dietaryRestriction" validate:"omitempty,oneof=none vegetarian vegan gluten-free lactose-free other"`
	DietaryDetail       string `json:"dietaryDetail" validate:"required_if=DietaryRestriction other,max=200"`
	ScholarshipInterest bool   `json:"scholarshipInterest"`
	TermsAgreed         bool   `json:"termsAgreed" validate:"eq=true"`
	Source              string `json:"source" validate:"omitempty,max=100"`
}

// ContactData is the body of the legacy contact form.
type ContactData struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,max=100,email"`
	Message string `json:"message" validate:"omitempty,max=3000"`
}

// ContactSubmissionData is the body of the newer contact form variant.
type ContactSubmissionData struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,max=100,email"`
	VocalType string `json:"vocalType" validate:"omitempty,max=50"`
	Message   string `json:"message" validate:"omitempty,max=3000"`
	Source    string `json:"source" validate:"omitempty,max=100"`
}

// SignupData is a lead captured by the marketing popup.
type SignupData struct {
	Email    string `json:"email" validate:"required,max=100,email"`
	Source   string `json:"source" validate:"omitempty,max=100"`
	Variant  string `json:"variant" validate:"omitempty,max=50"`
	PagePath string `json:"pagePath" validate:"omitempty,max=200"`
}

// FieldError is one (field, message) pair produced by a failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	nameRe  = regexp.MustCompile(`^[\p{L}' -]+$`)
	phoneRe = regexp.MustCompile(`^[0-9+\-() ]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report errors under the JSON field name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return nameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phonechars", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})

	return v
}

// ValidateApplication checks the full application payload.
func ValidateApplication(data *ApplicationData) []FieldError {
	return toFieldErrors(validate.Struct(data))
}

// ValidateApplicationFields checks only the named struct fields (Go field
// names). The client form controller uses this to validate one wizard step at
// a time with exactly the same rules the server applies on submit.
func ValidateApplicationFields(data *ApplicationData, fields ...string) []FieldError {
	return toFieldErrors(validate.StructPartial(data, fields...))
}

func ValidateContact(data *ContactData) []FieldError {
	return toFieldErrors(validate.Struct(data))
}

func ValidateContactSubmission(data *ContactSubmissionData) []FieldError {
	return toFieldErrors(validate.Struct(data))
}

func ValidateSignup(data *SignupData) []FieldError {
	return toFieldErrors(validate.Struct(data))
}

// Join flattens field errors into the single human-readable string used in
// API error responses.
func Join(errs []FieldError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

func toFieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required when dietary restriction is \"other\""
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eq":
		// Only TermsAgreed uses eq; a missing or false value is rejected,
		// never defaulted to accepted.
		return "must be accepted"
	case "personname":
		return "may only contain letters, hyphens, apostrophes and spaces"
	case "phonechars":
		return "may only contain digits, spaces and + - ( )"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("is invalid (%s)", fe.Tag())
	}
}
