package forms

import (
	"errors"  // Error inspection
	"fmt"     // Message formatting
	"net/url" // Portfolio URL schemes
	"reflect" // Tag lookup for field names
	"regexp"  // Username charset
	"strings" // Tag parsing

	"github.com/gin-gonic/gin/binding"                               // Gin binding engine
	"github.com/go-playground/validator/v10"                         // Field validation
	"github.com/go-playground/validator/v10/non-standard/validators" // Blank checks
)

// NonFieldErrors collects errors that belong to the form as a whole
const NonFieldErrors = "__all__"

// User-facing messages
const (
	MsgRequired        = "This field is required."
	MsgInvalidEmail    = "Enter a valid email address."
	MsgInvalidURL      = "Enter a valid URL."
	MsgInvalidUsername = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgInvalid         = "Enter a valid value."
	MsgInvalidRequest  = "Invalid request"
)

// ValidationError is a failed check scoped to one form field
type ValidationError struct {
	Field   string // Name of the offending input
	Message string // User-facing message
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Errors maps field names to their messages, in the order they were raised
type Errors map[string][]string

// Add appends msg to field
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// AddError records err under its field, or as a non-field error
func (e Errors) AddError(err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		e.Add(ve.Field, ve.Message)
		return
	}
	e.Add(NonFieldErrors, err.Error())
}

// Has reports whether field failed validation
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Valid reports whether no error was recorded
func (e Errors) Valid() bool {
	return len(e) == 0
}

// FromBinding translates a gin binding error into field errors. A nil error yields an empty set.
func FromBinding(err error) Errors {
	errs := Errors{}
	if err == nil {
		return errs
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		errs.Add(NonFieldErrors, MsgInvalidRequest) // Malformed body
		return errs
	}
	for _, fe := range ves {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return MsgRequired
	case "email":
		return MsgInvalidEmail
	case "url", "weburl":
		return MsgInvalidURL
	case "username":
		return MsgInvalidUsername
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), len([]rune(fmt.Sprint(fe.Value()))))
	}
	return MsgInvalid
}

var usernameRE = regexp.MustCompile(`^[\pL\pM\pN.@+_-]+$`) // Letters, marks, digits and @/./+/-/_

// webSchemes are the URL schemes a portfolio link may use
var webSchemes = map[string]bool{"http": true, "https": true, "ftp": true, "ftps": true}

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// Report fields by their input name rather than the Go field name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				continue
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRE.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && webSchemes[strings.ToLower(u.Scheme)] && u.Host != ""
	})
}
