// Package validation holds the request validators shared by the HTTP handlers.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	TagIdentityNumber = "identitetsnummer"
	TagOrgNumber      = "orgnr"
)

// FieldError is one failed constraint in the response body.
type FieldError struct {
	PropertyPath string `json:"propertyPath"`
	Message      string `json:"message"`
	Value        any    `json:"invalidValue,omitempty"`
}

var messages = map[string]string{
	"required":        "Feltet '%s' er påkrevd.",
	"min":             "Feltet '%s' må ha minst %s elementer eller tegn.",
	"max":             "Feltet '%s' kan ha maks %s elementer eller tegn.",
	"gte":             "Feltet '%s' må være større enn eller lik %s.",
	"lte":             "Feltet '%s' må være mindre enn eller lik %s.",
	"gtefield":        "Feltet '%s' kan ikke være før %s.",
	TagIdentityNumber: "Feltet '%s' er ikke et gyldig identitetsnummer.",
	TagOrgNumber:      "Feltet '%s' er ikke et gyldig organisasjonsnummer.",
}

// Register adds the Norwegian number validators and makes errors report JSON field names.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation(TagIdentityNumber, func(fl validator.FieldLevel) bool {
		return ValidIdentityNumber(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("registering %s: %w", TagIdentityNumber, err)
	}
	if err := v.RegisterValidation(TagOrgNumber, func(fl validator.FieldLevel) bool {
		return ValidOrgNumber(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("registering %s: %w", TagOrgNumber, err)
	}
	return nil
}

// RegisterGin installs the validators on gin's binding engine.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return Register(v)
}

// Errors turns a validator error into response field errors. Other errors yield nil.
func Errors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := trimRoot(fe.Namespace())
		out = append(out, FieldError{
			PropertyPath: path,
			Message:      message(path, fe),
			Value:        fe.Value(),
		})
	}
	return out
}

func message(path string, fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("Feltet '%s' er ugyldig: %s", path, fe.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, path, fe.Param())
	}
	return fmt.Sprintf(msg, path)
}

// trimRoot drops the struct name validator puts in front of the namespace.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

var (
	identityWeights1 = []int{3, 7, 6, 1, 8, 9, 4, 5, 2}
	identityWeights2 = []int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}
	orgWeights       = []int{3, 2, 7, 6, 5, 4, 3, 2}
)

// ValidIdentityNumber checks the two mod 11 control digits of an 11 digit
// fødselsnummer or D-nummer.
func ValidIdentityNumber(s string) bool {
	if len(s) != 11 || !digitsOnly(s) {
		return false
	}
	return controlDigit(s, identityWeights1) == int(s[9]-'0') &&
		controlDigit(s, identityWeights2) == int(s[10]-'0')
}

// ValidOrgNumber checks the mod 11 control digit of a 9 digit organisasjonsnummer.
func ValidOrgNumber(s string) bool {
	if len(s) != 9 || !digitsOnly(s) {
		return false
	}
	return controlDigit(s, orgWeights) == int(s[8]-'0')
}

// controlDigit returns -1 when no valid control digit exists.
func controlDigit(s string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(s[i]-'0') * w
	}
	switch k := 11 - sum%11; k {
	case 11:
		return 0
	case 10:
		return -1
	default:
		return k
	}
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
