package validate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"seenstudio/internal/apperr"
	"seenstudio/internal/domain"
)

// FieldErrors maps a JSON field name to a human readable message.
type FieldErrors map[string]string

var (
	reBasicEmail = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	reExpiry     = regexp.MustCompile(`^(0[1-9]|1[0-2])\s?/\s?[0-9]{2}$`)
	reCVV        = regexp.MustCompile(`^[0-9]{3,4}$`)
	reDigits     = regexp.MustCompile(`^[0-9]+$`)
)

var labels = map[string]string{
	"firstName":      "First name",
	"lastName":       "Last name",
	"email":          "Email",
	"phone":          "Phone",
	"address":        "Address",
	"addressLine1":   "Address",
	"city":           "City",
	"state":          "State",
	"postalCode":     "Postal code",
	"country":        "Country",
	"cardholderName": "Cardholder name",
	"cardNumber":     "Card number",
	"expiryDate":     "Expiry date",
	"cvv":            "CVV",
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	must := func(tag string, fn validator.Func) {
		if err := val.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("basicemail", func(fl validator.FieldLevel) bool {
		return reBasicEmail.MatchString(fl.Field().String())
	})
	must("cardnumber", func(fl validator.FieldLevel) bool {
		digits := strings.Join(strings.Fields(fl.Field().String()), "")
		return len(digits) >= 16 && reDigits.MatchString(digits)
	})
	must("cvv", func(fl validator.FieldLevel) bool {
		return reCVV.MatchString(fl.Field().String())
	})
	must("expiry", func(fl validator.FieldLevel) bool {
		return reExpiry.MatchString(fl.Field().String())
	})
	must("shipcountry", func(fl validator.FieldLevel) bool {
		return domain.ShipsTo(fl.Field().String())
	})
	must("hexcolor6", func(fl validator.FieldLevel) bool {
		return HexColor(fl.Field().String())
	})
	val.RegisterStructValidation(shippingRules, domain.ShippingInfo{})
	return val
}

// shippingRules adds the country dependent requirements.
func shippingRules(sl validator.StructLevel) {
	info := sl.Current().Interface().(domain.ShippingInfo)
	if info.Country != domain.CountryUS {
		return
	}
	if strings.TrimSpace(info.State) == "" {
		sl.ReportError(info.State, "state", "State", "required", "")
	}
	if strings.TrimSpace(info.PostalCode) == "" {
		sl.ReportError(info.PostalCode, "postalCode", "PostalCode", "required", "")
	}
}

// Struct runs the tag rules on s and returns nil when it is valid.
func Struct(s any) FieldErrors {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"_": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range errs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	label, ok := labels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "basicemail", "email":
		return "Please enter a valid email"
	case "cardnumber":
		return "Please enter a valid card number"
	case "cvv":
		return "Please enter a valid CVV"
	case "expiry":
		return "Please enter a valid expiry date (MM/YY)"
	case "min":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	case "shipcountry":
		return "We only ship to the United States and Georgia"
	case "hexcolor6":
		return label + " must be a #rrggbb color"
	}
	return label + " is invalid"
}

// Body decodes the JSON request body into dest and validates it.
func Body(c *fiber.Ctx, dest any) error {
	if err := json.Unmarshal(c.Body(), dest); err != nil {
		return apperr.Wrap(apperr.CodeValidation, err, "invalid request body").
			WithDetails(map[string]string{"body": "must be valid JSON"})
	}
	if fe := Struct(dest); fe != nil {
		return apperr.New(apperr.CodeValidation, "validation failed").WithDetails(fe)
	}
	return nil
}
