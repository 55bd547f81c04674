package handlers

import (
	"LostFound/internal/model"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	alphaSpaceRe = regexp.MustCompile(`^[A-Za-z\s]+$`)
	hhmmRe       = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	phoneRe      = regexp.MustCompile(`^\d{10}$`)
)

// newValidator собирает валидатор входных структур с доменными правилами.
// campusemail замыкается на список допустимых доменов из конфигурации.
func newValidator(emailDomains []string) *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpaceRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.ValidCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("campusemail", func(fl validator.FieldLevel) bool {
		email := strings.ToLower(fl.Field().String())
		at := strings.LastIndex(email, "@")
		if at < 0 {
			return false
		}
		domain := email[at+1:]
		for _, allowed := range emailDomains {
			if domain == strings.ToLower(allowed) {
				return true
			}
		}
		return false
	})

	return v
}

// validationMessage превращает первую ошибку валидации в сообщение клиенту.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		switch e.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", e.Field())
		case "email", "campusemail":
			return "email must belong to an allowed campus domain"
		case "phone10":
			return "phone number must be 10 digits"
		case "alphaspace":
			return fmt.Sprintf("%s must contain only letters and spaces", e.Field())
		case "hhmm":
			return "time must be in HH:MM format"
		case "category":
			return "unknown category"
		case "oneof":
			return fmt.Sprintf("%s has an invalid value", e.Field())
		case "min":
			return fmt.Sprintf("%s is too short", e.Field())
		case "max":
			return fmt.Sprintf("%s is too long", e.Field())
		}
		return fmt.Sprintf("%s is invalid", e.Field())
	}
	return "invalid request"
}
