package profile

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/agentstation/userdetails/pkg/errors"
)

// Field names as they appear in JSON, form posts and validation errors.
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldEmail       = "email"
	FieldPhoneNumber = "phoneNumber"
	FieldGender      = "gender"
	FieldDateOfBirth = "dob"
	FieldTechStack   = "techStack"
)

// Validation patterns.
const (
	RegexName  = `^[A-Za-z]+$`
	RegexEmail = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
	RegexPhone = `^\+91\d{10}$`
)

var (
	nameRe  = regexp.MustCompile(RegexName)
	emailRe = regexp.MustCompile(RegexEmail)
	phoneRe = regexp.MustCompile(RegexPhone)
)

type messages struct {
	required string
	mismatch string
}

var fieldMessages = map[string]messages{
	FieldFirstName:   {"First Name is required", "First Name is incorrect"},
	FieldLastName:    {"Last Name is required", "Last Name is incorrect"},
	FieldEmail:       {"Email is required", "Invalid email format"},
	FieldPhoneNumber: {"Phone number is required", "Invalid phone number format. Use +91 followed by 10 digits."},
	FieldGender:      {"Gender is required", "Gender must be one of male, female, other"},
	FieldDateOfBirth: {"DOB is required", ""},
	FieldTechStack:   {"Enter a tech stack", ""},
}

// TechStackEntryMessage is reported for each blank tech stack entry.
const TechStackEntryMessage = "Add at least one Tech Stack"

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonName)
	validate.RegisterValidation("alpha_name", validatePattern(nameRe))
	validate.RegisterValidation("email_address", validatePattern(emailRe))
	validate.RegisterValidation("in_phone", validatePattern(phoneRe))
	validate.RegisterValidation("gender", validateGender)
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func validatePattern(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func validateGender(fl validator.FieldLevel) bool {
	_, ok := ParseGender(fl.Field().String())
	return ok
}

// TechStackField returns the error field name of the entry at index i.
func TechStackField(i int) string {
	return FieldTechStack + "." + strconv.Itoa(i)
}

// Validate checks every field of in independently and returns all failures
// in field order. A nil result means in is valid.
func Validate(in Input) errors.ValidationErrors {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ValidationErrors{
			errors.NewValidationError("", errors.PatternMismatch, nil, err.Error()),
		}
	}

	var out errors.ValidationErrors
	entryErrors := false
	for _, fe := range fieldErrs {
		field := fe.Field()
		if strings.HasPrefix(field, FieldTechStack+"[") {
			idx, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(field, FieldTechStack+"["), "]"))
			out = append(out, errors.NewValidationError(TechStackField(idx), errors.Required, fe.Value(), TechStackEntryMessage))
			entryErrors = true
			continue
		}

		msgs := fieldMessages[field]
		kind, msg := errors.PatternMismatch, msgs.mismatch
		if fe.Tag() == "required" || fe.Tag() == "min" {
			kind, msg = errors.Required, msgs.required
		}
		out = append(out, errors.NewValidationError(field, kind, fe.Value(), msg))
	}

	// A blank entry also flags the list as a whole, matching the inline
	// message rendered under the tech stack inputs.
	if entryErrors && out.For(FieldTechStack) == nil {
		out = append(out, errors.NewValidationError(FieldTechStack, errors.Required, in.TechStack, fieldMessages[FieldTechStack].required))
	}
	return out
}
