package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"boscov/client/internal/utils"

	govalidator "github.com/go-playground/validator/v10"
)

func getFieldName(obj any, origFieldName string) (fieldName string) {
	t := reflect.TypeOf(obj)
	field, found := t.FieldByName(origFieldName)
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", origFieldName, t.Name()))
	}
	if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
		jsonName := strings.Split(tag, ",")[0]
		if jsonName != "" {
			fieldName = jsonName
		}
	} else {
		fieldName = utils.CamelToSnake(origFieldName)
	}
	return
}

func ProcessValidationErrors(obj any, errs govalidator.ValidationErrors) map[string]string {
	processedErrors := make(map[string]string)
	for _, e := range errs {
		processedErrors[getFieldName(obj, e.StructField())] = GetErrorMsgForField(obj, e)
	}
	return processedErrors
}

func ValidateStruct(validator *govalidator.Validate, obj any) (validationErrs map[string]string) {
	if err := validator.Struct(obj); err != nil {
		validationErrs = ProcessValidationErrors(obj, err.(govalidator.ValidationErrors))
	}
	return
}

func GetErrorMsgForField(obj any, err govalidator.FieldError) (errorMsg string) {
	t := reflect.TypeOf(obj)
	field, found := t.FieldByName(err.StructField())
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", err.StructField(), t.Name()))
	}
	errorMsg = field.Tag.Get("errorMsg")
	if errorMsg == "" {
		switch err.Tag() {
		case "required":
			errorMsg = "This field is required"
		case "max":
			errorMsg = fmt.Sprintf("The maximum value is %s", err.Param())
		case "min":
			errorMsg = fmt.Sprintf("The minimum value is %s", err.Param())
		case "gte":
			errorMsg = fmt.Sprintf("Value should be greater than or equal to %s", err.Param())
		case "lte":
			errorMsg = fmt.Sprintf("Value should be less than or equal to %s", err.Param())
		case "lt":
			errorMsg = fmt.Sprintf("Value should be less than %s", err.Param())
		case "gt":
			errorMsg = fmt.Sprintf("Value should be greater than %s", err.Param())
		case "eqfield", "eq":
			errorMsg = fmt.Sprintf("Value should be equal to %s", err.Param())
		case "nefield", "ne":
			errorMsg = fmt.Sprintf("Value should not be equal to %s", err.Param())
		case "oneof":
			errorMsg = fmt.Sprintf("Value should be one of %s", err.Param())
		case "len":
			errorMsg = fmt.Sprintf("Length should be equal to %s", err.Param())
		case "unique":
			errorMsg = "Value must not contain duplicate values"
		case "url":
			errorMsg = "Value must be a valid URL"
		case "email":
			errorMsg = "Value must be a valid email address"
		case "alphanum":
			errorMsg = "Value must be alphanumeric"
		case "contentrating":
			errorMsg = "Value must be 'Livre' or an age followed by '+' (e.g. 12+)"
		case "releaseyear":
			errorMsg = fmt.Sprintf("Value must be a year between 1888 and %d", time.Now().Year())
		case "notfuture":
			errorMsg = "Value must be a valid date and cannot be in the future"
		default:
			errorMsg = "This field is invalid"
		}
	}
	return
}

// CUSTOM VALIDATORS

var contentRatingRe = regexp.MustCompile(`^(Livre|\d+\+)$`)

// ValidateContentRating accepts the free-text classification tokens the API
// uses: "Livre" or digits followed by '+'.
func ValidateContentRating(fl govalidator.FieldLevel) bool {
	return contentRatingRe.MatchString(fl.Field().String())
}

// ValidateReleaseYear bounds a movie's release year to [1888, current year].
func ValidateReleaseYear(fl govalidator.FieldLevel) bool {
	year := int(fl.Field().Int())
	return year >= 1888 && year <= time.Now().Year()
}

// ValidateNotFuture parses a "2006-01-02" string and accepts it when the date
// is not after today truncated to local midnight.
func ValidateNotFuture(fl govalidator.FieldLevel) bool {
	parsed, err := time.ParseInLocation("2006-01-02", fl.Field().String(), time.Local)
	if err != nil {
		return false
	}
	now := time.Now().In(time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	return !parsed.After(today)
}

// New returns a validator with the client's custom rules registered.
func New() *govalidator.Validate {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	mustRegister(v, "contentrating", ValidateContentRating)
	mustRegister(v, "releaseyear", ValidateReleaseYear)
	mustRegister(v, "notfuture", ValidateNotFuture)
	return v
}

func mustRegister(v *govalidator.Validate, name string, fn govalidator.Func) {
	if err := v.RegisterValidation(name, fn); err != nil {
		panic(err)
	}
}
