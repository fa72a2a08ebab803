package core

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"maizecast/internal/reference"
	"maizecast/internal/types"
)

// Validator wraps go-playground/validator and registers the domain rules
// request payloads rely on: known Ghana districts and soil types.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a Validator with the custom "district" and "soiltype"
// tags registered. Field names in validation errors use the json tag so
// clients see the wire names they sent.
func NewValidator(logger *slog.Logger) (*Validator, error) {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("district", func(fl validator.FieldLevel) bool {
		return reference.IsKnownDistrict(fl.Field().String())
	}); err != nil {
		return nil, err
	}

	if err := v.RegisterValidation("soiltype", func(fl validator.FieldLevel) bool {
		return types.IsKnownSoilType(types.SoilType(fl.Field().String()))
	}); err != nil {
		return nil, err
	}

	return &Validator{validate: v, logger: logger}, nil
}

// ValidateStruct runs struct validation on s. On failure it returns a
// *types.AppError whose code reflects the first failing rule and whose
// details map every failing field to a human-readable reason.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		// Struct validation was invoked on a non-struct value; this is a
		// programming error, not a client error.
		return types.NewAppError(types.ErrCodeInternalUnexpected, "request validation could not run", err)
	}

	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = describeFailure(fe)
	}

	return types.NewAppErrorWithDetails(
		codeForTag(verrs[0].Tag()),
		"request validation failed",
		err,
		details,
	)
}

// codeForTag maps a validator tag to the matching domain error code.
func codeForTag(tag string) types.ErrorCode {
	switch tag {
	case "required":
		return types.ErrCodeValidationMissingField
	case "district":
		return types.ErrCodeValidationUnknownDistrict
	case "soiltype":
		return types.ErrCodeValidationUnknownSoil
	case "min", "max", "gte", "lte", "gt", "lt":
		return types.ErrCodeValidationOutOfRange
	default:
		return types.ErrCodeValidationFailed
	}
}

// describeFailure renders a single field error as a short client-facing reason.
func describeFailure(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "district":
		return "is not a recognized district"
	case "soiltype":
		return "is not a recognized soil type"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
