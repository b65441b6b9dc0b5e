package validator

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a business validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateExamCreate validates exam creation business rules
func (bv *BusinessValidator) ValidateExamCreate(req *ExamCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	// Dates before 2000 are treated as unset.
	if !req.ExamDate.IsZero() && req.ExamDate.Year() < 2000 {
		errors = append(errors, ValidationError{
			Field:   "exam_date",
			Message: "must be a real calendar date",
			Value:   req.ExamDate,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateSubmission checks the answer map before grading.
func (bv *BusinessValidator) ValidateSubmission(req *SubmitExamRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	for questionID, answer := range req.Answers {
		if questionID == 0 {
			errors = append(errors, ValidationError{
				Field:   "answers",
				Message: "question id must be positive",
				Value:   questionID,
				Rule:    "business_logic",
			})
		}
		if len(answer) > maxAnswerLength {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("answers[%d]", questionID),
				Message: fmt.Sprintf("must not exceed %d characters", maxAnswerLength),
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

const (
	maxAnswerLength    = 5000
	maxQuestionsText   = 200000
	maxEssayLength     = 60000
	minDurationMinutes = 5
	maxDurationMinutes = 480
)

func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("exam_duration", func(fl validator.FieldLevel) bool {
		d := fl.Field().Int()
		return d >= minDurationMinutes && d <= maxDurationMinutes
	})

	bv.validate.RegisterValidation("questions_text", func(fl validator.FieldLevel) bool {
		text := fl.Field().String()
		return strings.TrimSpace(text) != "" && len(text) <= maxQuestionsText
	})

	bv.validate.RegisterValidation("essay_text", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxEssayLength
	})

	bv.validate.RegisterValidation("not_zero_time", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.IsZero()
	})
}

func errorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "exam_duration":
		return fmt.Sprintf("must be between %d and %d minutes", minDurationMinutes, maxDurationMinutes)
	case "questions_text":
		return "must contain at least one question definition"
	case "essay_text":
		return fmt.Sprintf("must not exceed %d characters", maxEssayLength)
	case "not_zero_time":
		return "must be set"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
