package services

import (
	"errors"
	"fmt"

	"github.com/coursehub/exam-service/internal/validator"
)

// Generic errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
)

// Exam lifecycle errors. Each wraps its generic parent so handlers can map by category.
var (
	ErrExamNotFound         = fmt.Errorf("exam %w", ErrNotFound)
	ErrResultNotFound       = fmt.Errorf("exam result %w", ErrNotFound)
	ErrEnrollmentNotFound   = fmt.Errorf("enrollment %w", ErrNotFound)
	ErrCourseNotFound       = fmt.Errorf("course %w", ErrNotFound)
	ErrCertificateNotPassed = fmt.Errorf("%w: exam not passed", ErrForbidden)
	ErrCourseAlreadyHasExam = fmt.Errorf("%w: course already has an exam", ErrConflict)
	ErrCertificateRender    = errors.New("certificate could not be rendered")
)

type ValidationError = validator.ValidationError
type ValidationErrors = validator.ValidationErrors

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    "business_logic",
	}
}

// BusinessRuleError reports a request that is well-formed but violates a domain rule.
type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

// RenderError wraps the cause of a failed certificate render.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCertificateRender, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() []error {
	return []error{ErrCertificateRender, e.Err}
}
