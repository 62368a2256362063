package extract

import (
	"errors"
	"fmt"

	"github.com/ppiankov/larder/internal/model"
)

// ErrNoRecipe means no structured recipe data was found on the page
var ErrNoRecipe = errors.New("no recipe found")

// MissingFieldError reports a required field that is absent or empty
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing field: " + e.Field
}

// InvalidJSONError reports a field present with the wrong shape
type InvalidJSONError struct {
	Reason string
}

func (e *InvalidJSONError) Error() string {
	return "invalid JSON: " + e.Reason
}

// FallbackError is returned when every strategy failed. Err is the error of
// the last strategy tried (microdata, the richer diagnostic); JSONLDErr is
// the JSON-LD strategy's error. errors.Is and errors.As see both.
type FallbackError struct {
	Err       error
	JSONLDErr error
	Attempts  []model.ExtractionAttempt
}

func (e *FallbackError) Error() string {
	if e.JSONLDErr == nil || e.JSONLDErr == e.Err {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (json-ld: %v)", e.Err, e.JSONLDErr)
}

func (e *FallbackError) Unwrap() []error {
	if e.JSONLDErr == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.JSONLDErr}
}

func missingField(field string) error {
	return &MissingFieldError{Field: field}
}

func invalidJSON(reason string) error {
	return &InvalidJSONError{Reason: reason}
}
