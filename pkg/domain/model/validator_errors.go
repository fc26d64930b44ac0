package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrMissingRequired = goerr.New("required field is missing")
	ErrTooShort        = goerr.New("field value is too short")
	ErrInvalidEmail    = goerr.New("invalid email address")
	ErrInvalidPriority = goerr.New("invalid ticket priority")
)

// Context keys for error values
const (
	FieldNameKey  = "field_name"
	MinLengthKey  = "min_length"
	FieldValueKey = "field_value"
)
