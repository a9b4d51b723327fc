package domain

import "errors"

var (
	// ErrMalformedURL is returned when a destination link cannot be parsed.
	ErrMalformedURL = errors.New("malformed url")

	// ErrMissingRequiredField is returned when a required input is empty.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrIndexOutOfRange is returned when a record position does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidSelection is returned when a value is not one of the offered options.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrNothingToSave is returned when saving without both a campaign name and a URL.
	ErrNothingToSave = errors.New("nothing to save")
)
