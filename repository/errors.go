package repository

import "errors"

var (
	// ErrAmbiguousResult is returned by the find-one queries when more than one row matches.
	ErrAmbiguousResult = errors.New("query returned more than one result")
	// ErrConstraintViolation is returned when an answer's parent question does not resolve.
	ErrConstraintViolation = errors.New("answer must reference an existing question")
)
