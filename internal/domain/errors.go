package domain

import "errors"

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")
	ErrMatchNotFound        = errors.New("match not found")
	ErrInvalidCohort        = errors.New("invalid cohort")
	ErrInvalidStatus        = errors.New("invalid match status")
	ErrSelfMatch            = errors.New("cannot match a profile with itself")
)
