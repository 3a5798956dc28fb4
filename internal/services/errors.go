package services

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserInactive        = errors.New("user account has been deactivated, contact the administrator")
	ErrUserNotFound        = errors.New("user not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrInvalidAction       = errors.New("invalid action type")
	ErrInvalidDependencies = errors.New("some dependencies are invalid or do not exist")
	ErrInvalidToken        = errors.New("invalid or expired token")
)
