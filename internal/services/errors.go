package services

import (
	"errors"

	"sentinel/internal/repositories"
	"sentinel/internal/validation"
)

var (
	ErrOrgLabelRequired       = errors.New("organization label is required for company admin registration")
	ErrInvalidActivationToken = errors.New("invalid activation token")
	ErrAlreadyActivated       = errors.New("account is already activated")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountNotActivated    = errors.New("account is not activated")
	ErrTooManyAttempts        = errors.New("too many failed login attempts")
	ErrNotFound               = errors.New("resource not found")
)

const (
	msgBlank        = "This value should not be blank."
	msgInvalidEmail = "This value is not a valid email address."
	msgChoice       = "The value you selected is not a valid choice."
	msgUsed         = "This value is already used."
	msgNoSuchOrg    = "Organization not found."
)

// translateWriteError turns repository write failures into client-facing
// errors. aliases renames storage field names to request field names.
func translateWriteError(err error, aliases map[string]string) error {
	if err == nil {
		return nil
	}
	if field, ok := repositories.IsUniqueViolation(err); ok {
		if alias, found := aliases[field]; found {
			field = alias
		}
		return validation.New(field, msgUsed)
	}
	if errors.Is(err, repositories.ErrReferenceNotFound) {
		return validation.New("organization", msgNoSuchOrg)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
