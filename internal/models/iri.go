package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	UsersPath         = "/api/users/"
	OrganizationsPath = "/api/organizations/"
)

var ErrInvalidReference = errors.New("invalid resource reference")

func UserIRI(id uuid.UUID) string {
	return UsersPath + id.String()
}

// OrganizationIRI returns nil for users without an organization.
func OrganizationIRI(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	iri := OrganizationsPath + id.String()
	return &iri
}

// ParseOrganizationRef accepts either "/api/organizations/{id}" or a bare UUID.
func ParseOrganizationRef(ref string) (uuid.UUID, error) {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, OrganizationsPath)
	if strings.Contains(ref, "/") {
		return uuid.Nil, ErrInvalidReference
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, ErrInvalidReference
	}
	return id, nil
}
