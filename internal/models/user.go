package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Email           string     `json:"email" db:"email"`
	Username        string     `json:"username" db:"username"`
	PasswordHash    string     `json:"-" db:"password"` // Never serialize in JSON
	FirstName       *string    `json:"firstName" db:"first_name"`
	LastName        *string    `json:"lastName" db:"last_name"`
	Roles           []string   `json:"roles" db:"roles"`
	IsActive        bool       `json:"isActive" db:"is_active"`
	ActivationToken *string    `json:"-" db:"activation_token"`
	OrganizationID  *uuid.UUID `json:"-" db:"organization_id"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// GetRoles returns the stored roles plus ROLE_USER, without duplicates.
func (u *User) GetRoles() []string {
	return EffectiveRoles(u.Roles)
}

// DisplayName is the name used to greet the user in emails.
func (u *User) DisplayName() string {
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	return u.Username
}

// MarshalJSON renders the organization as an IRI and the effective role set.
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		Roles        []string `json:"roles"`
		Organization *string  `json:"organization"`
	}{
		alias:        alias(u),
		Roles:        EffectiveRoles(u.Roles),
		Organization: OrganizationIRI(u.OrganizationID),
	})
}
