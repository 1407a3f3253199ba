package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"sentinel/internal/models"
	"sentinel/internal/validation"

	"github.com/asaskevich/govalidator"
	ozzo "github.com/go-ozzo/ozzo-validation"
)

var emailFormat = ozzo.NewStringRule(govalidator.IsEmail, msgInvalidEmail)

func tooShort(min int) string {
	return "This value is too short. It should have " + strconv.Itoa(min) + " characters or more."
}

func tooLong(max int) string {
	return "This value is too long. It should have " + strconv.Itoa(max) + " characters or less."
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// blankToNil maps "" to nil so optional unique columns store NULL.
func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// RegistrationRequest is the payload of POST /api/register.
type RegistrationRequest struct {
	Email              string  `json:"email"`
	Username           string  `json:"username"`
	Password           string  `json:"password"`
	FirstName          *string `json:"firstName"`
	LastName           *string `json:"lastName"`
	Role               string  `json:"role"`
	OrganizationLabel  *string `json:"organizationLabel"`
	OrganizationDomain *string `json:"organizationDomain"`
}

// NewRegistrationRequest returns a request with the default role applied.
func NewRegistrationRequest() *RegistrationRequest {
	return &RegistrationRequest{Role: models.RoleUser}
}

func (r *RegistrationRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)
	r.Role = strings.TrimSpace(r.Role)
	r.OrganizationLabel = trimPtr(r.OrganizationLabel)
	r.OrganizationDomain = blankToNil(r.OrganizationDomain)
}

// WantsOrganization reports whether the caller registers as organization owner.
func (r *RegistrationRequest) WantsOrganization() bool {
	return r.Role == models.RoleOrgOwner
}

func (r *RegistrationRequest) HasOrganizationLabel() bool {
	return r.OrganizationLabel != nil && strings.TrimSpace(*r.OrganizationLabel) != ""
}

func (r *RegistrationRequest) Validate() error {
	return validation.FromRules(ozzo.ValidateStruct(r,
		ozzo.Field(&r.Email, ozzo.Required.Error(msgBlank), emailFormat, ozzo.RuneLength(0, 180).Error(tooLong(180))),
		ozzo.Field(&r.Username, ozzo.Required.Error(msgBlank), ozzo.RuneLength(3, 100).Error("This value should have between 3 and 100 characters.")),
		ozzo.Field(&r.Password, ozzo.Required.Error(msgBlank), ozzo.RuneLength(8, 0).Error(tooShort(8))),
		ozzo.Field(&r.FirstName, ozzo.RuneLength(0, 100).Error(tooLong(100))),
		ozzo.Field(&r.LastName, ozzo.RuneLength(0, 100).Error(tooLong(100))),
		ozzo.Field(&r.Role, ozzo.Required.Error(msgBlank), ozzo.In(choices(models.RegistrationRoles)...).Error(msgChoice)),
		ozzo.Field(&r.OrganizationLabel, ozzo.RuneLength(0, 255).Error(tooLong(255))),
		ozzo.Field(&r.OrganizationDomain, ozzo.RuneLength(0, 255).Error(tooLong(255))),
	))
}

// LoginRequest is the payload of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OptionalString distinguishes an absent JSON key from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// CreateUserRequest is the payload of POST /api/users.
type CreateUserRequest struct {
	Email        string   `json:"email"`
	Username     string   `json:"username"`
	Password     string   `json:"password"`
	FirstName    *string  `json:"firstName"`
	LastName     *string  `json:"lastName"`
	Roles        []string `json:"roles"`
	Organization *string  `json:"organization"`
}

func (r *CreateUserRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)
	r.Organization = blankToNil(r.Organization)
}

func (r *CreateUserRequest) Validate() error {
	return validation.FromRules(ozzo.ValidateStruct(r,
		ozzo.Field(&r.Email, ozzo.Required.Error(msgBlank), emailFormat, ozzo.RuneLength(0, 180).Error(tooLong(180))),
		ozzo.Field(&r.Username, ozzo.Required.Error(msgBlank), ozzo.RuneLength(3, 100).Error("This value should have between 3 and 100 characters.")),
		ozzo.Field(&r.Password, ozzo.Required.Error(msgBlank), ozzo.RuneLength(8, 0).Error(tooShort(8))),
		ozzo.Field(&r.FirstName, ozzo.RuneLength(0, 100).Error(tooLong(100))),
		ozzo.Field(&r.LastName, ozzo.RuneLength(0, 100).Error(tooLong(100))),
		ozzo.Field(&r.Roles, ozzo.By(knownRoles)),
		ozzo.Field(&r.Organization, ozzo.By(organizationRef)),
	))
}

// UpdateUserRequest is a merge-patch over a user; nil fields are untouched.
type UpdateUserRequest struct {
	Email        *string        `json:"email"`
	Username     *string        `json:"username"`
	Password     *string        `json:"password"`
	FirstName    OptionalString `json:"firstName"`
	LastName     OptionalString `json:"lastName"`
	Roles        *[]string      `json:"roles"`
	Organization OptionalString `json:"organization"`
}

func (r *UpdateUserRequest) normalize() {
	r.Email = trimPtr(r.Email)
	r.Username = trimPtr(r.Username)
	if r.Organization.Set {
		r.Organization.Value = blankToNil(r.Organization.Value)
	}
}

func (r *UpdateUserRequest) Validate() error {
	var roles []string
	if r.Roles != nil {
		roles = *r.Roles
	}
	err := validation.FromRules(ozzo.Errors{
		"email":        ozzo.Validate(r.Email, ozzo.NilOrNotEmpty.Error(msgBlank), emailFormat, ozzo.RuneLength(0, 180).Error(tooLong(180))),
		"username":     ozzo.Validate(r.Username, ozzo.NilOrNotEmpty.Error(msgBlank), ozzo.RuneLength(3, 100).Error("This value should have between 3 and 100 characters.")),
		"password":     ozzo.Validate(r.Password, ozzo.NilOrNotEmpty.Error(msgBlank), ozzo.RuneLength(8, 0).Error(tooShort(8))),
		"firstName":    ozzo.Validate(r.FirstName.Value, ozzo.RuneLength(0, 100).Error(tooLong(100))),
		"lastName":     ozzo.Validate(r.LastName.Value, ozzo.RuneLength(0, 100).Error(tooLong(100))),
		"roles":        ozzo.Validate(roles, ozzo.By(knownRoles)),
		"organization": ozzo.Validate(r.Organization.Value, ozzo.By(organizationRef)),
	}.Filter())
	return err
}

// OrganizationRequest is the payload of POST /api/organizations.
type OrganizationRequest struct {
	Label  string  `json:"label"`
	Domain *string `json:"domain"`
}

func (r *OrganizationRequest) normalize() {
	r.Label = strings.TrimSpace(r.Label)
	r.Domain = blankToNil(r.Domain)
}

func (r *OrganizationRequest) Validate() error {
	return validation.FromRules(ozzo.ValidateStruct(r,
		ozzo.Field(&r.Label, ozzo.Required.Error(msgBlank), ozzo.RuneLength(0, 255).Error(tooLong(255))),
		ozzo.Field(&r.Domain, ozzo.RuneLength(0, 255).Error(tooLong(255))),
	))
}

// UpdateOrganizationRequest is a merge-patch over an organization.
type UpdateOrganizationRequest struct {
	Label  *string        `json:"label"`
	Domain OptionalString `json:"domain"`
}

func (r *UpdateOrganizationRequest) normalize() {
	r.Label = trimPtr(r.Label)
	if r.Domain.Set {
		r.Domain.Value = blankToNil(r.Domain.Value)
	}
}

func (r *UpdateOrganizationRequest) Validate() error {
	return validation.FromRules(ozzo.Errors{
		"label":  ozzo.Validate(r.Label, ozzo.NilOrNotEmpty.Error(msgBlank), ozzo.RuneLength(0, 255).Error(tooLong(255))),
		"domain": ozzo.Validate(r.Domain.Value, ozzo.RuneLength(0, 255).Error(tooLong(255))),
	}.Filter())
}

var errBadOrganizationRef = errors.New("This value is not a valid organization reference.")

func organizationRef(value interface{}) error {
	var ref string
	switch v := value.(type) {
	case *string:
		if v == nil {
			return nil
		}
		ref = *v
	case string:
		ref = v
	}
	if ref == "" {
		return nil
	}
	if _, err := models.ParseOrganizationRef(ref); err != nil {
		return errBadOrganizationRef
	}
	return nil
}

func choices(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func knownRoles(value interface{}) error {
	roles, _ := value.([]string)
	for _, role := range roles {
		if !models.IsKnownRole(role) {
			return errors.New(msgChoice)
		}
	}
	return nil
}
