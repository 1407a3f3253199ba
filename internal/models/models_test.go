package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveRoles(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  []string
	}{
		{name: "empty", roles: nil, want: []string{RoleUser}},
		{name: "owner", roles: []string{RoleOrgOwner}, want: []string{RoleOrgOwner, RoleUser}},
		{name: "already present", roles: []string{RoleUser, RoleSuperAdmin}, want: []string{RoleUser, RoleSuperAdmin}},
		{name: "duplicates", roles: []string{RoleOrgMember, RoleOrgMember}, want: []string{RoleOrgMember, RoleUser}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveRoles(tt.roles))
		})
	}
}

func TestEffectiveRoles_DoesNotMutateInput(t *testing.T) {
	roles := make([]string, 1, 4)
	roles[0] = RoleOrgOwner
	_ = EffectiveRoles(roles)
	assert.Equal(t, []string{RoleOrgOwner}, roles)
}

func TestIsKnownRole(t *testing.T) {
	assert.True(t, IsKnownRole(RoleOrgMember))
	assert.False(t, IsKnownRole("ROLE_ADMIN"))
}

func TestUserDisplayName(t *testing.T) {
	first := "Jane"
	empty := ""
	assert.Equal(t, "Jane", (&User{Username: "jane", FirstName: &first}).DisplayName())
	assert.Equal(t, "jane", (&User{Username: "jane", FirstName: &empty}).DisplayName())
	assert.Equal(t, "jane", (&User{Username: "jane"}).DisplayName())
}

func TestUserJSON(t *testing.T) {
	orgID := uuid.New()
	token := "secret-token"
	user := User{
		ID:              uuid.New(),
		Email:           "jane@example.com",
		Username:        "jane",
		PasswordHash:    "$2a$10$hash",
		Roles:           []string{RoleOrgOwner},
		ActivationToken: &token,
		OrganizationID:  &orgID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "PasswordHash")
	assert.NotContains(t, body, "activationToken")
	assert.NotContains(t, body, "ActivationToken")
	assert.NotContains(t, string(raw), "secret-token")
	assert.Equal(t, "/api/organizations/"+orgID.String(), body["organization"])
	assert.Equal(t, []any{RoleOrgOwner, RoleUser}, body["roles"])
	assert.Equal(t, false, body["isActive"])
	assert.Nil(t, body["firstName"])
}

func TestUserJSON_NoOrganization(t *testing.T) {
	raw, err := json.Marshal(&User{ID: uuid.New(), Username: "solo"})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Contains(t, body, "organization")
	assert.Nil(t, body["organization"])
}

func TestOrganizationJSON(t *testing.T) {
	member := uuid.New()
	org := Organization{ID: uuid.New(), Label: "Acme", MemberIDs: []uuid.UUID{member}}

	raw, err := json.Marshal(org)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, []any{"/api/users/" + member.String()}, body["members"])
	assert.Nil(t, body["domain"])
	assert.NotContains(t, body, "MemberIDs")

	raw, err = json.Marshal(Organization{ID: uuid.New(), Label: "Empty"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"members":[]`)
}

func TestParseOrganizationRef(t *testing.T) {
	id := uuid.New()

	got, err := ParseOrganizationRef("/api/organizations/" + id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = ParseOrganizationRef(" " + id.String() + " ")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	for _, bad := range []string{"", "not-a-uuid", "/api/users/" + id.String(), "/api/organizations/" + id.String() + "/extra"} {
		_, err := ParseOrganizationRef(bad)
		assert.ErrorIs(t, err, ErrInvalidReference, bad)
	}
}

func TestIRIs(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "/api/users/"+id.String(), UserIRI(id))
	assert.Nil(t, OrganizationIRI(nil))
	assert.Equal(t, "/api/organizations/"+id.String(), *OrganizationIRI(&id))
}
