package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	Label     string      `json:"label" db:"label"`
	Domain    *string     `json:"domain" db:"domain"`
	MemberIDs []uuid.UUID `json:"-" db:"-"` // derived from users.organization_id
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// MarshalJSON exposes members as user IRIs.
func (o Organization) MarshalJSON() ([]byte, error) {
	type alias Organization
	members := make([]string, 0, len(o.MemberIDs))
	for _, id := range o.MemberIDs {
		members = append(members, UserIRI(id))
	}
	return json.Marshal(struct {
		alias
		Members []string `json:"members"`
	}{
		alias:   alias(o),
		Members: members,
	})
}
