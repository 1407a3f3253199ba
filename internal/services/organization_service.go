package services

import (
	"context"
	"time"

	"sentinel/internal/models"
	"sentinel/internal/repositories"

	"github.com/google/uuid"
)

type OrganizationService interface {
	List(ctx context.Context, page Page) ([]*models.Organization, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	Create(ctx context.Context, req *OrganizationRequest) (*models.Organization, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateOrganizationRequest) (*models.Organization, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type organizationService struct {
	orgs  repositories.OrganizationRepository
	users repositories.UserRepository
	now   func() time.Time
}

func NewOrganizationService(orgs repositories.OrganizationRepository, users repositories.UserRepository) OrganizationService {
	return &organizationService{orgs: orgs, users: users, now: time.Now}
}

func (s *organizationService) List(ctx context.Context, page Page) ([]*models.Organization, error) {
	limit, offset := page.limitOffset()
	orgs, err := s.orgs.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.attachMembers(ctx, orgs...); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (s *organizationService) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.attachMembers(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *organizationService) Create(ctx context.Context, req *OrganizationRequest) (*models.Organization, error) {
	req.normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := checkOrganizationUniqueness(ctx, s.orgs, req.Label, req.Domain, uuid.Nil, nil); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	org := &models.Organization{
		ID:        uuid.New(),
		Label:     req.Label,
		Domain:    req.Domain,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, translateWriteError(err, nil)
	}
	return org, nil
}

func (s *organizationService) Update(ctx context.Context, id uuid.UUID, req *UpdateOrganizationRequest) (*models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	req.normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var label string
	if req.Label != nil && *req.Label != org.Label {
		label = *req.Label
	}
	var domain *string
	if req.Domain.Set && req.Domain.Value != nil && (org.Domain == nil || *org.Domain != *req.Domain.Value) {
		domain = req.Domain.Value
	}
	if err := checkOrganizationUniqueness(ctx, s.orgs, label, domain, org.ID, nil); err != nil {
		return nil, err
	}

	if req.Label != nil {
		org.Label = *req.Label
	}
	if req.Domain.Set {
		org.Domain = req.Domain.Value
	}
	org.UpdatedAt = s.now().UTC()

	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, translateWriteError(err, nil)
	}
	if err := s.attachMembers(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// Delete leaves former members without an organization.
func (s *organizationService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.orgs.Delete(ctx, id))
}

func (s *organizationService) attachMembers(ctx context.Context, orgs ...*models.Organization) error {
	if len(orgs) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(orgs))
	for _, org := range orgs {
		ids = append(ids, org.ID)
	}
	members, err := s.users.ListMemberIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, org := range orgs {
		org.MemberIDs = members[org.ID]
	}
	return nil
}
