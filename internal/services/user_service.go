package services

import (
	"context"
	"errors"
	"time"

	"sentinel/internal/models"
	"sentinel/internal/repositories"
	"sentinel/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UserService interface {
	List(ctx context.Context, page Page) ([]*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	users  repositories.UserRepository
	orgs   repositories.OrganizationRepository
	hasher PasswordHasher
	mailer Mailer
	tokens TokenGenerator
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewUserService(users repositories.UserRepository, orgs repositories.OrganizationRepository, hasher PasswordHasher, mailer Mailer, log logrus.FieldLogger) UserService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &userService{
		users:  users,
		orgs:   orgs,
		hasher: hasher,
		mailer: mailer,
		tokens: GenerateActivationToken,
		log:    log,
		now:    time.Now,
	}
}

func (s *userService) List(ctx context.Context, page Page) ([]*models.User, error) {
	limit, offset := page.limitOffset()
	return s.users.List(ctx, limit, offset)
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// Users created here follow the same pending/activation path as self-registered ones.
func (s *userService) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	req.normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	orgID, err := s.resolveOrganization(ctx, req.Organization)
	if err != nil {
		return nil, err
	}
	if err := checkUserUniqueness(ctx, s.users, req.Email, req.Username, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens()
	if err != nil {
		return nil, err
	}

	roles := req.Roles
	if roles == nil {
		roles = []string{}
	}
	now := s.now().UTC()
	user := &models.User{
		ID:              uuid.New(),
		Email:           req.Email,
		Username:        req.Username,
		PasswordHash:    hash,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Roles:           roles,
		ActivationToken: &token,
		OrganizationID:  orgID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, translateWriteError(err, nil)
	}

	if err := s.mailer.SendActivation(ctx, user, token); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("failed to send activation email")
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	req.normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var email, username string
	if req.Email != nil && *req.Email != user.Email {
		email = *req.Email
	}
	if req.Username != nil && *req.Username != user.Username {
		username = *req.Username
	}
	if err := checkUserUniqueness(ctx, s.users, email, username, user.ID); err != nil {
		return nil, err
	}

	if req.Organization.Set {
		orgID, err := s.resolveOrganization(ctx, req.Organization.Value)
		if err != nil {
			return nil, err
		}
		user.OrganizationID = orgID
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if req.FirstName.Set {
		user.FirstName = req.FirstName.Value
	}
	if req.LastName.Set {
		user.LastName = req.LastName.Value
	}
	if req.Roles != nil {
		user.Roles = append([]string{}, *req.Roles...)
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, translateWriteError(err, nil)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.users.Delete(ctx, id))
}

// resolveOrganization turns an organization IRI into an existing organization id.
func (s *userService) resolveOrganization(ctx context.Context, ref *string) (*uuid.UUID, error) {
	if ref == nil {
		return nil, nil
	}
	id, err := models.ParseOrganizationRef(*ref)
	if err != nil {
		return nil, validation.New("organization", errBadOrganizationRef.Error())
	}
	if _, err := s.orgs.GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, validation.New("organization", msgNoSuchOrg)
		}
		return nil, err
	}
	return &id, nil
}
