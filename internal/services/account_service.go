package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sentinel/internal/caching"
	"sentinel/internal/models"
	"sentinel/internal/repositories"
	"sentinel/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AccountService covers self-service registration, activation and login.
type AccountService interface {
	Register(ctx context.Context, req *RegistrationRequest) (*models.User, error)
	Activate(ctx context.Context, token string) error
	Login(ctx context.Context, req *LoginRequest) (*models.User, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// LoginPolicy limits failed login attempts per email. MaxAttempts <= 0
// disables throttling.
type LoginPolicy struct {
	MaxAttempts int
	Window      time.Duration
}

type AccountDeps struct {
	Users  repositories.UserRepository
	Tx     repositories.TxManager
	Hasher PasswordHasher
	Mailer Mailer
	Cache  caching.CacheService
	Tokens TokenGenerator
	Policy LoginPolicy
	Log    logrus.FieldLogger
}

type accountService struct {
	users  repositories.UserRepository
	tx     repositories.TxManager
	hasher PasswordHasher
	mailer Mailer
	cache  caching.CacheService
	tokens TokenGenerator
	policy LoginPolicy
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewAccountService(deps AccountDeps) AccountService {
	if deps.Tokens == nil {
		deps.Tokens = GenerateActivationToken
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	return &accountService{
		users:  deps.Users,
		tx:     deps.Tx,
		hasher: deps.Hasher,
		mailer: deps.Mailer,
		cache:  deps.Cache,
		tokens: deps.Tokens,
		policy: deps.Policy,
		log:    deps.Log,
		now:    time.Now,
	}
}

// Storage field names that differ in the registration payload.
var registrationAliases = map[string]string{
	"label":  "organizationLabel",
	"domain": "organizationDomain",
}

func (s *accountService) Register(ctx context.Context, req *RegistrationRequest) (*models.User, error) {
	req.normalize()

	// Checked before anything else so an owner without a label always gets
	// the dedicated error.
	if req.WantsOrganization() && !req.HasOrganizationLabel() {
		return nil, ErrOrgLabelRequired
	}
	if err := req.Validate(); err != nil {
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

	now := s.now().UTC()
	user := &models.User{
		ID:              uuid.New(),
		Email:           req.Email,
		Username:        req.Username,
		PasswordHash:    hash,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Roles:           []string{req.Role},
		IsActive:        false,
		ActivationToken: &token,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		if req.WantsOrganization() {
			org := &models.Organization{
				ID:        uuid.New(),
				Label:     *req.OrganizationLabel,
				Domain:    req.OrganizationDomain,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := checkOrganizationUniqueness(ctx, repos.Organizations, org.Label, org.Domain, uuid.Nil, registrationAliases); err != nil {
				return err
			}
			if err := repos.Organizations.Create(ctx, org); err != nil {
				return err
			}
			user.OrganizationID = &org.ID
		}
		return repos.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, translateWriteError(err, registrationAliases)
	}

	s.sendActivation(ctx, user, token)
	return user, nil
}

// sendActivation is best effort: the account exists whether or not mail goes out.
func (s *accountService) sendActivation(ctx context.Context, user *models.User, token string) {
	if err := s.mailer.SendActivation(ctx, user, token); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("failed to send activation email")
	}
}

func (s *accountService) Activate(ctx context.Context, token string) error {
	// Anything else cannot match a stored token, and raw bytes such as NUL
	// would be rejected by PostgreSQL.
	if !wellFormedActivationToken(token) {
		return ErrInvalidActivationToken
	}
	user, err := s.users.GetByActivationToken(ctx, token)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrInvalidActivationToken
	}
	if err != nil {
		return fmt.Errorf("failed to look up activation token: %w", err)
	}
	if user.IsActive {
		return ErrAlreadyActivated
	}

	activated, err := s.users.Activate(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}
	if !activated {
		return ErrAlreadyActivated
	}
	s.log.WithField("user_id", user.ID).Info("account activated")
	return nil
}

func (s *accountService) Login(ctx context.Context, req *LoginRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}
	key := strings.ToLower(email)

	if s.throttled(ctx, key) {
		return nil, ErrTooManyAttempts
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		s.recordFailure(ctx, key)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := s.hasher.Compare(req.Password, user.PasswordHash); err != nil {
		s.recordFailure(ctx, key)
		return nil, ErrInvalidCredentials
	}
	s.resetFailures(ctx, key)

	if !user.IsActive {
		return nil, ErrAccountNotActivated
	}
	return user, nil
}

func (s *accountService) throttled(ctx context.Context, key string) bool {
	if s.cache == nil || s.policy.MaxAttempts <= 0 {
		return false
	}
	count, err := s.cache.AttemptCount(ctx, key)
	if err != nil {
		s.log.WithError(err).Warn("login throttle lookup failed")
		return false
	}
	return count >= int64(s.policy.MaxAttempts)
}

func (s *accountService) recordFailure(ctx context.Context, key string) {
	if s.cache == nil || s.policy.MaxAttempts <= 0 {
		return
	}
	if _, err := s.cache.IncrementAttempts(ctx, key, s.policy.Window); err != nil {
		s.log.WithError(err).Warn("failed to record login failure")
	}
}

func (s *accountService) resetFailures(ctx context.Context, key string) {
	if s.cache == nil || s.policy.MaxAttempts <= 0 {
		return
	}
	if err := s.cache.ResetAttempts(ctx, key); err != nil {
		s.log.WithError(err).Warn("failed to reset login failures")
	}
}

func (s *accountService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// checkUserUniqueness reports email and username collisions together.
func checkUserUniqueness(ctx context.Context, users repositories.UserRepository, email, username string, exclude uuid.UUID) error {
	var checks []*validation.Errors
	if email != "" {
		taken, err := users.EmailTaken(ctx, email, exclude)
		if err != nil {
			return err
		}
		if taken {
			checks = append(checks, validation.New("email", msgUsed))
		}
	}
	if username != "" {
		taken, err := users.UsernameTaken(ctx, username, exclude)
		if err != nil {
			return err
		}
		if taken {
			checks = append(checks, validation.New("username", msgUsed))
		}
	}
	if merged := validation.Merge(checks...); merged != nil {
		return merged
	}
	return nil
}

func checkOrganizationUniqueness(ctx context.Context, orgs repositories.OrganizationRepository, label string, domain *string, exclude uuid.UUID, aliases map[string]string) error {
	field := func(name string) string {
		if alias, ok := aliases[name]; ok {
			return alias
		}
		return name
	}
	var checks []*validation.Errors
	if label != "" {
		taken, err := orgs.LabelTaken(ctx, label, exclude)
		if err != nil {
			return err
		}
		if taken {
			checks = append(checks, validation.New(field("label"), msgUsed))
		}
	}
	if domain != nil {
		taken, err := orgs.DomainTaken(ctx, *domain, exclude)
		if err != nil {
			return err
		}
		if taken {
			checks = append(checks, validation.New(field("domain"), msgUsed))
		}
	}
	if merged := validation.Merge(checks...); merged != nil {
		return merged
	}
	return nil
}
