package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"sentinel/internal/models"
	"sentinel/internal/repositories"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for PostgreSQL with the same unique
// and foreign key rules as the schema.
type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
	orgs  map[uuid.UUID]models.Organization
}

func newMemStore() *memStore {
	return &memStore{
		users: map[uuid.UUID]models.User{},
		orgs:  map[uuid.UUID]models.Organization{},
	}
}

func (s *memStore) repos() repositories.Repositories {
	return repositories.Repositories{Users: &memUsers{s}, Organizations: &memOrgs{s}}
}

// RunInTx restores the previous state when fn fails.
func (s *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context, repos repositories.Repositories) error) error {
	s.mu.Lock()
	users := make(map[uuid.UUID]models.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	orgs := make(map[uuid.UUID]models.Organization, len(s.orgs))
	for k, v := range s.orgs {
		orgs[k] = v
	}
	s.mu.Unlock()

	if err := fn(ctx, s.repos()); err != nil {
		s.mu.Lock()
		s.users, s.orgs = users, orgs
		s.mu.Unlock()
		return err
	}
	return nil
}

type memUsers struct{ s *memStore }

func (r *memUsers) conflict(u *models.User) error {
	for id, other := range r.s.users {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return &repositories.UniqueViolationError{Field: "email", Constraint: "users_email_key"}
		}
		if other.Username == u.Username {
			return &repositories.UniqueViolationError{Field: "username", Constraint: "users_username_key"}
		}
	}
	if u.OrganizationID != nil {
		if _, ok := r.s.orgs[*u.OrganizationID]; !ok {
			return repositories.ErrReferenceNotFound
		}
	}
	return nil
}

func (r *memUsers) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.conflict(user); err != nil {
		return err
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *memUsers) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *memUsers) GetByActivationToken(_ context.Context, token string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ActivationToken != nil && *u.ActivationToken == token })
}

func (r *memUsers) EmailTaken(_ context.Context, email string, exclude uuid.UUID) (bool, error) {
	_, err := r.find(func(u models.User) bool { return u.Email == email && u.ID != exclude })
	return err == nil, nil
}

func (r *memUsers) UsernameTaken(_ context.Context, username string, exclude uuid.UUID) (bool, error) {
	_, err := r.find(func(u models.User) bool { return u.Username == username && u.ID != exclude })
	return err == nil, nil
}

func (r *memUsers) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if err := r.conflict(user); err != nil {
		return err
	}
	updated := *user
	updated.IsActive = existing.IsActive
	updated.ActivationToken = existing.ActivationToken
	r.s.users[user.ID] = updated
	return nil
}

func (r *memUsers) Activate(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.IsActive {
		return false, nil
	}
	u.IsActive = true
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u
	return true, nil
}

func (r *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *memUsers) List(_ context.Context, limit, offset int) ([]*models.User, error) {
	r.s.mu.Lock()
	all := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u := u
		all = append(all, &u)
	}
	r.s.mu.Unlock()
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return window(all, limit, offset), nil
}

func (r *memUsers) ListMemberIDs(_ context.Context, organizationIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := map[uuid.UUID]bool{}
	for _, id := range organizationIDs {
		wanted[id] = true
	}
	out := map[uuid.UUID][]uuid.UUID{}
	for _, u := range r.s.users {
		if u.OrganizationID != nil && wanted[*u.OrganizationID] {
			out[*u.OrganizationID] = append(out[*u.OrganizationID], u.ID)
		}
	}
	return out, nil
}

type memOrgs struct{ s *memStore }

func (r *memOrgs) conflict(o *models.Organization) error {
	for id, other := range r.s.orgs {
		if id == o.ID {
			continue
		}
		if other.Label == o.Label {
			return &repositories.UniqueViolationError{Field: "label", Constraint: "organizations_label_key"}
		}
		if other.Domain != nil && o.Domain != nil && *other.Domain == *o.Domain {
			return &repositories.UniqueViolationError{Field: "domain", Constraint: "organizations_domain_key"}
		}
	}
	return nil
}

func (r *memOrgs) Create(_ context.Context, org *models.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.conflict(org); err != nil {
		return err
	}
	r.s.orgs[org.ID] = *org
	return nil
}

func (r *memOrgs) GetByID(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	org, ok := r.s.orgs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &org, nil
}

func (r *memOrgs) LabelTaken(_ context.Context, label string, exclude uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, o := range r.s.orgs {
		if id != exclude && o.Label == label {
			return true, nil
		}
	}
	return false, nil
}

func (r *memOrgs) DomainTaken(_ context.Context, domain string, exclude uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, o := range r.s.orgs {
		if id != exclude && o.Domain != nil && *o.Domain == domain {
			return true, nil
		}
	}
	return false, nil
}

func (r *memOrgs) Update(_ context.Context, org *models.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orgs[org.ID]; !ok {
		return repositories.ErrNotFound
	}
	if err := r.conflict(org); err != nil {
		return err
	}
	stored := *org
	stored.MemberIDs = nil
	r.s.orgs[org.ID] = stored
	return nil
}

// Delete detaches members like ON DELETE SET NULL.
func (r *memOrgs) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orgs[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.orgs, id)
	for uid, u := range r.s.users {
		if u.OrganizationID != nil && *u.OrganizationID == id {
			u.OrganizationID = nil
			r.s.users[uid] = u
		}
	}
	return nil
}

func (r *memOrgs) List(_ context.Context, limit, offset int) ([]*models.Organization, error) {
	r.s.mu.Lock()
	all := make([]*models.Organization, 0, len(r.s.orgs))
	for _, o := range r.s.orgs {
		o := o
		all = append(all, &o)
	}
	r.s.mu.Unlock()
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return window(all, limit, offset), nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// memCache implements caching.CacheService.
type memCache struct {
	mu       sync.Mutex
	attempts map[string]int64
	revoked  map[string]bool
	pingErr  error
}

func newMemCache() *memCache {
	return &memCache{attempts: map[string]int64{}, revoked: map[string]bool{}}
}

func (c *memCache) Ping(context.Context) error { return c.pingErr }

func (c *memCache) AttemptCount(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts[key], nil
}

func (c *memCache) IncrementAttempts(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts[key]++
	return c.attempts[key], nil
}

func (c *memCache) ResetAttempts(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.attempts, key)
	return nil
}

func (c *memCache) RevokeSession(_ context.Context, tokenID string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[tokenID] = true
	return nil
}

func (c *memCache) IsSessionRevoked(_ context.Context, tokenID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revoked[tokenID], nil
}

// outbox records activation tokens per recipient.
type outbox struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newOutbox() *outbox {
	return &outbox{tokens: map[string]string{}}
}

func (o *outbox) SendActivation(_ context.Context, user *models.User, token string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tokens[user.Email] = token
	return nil
}

func (o *outbox) tokenFor(email string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tokens[email]
}
