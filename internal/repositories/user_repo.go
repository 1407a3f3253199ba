package repositories

import (
	"context"
	"fmt"

	"sentinel/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByActivationToken(ctx context.Context, token string) (*models.User, error)
	EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error)
	Update(ctx context.Context, user *models.User) error
	Activate(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	ListMemberIDs(ctx context.Context, organizationIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
}

type userRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, username, password, first_name, last_name, roles, is_active, activation_token, organization_id, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.Roles, &user.IsActive,
		&user.ActivationToken, &user.OrganizationID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, username, password, first_name, last_name, roles, is_active, activation_token, organization_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.PasswordHash, user.FirstName, user.LastName,
		user.Roles, user.IsActive, user.ActivationToken, user.OrganizationID, user.CreatedAt, user.UpdatedAt)
	return mapError(err)
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepo) GetByActivationToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE activation_token = $1`
	return scanUser(r.db.QueryRow(ctx, query, token))
}

func (r *userRepo) EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`
	if err := r.db.QueryRow(ctx, query, email, exclude).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	return exists, nil
}

func (r *userRepo) UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)`
	if err := r.db.QueryRow(ctx, query, username, exclude).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	return exists, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $1, username = $2, password = $3, first_name = $4, last_name = $5,
			roles = $6, organization_id = $7, updated_at = $8
		WHERE id = $9
	`
	tag, err := r.db.Exec(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.FirstName, user.LastName,
		user.Roles, user.OrganizationID, user.UpdatedAt, user.ID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Activate flips a pending account to active. It reports false when the
// account was already active, so only one caller ever wins the transition.
func (r *userRepo) Activate(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE users SET is_active = TRUE, updated_at = NOW() WHERE id = $1 AND is_active = FALSE`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, mapError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ListMemberIDs returns member ids keyed by organization id.
func (r *userRepo) ListMemberIDs(ctx context.Context, organizationIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	members := make(map[uuid.UUID][]uuid.UUID, len(organizationIDs))
	if len(organizationIDs) == 0 {
		return members, nil
	}

	ids := make([]string, 0, len(organizationIDs))
	for _, id := range organizationIDs {
		ids = append(ids, id.String())
	}

	query := `
		SELECT organization_id, id
		FROM users
		WHERE organization_id = ANY($1::uuid[])
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var orgID, userID uuid.UUID
		if err := rows.Scan(&orgID, &userID); err != nil {
			return nil, err
		}
		members[orgID] = append(members[orgID], userID)
	}
	return members, rows.Err()
}
