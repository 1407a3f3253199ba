package repositories

import (
	"context"
	"fmt"

	"sentinel/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	LabelTaken(ctx context.Context, label string, exclude uuid.UUID) (bool, error)
	DomainTaken(ctx context.Context, domain string, exclude uuid.UUID) (bool, error)
	Update(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Organization, error)
}

type organizationRepo struct {
	db DBTX
}

func NewOrganizationRepo(db DBTX) OrganizationRepository {
	return &organizationRepo{db: db}
}

const organizationColumns = `id, label, domain, created_at, updated_at`

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	org := &models.Organization{}
	if err := row.Scan(&org.ID, &org.Label, &org.Domain, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return org, nil
}

func (r *organizationRepo) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (id, label, domain, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, org.ID, org.Label, org.Domain, org.CreatedAt, org.UpdatedAt)
	return mapError(err)
}

func (r *organizationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	return scanOrganization(r.db.QueryRow(ctx, query, id))
}

func (r *organizationRepo) LabelTaken(ctx context.Context, label string, exclude uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM organizations WHERE label = $1 AND id <> $2)`
	if err := r.db.QueryRow(ctx, query, label, exclude).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check label uniqueness: %w", err)
	}
	return exists, nil
}

func (r *organizationRepo) DomainTaken(ctx context.Context, domain string, exclude uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM organizations WHERE domain = $1 AND id <> $2)`
	if err := r.db.QueryRow(ctx, query, domain, exclude).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check domain uniqueness: %w", err)
	}
	return exists, nil
}

func (r *organizationRepo) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET label = $1, domain = $2, updated_at = $3
		WHERE id = $4
	`
	tag, err := r.db.Exec(ctx, query, org.Label, org.Domain, org.UpdatedAt, org.ID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the organization; members are detached by ON DELETE SET NULL.
func (r *organizationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *organizationRepo) List(ctx context.Context, limit, offset int) ([]*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations ORDER BY created_at, id LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := []*models.Organization{}
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}
