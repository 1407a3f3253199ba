package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"sentinel/internal/models"
	"sentinel/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB connects to TEST_DATABASE_URL (or connString), applies the
// schema and empties the tables. The test is skipped when no database is configured.
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
	}
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	truncate := func() error {
		_, err := pool.Exec(context.Background(), "TRUNCATE users, organizations")
		return err
	}
	if err := truncate(); err != nil {
		pool.Close()
		t.Fatalf("Failed to truncate test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			defer pool.Close()
			return truncate()
		},
	}
}

// SetupTestOrganization inserts an organization with the given label.
func SetupTestOrganization(t *testing.T, db *TestDB, label string) *models.Organization {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	org := &models.Organization{ID: uuid.New(), Label: label, CreatedAt: now, UpdatedAt: now}
	query := `
		INSERT INTO organizations (id, label, domain, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := db.Pool.Exec(context.Background(), query, org.ID, org.Label, org.Domain, org.CreatedAt, org.UpdatedAt); err != nil {
		t.Fatalf("Failed to create test organization: %v", err)
	}
	return org
}

// NewTestUser returns an unsaved pending user.
func NewTestUser(username string, orgID *uuid.UUID) *models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	token := uuid.NewString()
	return &models.User{
		ID:              uuid.New(),
		Email:           username + "@example.com",
		Username:        username,
		PasswordHash:    "$2a$04$placeholderplaceholderplaceholderplaceholderplacehol",
		Roles:           []string{models.RoleUser},
		ActivationToken: &token,
		OrganizationID:  orgID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
