// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"newsreview/internal/db"
	"newsreview/internal/models"
)

// TestDB connects to TEST_DATABASE_URL, runs migrations and returns a cleanup
// function. The test is skipped when the variable is unset.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupTestData(ctx, database.Pool)

	cleanup := func() {
		cleanupTestData(ctx, database.Pool)
		database.Close()
	}

	return database, cleanup
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	pool.Exec(ctx, "DELETE FROM promotion_attempts")
	pool.Exec(ctx, "DELETE FROM newsletters")
	pool.Exec(ctx, "DELETE FROM newsletter_submissions")
}

// CreateTestSubmission inserts an active submission and returns it.
func CreateTestSubmission(t *testing.T, database *db.DB, title string, categories ...string) *models.Submission {
	t.Helper()

	s := &models.Submission{
		Title:          title,
		Description:    "line one\nline two",
		Pricing:        models.PricingFree,
		Frequency:      models.FrequencyWeekly,
		Categories:     categories,
		URL:            "https://example.com/" + title,
		SubmitterEmail: "submitter@example.com",
	}
	if err := database.CreateSubmission(context.Background(), s); err != nil {
		t.Fatalf("failed to create test submission: %v", err)
	}
	return s
}

// CreateTestPublished inserts a published newsletter and returns it.
func CreateTestPublished(t *testing.T, database *db.DB, title string, categories ...string) *models.PublishedItem {
	t.Helper()

	p := &models.PublishedItem{
		Title:      title,
		Pricing:    models.PricingFree,
		Frequency:  models.FrequencyWeekly,
		Categories: categories,
		Slug:       title,
	}
	if err := database.InsertPublishedItem(context.Background(), p); err != nil {
		t.Fatalf("failed to create test newsletter: %v", err)
	}
	return p
}
