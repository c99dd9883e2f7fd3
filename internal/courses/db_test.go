package courses

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const coursesTestDDL = `
CREATE TABLE courses (
    id text PRIMARY KEY,
    title text NOT NULL,
    description text NOT NULL,
    price_cents integer NOT NULL,
    image_public_id text NOT NULL,
    image_url text NOT NULL,
    creator_id text NOT NULL,
    created_at datetime,
    updated_at datetime
);
`

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.Exec(coursesTestDDL).Error; err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return conn
}

// openEmptyTestDB returns a connection without any schema so writes fail.
func openEmptyTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}
