package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/reviewloop/reviewloop/internal/domain/model"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via
// cache=shared. A unique name derived from t.Name() ensures isolation between
// parallel tests.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it's a safe SQLite URI filename component
	// and cannot be misinterpreted as query parameters in the "file:%s?..." DSN.
	safeName := url.PathEscape(t.Name())
	// WAL mode is not applicable to in-memory databases; omit journal_mode pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		safeName,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("create test db writer: %v", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(context.Background()); err != nil {
		_ = writer.Close()
		t.Fatalf("ping test db writer: %v", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("create test db reader: %v", err)
	}
	reader.SetMaxOpenConns(4)
	if err := reader.PingContext(context.Background()); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		t.Fatalf("ping test db reader: %v", err)
	}

	db := &DB{Writer: writer, Reader: reader, path: dsn}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// seedAccount inserts an account row for tests that need a foreign key parent.
func seedAccount(t *testing.T, db *DB, id, name string) {
	t.Helper()

	repo := NewAccountRepo(db)
	err := repo.Save(context.Background(), model.Account{
		ID:   id,
		Name: name,
		Type: model.AccountTypeOrganization,
	})
	if err != nil {
		t.Fatalf("seed account %s: %v", id, err)
	}
}

// seedRepository inserts a repository row owned by the given account.
func seedRepository(t *testing.T, db *DB, id, ownerID, name string) {
	t.Helper()

	repo := NewRepoRepo(db)
	err := repo.Save(context.Background(), model.Repository{
		ID:       id,
		Name:     name,
		FullName: "acme/" + name,
		OwnerID:  ownerID,
	})
	if err != nil {
		t.Fatalf("seed repository %s: %v", id, err)
	}
}

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func testTime(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse test time %s: %v", value, err)
	}
	return parsed
}
