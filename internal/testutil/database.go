package testutil

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/repairflow_test?parseTime=true"

// SetupTestDB opens the integration test database named by TEST_MYSQL_DSN and
// skips the test when it is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	if _, err := db.Exec("DELETE FROM ContentDocuments"); err != nil {
		t.Logf("failed to clean table ContentDocuments: %v", err)
	}

	db.Close()
}

const ContentDocumentsSchema = `
CREATE TABLE IF NOT EXISTS ContentDocuments (
	docId VARCHAR(191) NOT NULL,
	locale VARCHAR(16) NOT NULL DEFAULT '',
	docType VARCHAR(64) NOT NULL,
	body JSON NOT NULL,
	createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	PRIMARY KEY (docId, locale),
	INDEX idx_type_locale (docType, locale)
)`

func SetupTestTables(t *testing.T, db *sql.DB) {
	if _, err := db.Exec(ContentDocumentsSchema); err != nil {
		t.Logf("failed to create table ContentDocuments: %v", err)
	}
}
