package migrations

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/glebarez/sqlite"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestDefaultLoadsEmbeddedFiles(t *testing.T) {
	m, err := Default(logger.Discard())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	ids := m.IDs()
	if len(ids) < 2 || ids[0] != "001_plan_indexes" || ids[1] != "002_active_goal_lookup" {
		t.Errorf("Expected embedded migrations in order, got %v", ids)
	}
}

func TestRunOnce(t *testing.T) {
	db := openDB(t)
	fsys := fstest.MapFS{
		"sql/001_create.sql": {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT);\nCREATE INDEX idx_notes_body ON notes (body);")},
		"sql/002_seed.sql":   {Data: []byte("INSERT INTO notes (body) VALUES ('first');")},
		"sql/README.md":      {Data: []byte("ignored")},
	}

	m := NewMigrator(logger.Discard())
	if err := m.LoadSQL(fsys, "sql"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(m.IDs()) != 2 {
		t.Fatalf("Expected 2 migrations, got %v", m.IDs())
	}

	for i := 0; i < 2; i++ {
		if err := m.Run(db); err != nil {
			t.Fatalf("Run %d: expected no error, got %v", i, err)
		}
	}

	var count int64
	db.Table("notes").Count(&count)
	if count != 1 {
		t.Errorf("Expected seed to run once, got %d rows", count)
	}

	var records int64
	db.Model(&MigrationRecord{}).Count(&records)
	if records != 2 {
		t.Errorf("Expected 2 migration records, got %d", records)
	}
}

func TestRunStopsOnFailure(t *testing.T) {
	db := openDB(t)
	m := NewMigrator(logger.Discard())
	m.Register("001_broken", func(tx *gorm.DB) error { return errors.New("boom") }, nil)

	if err := m.Run(db); err == nil {
		t.Error("Expected failing migration to return an error")
	}

	var records int64
	db.Model(&MigrationRecord{}).Count(&records)
	if records != 0 {
		t.Errorf("Expected no record for a failed migration, got %d", records)
	}
}
