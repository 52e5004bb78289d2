package store

import (
	"testing"

	"linkup/backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database with the full schema. Max one
// open connection, otherwise every pooled connection would get its own empty
// :memory: database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Message{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, identity *Identity, name string) *models.User {
	t.Helper()
	user, err := identity.CreateUser(CreateUserParams{
		Username: name,
		Email:    name + "@testdomain.com",
		Password: "password_" + name,
	})
	if err != nil {
		t.Fatalf("create user %q: %v", name, err)
	}
	return user
}

// wantKind fails the test unless err is a store error of the given kind.
func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %d, got nil", kind)
	}
	got, ok := KindOf(err)
	if !ok {
		t.Fatalf("expected a store error, got %T: %v", err, err)
	}
	if got != kind {
		t.Fatalf("expected kind %d, got %d (%v)", kind, got, err)
	}
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
