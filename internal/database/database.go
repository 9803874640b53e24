package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite" // registers the cgo-free "sqlite" driver

	"imovelhub/internal/domain/chat"
	"imovelhub/internal/domain/grant"
	"imovelhub/internal/domain/notification"
	"imovelhub/internal/domain/profile"
	"imovelhub/internal/domain/request"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate creates the schema plus the partial unique index backing the
// one-active-request-per-(requester,resource) invariant. The precondition
// check in the service is the primary guard; the index closes the
// concurrent-insert window.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&request.AccessRequest{},
		&notification.Notification{},
		&chat.Conversation{},
		&chat.Message{},
		&grant.Grant{},
		&profile.Profile{},
	); err != nil {
		return err
	}

	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_request
		ON access_requests (requester_id, kind, coalesce(property_id, 0), coalesce(vault_document_id, 0))
		WHERE status IN ('pending', 'approved')`).Error
}
