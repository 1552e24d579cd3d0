package dao

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Event{},
		&Ticket{},
		&Question{},
		&EventQuestion{},
		&Registration{},
		&RegistrationTicket{},
		&Participant{},
	)
}

// isUniqueViolation reports whether err broke the unique index on column,
// written as "table.column".
func isUniqueViolation(err error, column string) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) &&
		sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE &&
		strings.Contains(sqliteErr.Error(), column)
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
