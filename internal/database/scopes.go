package database

import (
	"strings"

	"gorm.io/gorm"
)

// likeEscaper escapes LIKE wildcards with '!', which needs no quoting in
// MySQL, PostgreSQL or SQLite string literals.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// OwnedBy restricts a query to rows owned by userID.
func OwnedBy(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", userID)
	}
}

// Contains matches rows whose column contains term, ignoring case. The term
// is matched literally.
func Contains(column, term string) func(db *gorm.DB) *gorm.DB {
	pattern := "%" + strings.ToLower(likeEscaper.Replace(term)) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER("+column+") LIKE ? ESCAPE '!'", pattern)
	}
}
