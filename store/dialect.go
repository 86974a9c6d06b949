package store

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// DialectName returns the active database dialect name.
func DialectName(conn *gorm.DB) string {
	if conn == nil || conn.Dialector == nil {
		return ""
	}
	return conn.Dialector.Name()
}

// IsSQLite reports whether the connection uses SQLite.
func IsSQLite(conn *gorm.DB) bool {
	return DialectName(conn) == DialectSQLite
}

// likeEscaper escapes LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// caseInsensitiveLike returns a case-insensitive substring condition and its bind value.
// Wildcards in substring are matched literally.
func caseInsensitiveLike(conn *gorm.DB, column, substring string) (string, string) {
	pattern := "%" + likeEscaper.Replace(substring) + "%"
	if IsSQLite(conn) {
		return fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column), strings.ToLower(pattern)
	}
	return fmt.Sprintf(`%s ILIKE ? ESCAPE '\'`, column), pattern
}
