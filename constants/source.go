package constants

import (
	"path/filepath"
	"strings"
)

// SourceKind identifies where the variety catalog is loaded from.
type SourceKind string

const (
	SourceJSON     SourceKind = "json"
	SourceXLSX     SourceKind = "xlsx"
	SourcePostgres SourceKind = "postgres"
	SourceMySQL    SourceKind = "mysql"
	SourceSQLite   SourceKind = "sqlite"
)

// SourceKinds holds every supported catalog source.
var SourceKinds = []SourceKind{SourceJSON, SourceXLSX, SourcePostgres, SourceMySQL, SourceSQLite}

// IsFile reports whether the source is read from a local file.
func (k SourceKind) IsFile() bool {
	return k == SourceJSON || k == SourceXLSX
}

// IsSQL reports whether the source is a relational datastore.
func (k SourceKind) IsSQL() bool {
	return k == SourcePostgres || k == SourceMySQL || k == SourceSQLite
}

// ParseSourceKind maps a user supplied name onto a SourceKind.
func ParseSourceKind(s string) (SourceKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "pg", "postgresql":
		return SourcePostgres, true
	case "sqlite3":
		return SourceSQLite, true
	}
	for _, k := range SourceKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// SourceKindFromPath guesses the kind of a file source from its extension.
func SourceKindFromPath(path string) (SourceKind, bool) {
	switch NormalizeExt(filepath.Ext(path)) {
	case "json":
		return SourceJSON, true
	case "xlsx", "xlsm":
		return SourceXLSX, true
	case "db", "sqlite", "sqlite3":
		return SourceSQLite, true
	}
	return "", false
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// OCRTextExtensions are the dump formats accepted by batch resolution.
var OCRTextExtensions = map[string]struct{}{
	"txt": {},
	"ocr": {},
}
