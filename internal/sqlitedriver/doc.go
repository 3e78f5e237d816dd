// Package sqlitedriver registers the pure-Go modernc.org/sqlite driver
// under the name "sqlite3".
//
// Import this package for its side effects only:
//
//	import _ "github.com/llmspell/llmspell/internal/sqlitedriver"
package sqlitedriver
