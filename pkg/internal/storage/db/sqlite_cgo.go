//go:build !no_sqlite && cgo

package db

import (
	"gorm.io/driver/sqlite"

	"github.com/sujaykar/echovault/pkg/configs"
)

// cgo 可用时走 mattn/go-sqlite3.
func init() {
	registerDialector(configs.SQLite, sqlite.Open)
}
