//go:build !no_sqlite && !cgo

package db

import (
	"github.com/glebarez/sqlite"

	"github.com/sujaykar/echovault/pkg/configs"
)

// 纯 Go 实现，交叉编译时不需要 C 工具链.
func init() {
	registerDialector(configs.SQLite, sqlite.Open)
}
