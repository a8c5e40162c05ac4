//go:build !no_postgres

package db

import (
	"gorm.io/driver/postgres"

	"github.com/sujaykar/echovault/pkg/configs"
)

// 常见拼法都指向同一个驱动.
func init() {
	registerDialector(configs.PostgreSQL, postgres.Open)
	registerDialector(configs.Postgres, postgres.Open)
	registerDialector(configs.Pg, postgres.Open)
}
