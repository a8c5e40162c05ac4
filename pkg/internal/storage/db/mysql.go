//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"

	"github.com/sujaykar/echovault/pkg/configs"
)

func init() {
	registerDialector(configs.MySQL, mysql.Open)
	registerDialector(configs.MariaDB, mysql.Open)
}
