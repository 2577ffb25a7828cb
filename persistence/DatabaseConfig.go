package persistence

import (
	"errors"
	"os"

	"github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv DATABASE_DRIVER defaults to mysql,
// DATABASE_ARGS example: root:root@(127.0.0.1:3306)/groundwork?charset=utf8mb4&parseTime=True&loc=Local
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	driverType := os.Getenv("DATABASE_DRIVER")
	if driverType == "" {
		driverType = "mysql"
	}
	driverArgs := os.Getenv("DATABASE_ARGS")
	if driverArgs == "" {
		return nil, errors.New("environment variable DATABASE_ARGS is not set")
	}
	return &DatabaseConfig{DriverType: driverType, DriverArgs: driverArgs}, nil
}

// PrepareMysqlDatabase create the database of the DSN when absent.
func PrepareMysqlDatabase(driverArgs string) error {
	dsnConfig, err := mysql.ParseDSN(driverArgs)
	if err != nil {
		return err
	}
	databaseName := dsnConfig.DBName
	if databaseName == "" {
		return errors.New("database name is not specified in DSN")
	}
	dsnConfig.DBName = ""

	db, err := gorm.Open("mysql", dsnConfig.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Exec("CREATE DATABASE IF NOT EXISTS " + databaseName +
		" DEFAULT CHARACTER SET utf8mb4 DEFAULT COLLATE utf8mb4_general_ci").Error
}
