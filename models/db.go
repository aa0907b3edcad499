package models

import (
	"database/sql"
	"fmt"

	"bitbucket.org/jayflux/mypodcasts_enclosures/logger"
	// Needed for database/sql
	_ "github.com/lib/pq"
	"github.com/spf13/viper"
)

var db *sql.DB

// InitDB opens the postgres connection, was originally init() but this ran
// before the config had been read
func InitDB() error {
	connStr := fmt.Sprintf("user=%s dbname=%s password=%s sslmode=disable",
		viper.GetString("database.user"), viper.GetString("database.database"), viper.GetString("database.password"))
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("opening database: %v", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("connecting to database: %v", err)
	}
	db = conn
	logger.Log.Info("Connected to database")
	return nil
}

// DB exposes the connection for the injest package
func DB() *sql.DB {
	return db
}
