package config

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// DBConnections holds the open database pools for one pipeline process.
type DBConnections struct {
	SourceDB    *sql.DB
	AnalyticsDB *sql.DB
}

// ConnectDatabases opens and verifies the source and analytics database
// pools. The source DSN deliberately omits parseTime: the raw date column
// is carried as a string so the aggregator owns date parsing and its
// error reporting.
func ConnectDatabases(cfg Config) (*DBConnections, error) {
	var connections DBConnections
	var err error

	sourceDSN := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.SourceDB.User,
		cfg.SourceDB.Password,
		cfg.SourceDB.Host,
		cfg.SourceDB.Port,
		cfg.SourceDB.DBName,
	)

	connections.SourceDB, err = sql.Open(cfg.SourceDB.Driver, sourceDSN)
	if err != nil {
		return nil, fmt.Errorf("opening source database: %w", err)
	}

	connections.SourceDB.SetMaxOpenConns(10)
	connections.SourceDB.SetMaxIdleConns(5)
	connections.SourceDB.SetConnMaxLifetime(5 * time.Minute)

	if err := connections.SourceDB.Ping(); err != nil {
		connections.SourceDB.Close()
		return nil, fmt.Errorf("connecting to source database: %w", err)
	}

	analyticsDSN := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.AnalyticsDB.User,
		cfg.AnalyticsDB.Password,
		cfg.AnalyticsDB.Host,
		cfg.AnalyticsDB.Port,
		cfg.AnalyticsDB.DBName,
	)

	connections.AnalyticsDB, err = sql.Open(cfg.AnalyticsDB.Driver, analyticsDSN)
	if err != nil {
		connections.SourceDB.Close()
		return nil, fmt.Errorf("opening analytics database: %w", err)
	}

	connections.AnalyticsDB.SetMaxOpenConns(10)
	connections.AnalyticsDB.SetMaxIdleConns(5)
	connections.AnalyticsDB.SetConnMaxLifetime(5 * time.Minute)

	if err := connections.AnalyticsDB.Ping(); err != nil {
		connections.SourceDB.Close()
		connections.AnalyticsDB.Close()
		return nil, fmt.Errorf("connecting to analytics database: %w", err)
	}

	log.Println("Connected to source and analytics databases")
	return &connections, nil
}

// CloseDatabases closes both database pools.
func CloseDatabases(connections *DBConnections) {
	if connections.SourceDB != nil {
		if err := connections.SourceDB.Close(); err != nil {
			log.Printf("Error closing source database connection: %v", err)
		}
	}

	if connections.AnalyticsDB != nil {
		if err := connections.AnalyticsDB.Close(); err != nil {
			log.Printf("Error closing analytics database connection: %v", err)
		}
	}

	log.Println("Database connections closed")
}
