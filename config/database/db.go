package database

import (
	"database/sql"
	"fmt"
	"time"

	"resumebuilder/pkg/logger"

	_ "github.com/lib/pq"
)

// Connect opens a lib/pq pool and pings it, retrying a few times in case of
// temporary DNS/network blips.
func Connect(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database: DATABASE_URL is empty")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			return db, nil
		}
		logger.Sugar.Infof("Database connection failed, retrying in 2s... (%v)", err)
		time.Sleep(2 * time.Second)
	}
	db.Close()
	return nil, fmt.Errorf("database: could not connect after retries: %w", err)
}
