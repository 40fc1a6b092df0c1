package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	// clientFoundRows=true -> RowsAffected counts matched rows, which the
	// conditional-update handlers rely on to tell 200 from 404
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the application schema if it does not exist yet. Safe to
// run on every start; statements are additive only and never drop or rewrite
// existing data.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id CHAR(36) PRIMARY KEY,
			username VARCHAR(190) NULL,
			email VARCHAR(190) NULL,
			name VARCHAR(190) NULL,
			password_hash TEXT NOT NULL,
			xp_total INT NOT NULL DEFAULT 0,
			level_idx INT NOT NULL DEFAULT 0,
			xp_in_level INT NOT NULL DEFAULT 0,
			wallet INT NOT NULL DEFAULT 0,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			email_verified BOOLEAN NOT NULL DEFAULT FALSE,
			email_verification_token VARCHAR(190) NULL,
			reset_token VARCHAR(190) NULL,
			reset_token_expires DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_users_username (username),
			UNIQUE KEY uq_users_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS sessions (
			token VARCHAR(128) PRIMARY KEY,
			user_id CHAR(36) NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			expires_at DATETIME NOT NULL,
			revoked BOOLEAN NOT NULL DEFAULT FALSE,
			KEY idx_sessions_user (user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS activity_logs (
			id CHAR(36) PRIMARY KEY,
			user_id CHAR(36) NOT NULL,
			course_id VARCHAR(190) NULL,
			event_type VARCHAR(100) NOT NULL,
			xp_awarded INT NOT NULL DEFAULT 0,
			coins_awarded INT NOT NULL DEFAULT 0,
			metadata JSON NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_activity_user (user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS module_store (
			id VARCHAR(64) PRIMARY KEY,
			data JSON NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first release. MySQL has no ADD COLUMN IF NOT
	// EXISTS, so duplicate-column errors (1060) are tolerated.
	alters := []string{
		`ALTER TABLE users ADD COLUMN is_admin BOOLEAN NOT NULL DEFAULT FALSE`,
		`ALTER TABLE users ADD COLUMN email_verified BOOLEAN NOT NULL DEFAULT FALSE`,
		`ALTER TABLE users ADD COLUMN email_verification_token VARCHAR(190) NULL`,
		`ALTER TABLE users ADD COLUMN reset_token VARCHAR(190) NULL`,
		`ALTER TABLE users ADD COLUMN reset_token_expires DATETIME NULL`,
	}
	for _, s := range alters {
		if _, err := db.ExecContext(ctx, s); err != nil {
			if strings.Contains(err.Error(), "1060") { // duplicate column name
				continue
			}
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
