package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// DB wraps the postgres connection pool.
type DB struct {
	sql *sql.DB
}

// NewPostgres opens the connection pool and creates the schema idempotently.
func NewPostgres(dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	d := &DB{sql: db}
	if err := d.initSchema(); err != nil {
		return nil, fmt.Errorf("schema init failed: %w", err)
	}
	return d, nil
}

func (d *DB) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS leads (
			id VARCHAR(255) PRIMARY KEY,
			company_name VARCHAR(255) NOT NULL,
			website VARCHAR(500) NOT NULL,
			industry VARCHAR(100) NOT NULL,
			contact_email VARCHAR(255),
			contact_name VARCHAR(255),
			estimated_size VARCHAR(50),
			source VARCHAR(50) NOT NULL,
			status VARCHAR(50) NOT NULL DEFAULT 'new',
			metadata JSONB,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(255) PRIMARY KEY,
			customer_email VARCHAR(255) NOT NULL,
			package_id VARCHAR(100) NOT NULL,
			amount INTEGER NOT NULL,
			status VARCHAR(50) NOT NULL,
			stripe_payment_intent_id VARCHAR(255) UNIQUE,
			metadata JSONB,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ads (
			id VARCHAR(255) PRIMARY KEY,
			payment_intent_id VARCHAR(255) REFERENCES orders(stripe_payment_intent_id),
			html TEXT NOT NULL,
			css TEXT NOT NULL,
			javascript TEXT NOT NULL,
			preview TEXT,
			metadata JSONB,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS analytics_events (
			id VARCHAR(255) PRIMARY KEY,
			ad_id VARCHAR(255) NOT NULL,
			event_type VARCHAR(50) NOT NULL,
			timestamp TIMESTAMP DEFAULT NOW(),
			url VARCHAR(1000),
			referrer VARCHAR(1000),
			user_agent TEXT,
			ip_address INET,
			metadata JSONB
		)`,
		`CREATE TABLE IF NOT EXISTS payment_failures (
			id SERIAL PRIMARY KEY,
			stripe_payment_intent_id VARCHAR(255) NOT NULL,
			amount INTEGER NOT NULL,
			currency VARCHAR(10) NOT NULL,
			failure_reason TEXT,
			created_at TIMESTAMP DEFAULT NOW()
		)`,
		// Webhook deliveries are deduplicated by the provider's event id.
		`CREATE TABLE IF NOT EXISTS webhook_events (
			event_id VARCHAR(255) PRIMARY KEY,
			event_type VARCHAR(100) NOT NULL,
			received_at TIMESTAMP DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := d.sql.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks the connection, for readiness probes.
func (d *DB) Ping() error {
	return d.sql.Ping()
}

// Close releases the connection pool.
func (d *DB) Close() error {
	return d.sql.Close()
}
