package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Bootstrap creates the synchronization and allocation tables when they do
// not exist yet. Statements stick to the portable subset shared by Postgres
// and SQLite, since the test suite runs against an in-memory SQLite store.
func Bootstrap(sqlxDB *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS order_headers (
			order_id           INTEGER PRIMARY KEY,
			reference_num      VARCHAR(200),
			customer_id        INTEGER,
			customer_name      VARCHAR(200),
			facility_id        INTEGER,
			status             INTEGER,
			process_date       TIMESTAMP,
			last_modified_date TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS order_details (
			order_item_id INTEGER PRIMARY KEY,
			order_id      INTEGER NOT NULL,
			item_id       VARCHAR(200),
			sku           VARCHAR(200),
			qualifier     VARCHAR(50),
			ordered_qty   INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS inventory (
			receive_item_id INTEGER PRIMARY KEY,
			item_id         VARCHAR(200),
			sku             VARCHAR(200),
			qualifier       VARCHAR(50),
			available_qty   INTEGER NOT NULL DEFAULT 0,
			received_qty    INTEGER NOT NULL DEFAULT 0,
			location_name   VARCHAR(100)
		);`,
		`CREATE TABLE IF NOT EXISTS sugg_alloc (
			order_item_id   INTEGER NOT NULL,
			receive_item_id INTEGER NOT NULL,
			sugg_alloc_qty  INTEGER NOT NULL,
			created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (order_item_id, receive_item_id)
		);`,
		`CREATE TABLE IF NOT EXISTS alloc_run_log (
			run_id         VARCHAR(36) PRIMARY KEY,
			scope_size     INTEGER NOT NULL,
			allocated_rows INTEGER NOT NULL,
			allocated_qty  INTEGER NOT NULL,
			hit_cap        BOOLEAN NOT NULL,
			started_at     TIMESTAMP NOT NULL,
			finished_at    TIMESTAMP NOT NULL,
			error_text     VARCHAR(500)
		);`,
	}

	for _, stmt := range schema {
		if _, err := sqlxDB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to bootstrap schema: %w", err)
		}
	}

	return nil
}
