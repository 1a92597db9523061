package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"house-dashboard/models"
	"house-dashboard/utils"
)

const houseColumns = 11

// PostgresStore keeps a snapshot of the dataset in PostgreSQL. Rows keep
// their load order through the serial row_id.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, waits for it to accept
// pings, runs schema migrations and returns a ready-to-use store.
func NewPostgresStore(dsn string, maxAttempts int, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: maxAttempts, BaseDelay: 500 * time.Millisecond, Logger: logger}
	if err := retry.Do("postgres-ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS houses (
			row_id      BIGSERIAL PRIMARY KEY,
			house_id    TEXT             NOT NULL,
			price       DOUBLE PRECISION NOT NULL,
			yr_built    INTEGER          NOT NULL,
			bedrooms    INTEGER          NOT NULL,
			bathrooms   DOUBLE PRECISION NOT NULL,
			sqft_living DOUBLE PRECISION NOT NULL,
			condition   INTEGER          NOT NULL,
			waterfront  INTEGER          NOT NULL,
			view        INTEGER          NOT NULL,
			lat         DOUBLE PRECISION NOT NULL,
			long        DOUBLE PRECISION NOT NULL,
			stored_at   TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_houses_price    ON houses(price);
		CREATE INDEX IF NOT EXISTS idx_houses_yr_built ON houses(yr_built);
	`)
	return err
}

// Clear deletes the stored snapshot.
func (ps *PostgresStore) Clear() error {
	_, err := ps.db.Exec("TRUNCATE houses RESTART IDENTITY")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// snapshotTx is the part of *sql.Tx that replaceSnapshot needs.
type snapshotTx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Commit() error
	Rollback() error
}

// Write replaces the snapshot with houses, inserting in batches. The truncate
// and every batch share one transaction, so readers see either the previous
// snapshot or the complete new one.
func (ps *PostgresStore) Write(houses []models.House) error {
	if len(houses) == 0 {
		return nil
	}

	tx, err := ps.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	return replaceSnapshot(tx, houses)
}

func replaceSnapshot(tx snapshotTx, houses []models.House) (err error) {
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec("TRUNCATE houses RESTART IDENTITY"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	const batchSize = 500
	for i := 0; i < len(houses); i += batchSize {
		end := min(i+batchSize, len(houses))
		query, args := insertQuery(houses[i:end])
		if _, err = tx.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert rows %d-%d: %w", i, end, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func insertQuery(batch []models.House) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*houseColumns)

	for idx, h := range batch {
		base := idx * houseColumns
		placeholders := make([]string, houseColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			h.ID, h.Price, h.YearBuilt, h.Bedrooms, h.Bathrooms, h.SqftLiving,
			h.Condition, h.Waterfront, h.View, h.Lat, h.Long)
	}

	query := fmt.Sprintf(`
		INSERT INTO houses (house_id, price, yr_built, bedrooms, bathrooms, sqft_living,
		                    condition, waterfront, view, lat, long)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

// FetchAll returns the stored snapshot in its original load order.
func (ps *PostgresStore) FetchAll() ([]models.House, error) {
	rows, err := ps.db.Query(`
		SELECT house_id, price, yr_built, bedrooms, bathrooms, sqft_living,
		       condition, waterfront, view, lat, long
		FROM houses
		ORDER BY row_id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var houses []models.House
	for rows.Next() {
		var h models.House
		if err := rows.Scan(
			&h.ID, &h.Price, &h.YearBuilt, &h.Bedrooms, &h.Bathrooms, &h.SqftLiving,
			&h.Condition, &h.Waterfront, &h.View, &h.Lat, &h.Long,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		houses = append(houses, h)
	}
	return houses, rows.Err()
}
