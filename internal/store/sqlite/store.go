// Package sqlite provides the durable store for the monitor: tracked
// instruments, bounded per-instrument price history, and the alert audit
// log. Durability means indicator continuity survives a restart instead of
// re-accumulating days of history after every redeploy.
package sqlite

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"stockwatch/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// HistoryCap is the number of price samples retained per instrument.
// Older samples are evicted FIFO by insertion order.
const HistoryCap = 100

// Store is a single-writer SQLite store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database with WAL mode and the
// monitor schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single writer: the monitor loop and the command handler share one
	// connection, serialized by database/sql.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", path)
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS monitor_stocks (
			code       TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			added_time TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS price_history (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			code      TEXT NOT NULL,
			price     REAL NOT NULL,
			volume    REAL NOT NULL,
			timestamp TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_price_history_code ON price_history(code, id);

		CREATE TABLE IF NOT EXISTS alert_history (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			code       TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			content    TEXT NOT NULL,
			timestamp  TEXT NOT NULL
		);
	`)
	return err
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// AddInstrument inserts or replaces a tracked instrument.
func (s *Store) AddInstrument(inst model.Instrument) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO monitor_stocks (code, name, added_time) VALUES (?, ?, ?)`,
		inst.Code, inst.Name, inst.AddedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("sqlite add instrument: %w", err)
	}
	return nil
}

// RemoveInstrument deletes a tracked instrument and its price history.
func (s *Store) RemoveInstrument(code string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite remove instrument: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM monitor_stocks WHERE code = ?`, code); err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite remove instrument: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM price_history WHERE code = ?`, code); err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite remove instrument history: %w", err)
	}
	return tx.Commit()
}

// Instruments returns all tracked instruments ordered by insertion.
func (s *Store) Instruments() ([]model.Instrument, error) {
	rows, err := s.db.Query(`SELECT code, name, added_time FROM monitor_stocks ORDER BY added_time`)
	if err != nil {
		return nil, fmt.Errorf("sqlite query instruments: %w", err)
	}
	defer rows.Close()

	var out []model.Instrument
	for rows.Next() {
		var inst model.Instrument
		var added string
		if err := rows.Scan(&inst.Code, &inst.Name, &added); err != nil {
			return nil, fmt.Errorf("sqlite scan instrument: %w", err)
		}
		inst.AddedAt, _ = time.Parse(time.RFC3339, added)
		out = append(out, inst)
	}
	return out, rows.Err()
}

// HasInstrument reports whether a code is already tracked.
func (s *Store) HasInstrument(code string) (bool, error) {
	var name string
	err := s.db.QueryRow(`SELECT name FROM monitor_stocks WHERE code = ?`, code).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite has instrument: %w", err)
	}
	return true, nil
}

// AppendSample inserts one price sample and evicts everything beyond the
// most recent HistoryCap rows for that instrument, oldest first.
func (s *Store) AppendSample(sample model.PriceSample) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite append sample: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO price_history (code, price, volume, timestamp) VALUES (?, ?, ?, ?)`,
		sample.Code, sample.Price, sample.Volume, sample.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite insert sample: %w", err)
	}

	_, err = tx.Exec(`
		DELETE FROM price_history
		WHERE code = ? AND id NOT IN (
			SELECT id FROM price_history WHERE code = ? ORDER BY id DESC LIMIT ?
		)
	`, sample.Code, sample.Code, HistoryCap)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite evict samples: %w", err)
	}

	return tx.Commit()
}

// PriceHistory returns the most recent limit prices in chronological
// (oldest-first) order; fewer when the history is shorter. Unknown codes
// return an empty slice.
func (s *Store) PriceHistory(code string, limit int) ([]float64, error) {
	return s.history(`SELECT price FROM price_history WHERE code = ? ORDER BY id DESC LIMIT ?`, code, limit)
}

// VolumeHistory is PriceHistory for the volume column.
func (s *Store) VolumeHistory(code string, limit int) ([]float64, error) {
	return s.history(`SELECT volume FROM price_history WHERE code = ? ORDER BY id DESC LIMIT ?`, code, limit)
}

func (s *Store) history(query, code string, limit int) ([]float64, error) {
	rows, err := s.db.Query(query, code, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite query history: %w", err)
	}
	defer rows.Close()

	var vals []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("sqlite scan history: %w", err)
		}
		vals = append(vals, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows come newest-first; callers want oldest-first.
	for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
		vals[i], vals[j] = vals[j], vals[i]
	}
	return vals, nil
}

// RecordAlert appends a fired alert to the audit log.
func (s *Store) RecordAlert(a model.Alert, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO alert_history (code, alert_type, content, timestamp) VALUES (?, ?, ?, ?)`,
		a.Code, string(a.Kind), a.Text, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("sqlite record alert: %w", err)
	}
	return nil
}
