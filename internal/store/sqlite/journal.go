// Package sqlite persists an append-only journal of notified signals.
// One writer, WAL mode; reads serve the history API.
package sqlite

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arunpanwar240-bot/apna-screener/internal/markethours"
	"github.com/arunpanwar240-bot/apna-screener/internal/model"
)

// Journal is the SQLite-backed signal log.
type Journal struct {
	db *sql.DB
}

// Open creates (if needed) and opens the journal database.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single writer, occasional reader.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened journal at %s", dbPath)
	return &Journal{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS signals (
			instrument TEXT    NOT NULL,
			timeframe  TEXT    NOT NULL,
			ts         INTEGER NOT NULL,
			direction  TEXT    NOT NULL,
			grade      TEXT    NOT NULL,
			stoploss   REAL    NOT NULL,
			target     REAL    NOT NULL,
			sent_at    INTEGER NOT NULL,
			PRIMARY KEY (instrument, timeframe, ts, direction)
		);
	`)
	return err
}

// Append records one notified signal. Conflicts (the same bar notified
// twice across restarts) are ignored.
func (j *Journal) Append(sig model.Signal) error {
	_, err := j.db.Exec(`
		INSERT OR IGNORE INTO signals
			(instrument, timeframe, ts, direction, grade, stoploss, target, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, string(sig.Instrument), string(sig.Timeframe), sig.Time.Unix(),
		string(sig.Direction), sig.Grade, sig.Stoploss, sig.Target, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("sqlite insert signal: %w", err)
	}
	return nil
}

// Recent returns the most recently sent signals, newest first.
func (j *Journal) Recent(limit int) ([]model.Signal, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.Query(`
		SELECT instrument, timeframe, ts, direction, grade, stoploss, target
		FROM signals
		ORDER BY sent_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite query signals: %w", err)
	}
	defer rows.Close()

	var out []model.Signal
	for rows.Next() {
		var (
			sig    model.Signal
			tsUnix int64
		)
		if err := rows.Scan((*string)(&sig.Instrument), (*string)(&sig.Timeframe), &tsUnix,
			(*string)(&sig.Direction), &sig.Grade, &sig.Stoploss, &sig.Target); err != nil {
			return nil, fmt.Errorf("sqlite scan signal: %w", err)
		}
		sig.Time = time.Unix(tsUnix, 0).In(markethours.IST)
		out = append(out, sig)
	}
	return out, rows.Err()
}

// DB returns the underlying handle for health checks.
func (j *Journal) DB() *sql.DB { return j.db }

// Close closes the database.
func (j *Journal) Close() error { return j.db.Close() }
