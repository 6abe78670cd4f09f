package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"TickerScope/internal/logger"
	"TickerScope/internal/model"
)

// SQLiteRecorder persists refresh history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (ad-hoc queries while the dashboard writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS refresh_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			refresh_id TEXT,
			trigger_by TEXT,
			ticker     TEXT,
			start_date TEXT,
			end_date   TEXT,
			source     TEXT,
			outcome    TEXT,
			error      TEXT,
			rows       INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_ts ON refresh_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS price_rows (
			ticker     TEXT NOT NULL,
			trade_date TEXT NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL,
			volume     REAL,
			PRIMARY KEY (ticker, trade_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_date ON price_rows(trade_date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRefresh(evt *RefreshEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO refresh_events
		(timestamp, refresh_id, trigger_by, ticker, start_date, end_date, source, outcome, error, rows, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.RefreshID, evt.Trigger, evt.Ticker,
		evt.StartDate, evt.EndDate, evt.Source,
		evt.Outcome, evt.Error, evt.Rows, evt.Duration.Milliseconds(),
	)
	return err
}

// RecordPrices upserts the fetched table so repeated refreshes of the
// same window do not duplicate rows.
func (r *SQLiteRecorder) RecordPrices(ticker string, table model.PriceTable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO price_rows
		(ticker, trade_date, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range table {
		if _, err := stmt.Exec(ticker, row.TradeDate.Format("2006-01-02"),
			row.Open, row.High, row.Low, row.Close, row.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert price row: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	logger.Infof("closing sqlite recorder")
	return r.db.Close()
}
