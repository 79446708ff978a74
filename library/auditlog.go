package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Audit event actions.
const (
	AuditBorrow = "borrow"
	AuditReturn = "return"
)

// AuditEvent is one circulation event as stored in the audit database.
type AuditEvent struct {
	ID     int64
	UserID int
	ISBN   string
	Action string
	Day    int
	Fine   float64
	At     time.Time
}

// AuditLog keeps a durable trail of borrow and return events in SQLite,
// beside the flat-file snapshots. It is append-mostly: events are never
// updated once recorded.
type AuditLog struct {
	db *sql.DB

	recordStmt *sql.Stmt
}

// NewAuditLog opens (or creates) the audit database at path and applies the
// schema.
func NewAuditLog(path string) (*AuditLog, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS events (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        isbn TEXT NOT NULL,
        action TEXT NOT NULL,
        day INTEGER NOT NULL,
        fine REAL NOT NULL DEFAULT 0,
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
    );`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	log := &AuditLog{db: db}
	if log.recordStmt, err = db.Prepare(`INSERT INTO events(user_id,isbn,action,day,fine) VALUES(?,?,?,?,?)`); err != nil {
		db.Close()
		return nil, err
	}
	return log, nil
}

// Close releases the prepared statement and closes the database.
func (a *AuditLog) Close() error {
	if a.recordStmt != nil {
		a.recordStmt.Close()
	}
	return a.db.Close()
}

// RecordBorrow appends a borrow event.
func (a *AuditLog) RecordBorrow(userID int, isbn string, day int) error {
	_, err := a.recordStmt.Exec(userID, isbn, AuditBorrow, day, 0)
	return err
}

// RecordReturn appends a return event with the fine it incurred.
func (a *AuditLog) RecordReturn(userID int, isbn string, day int, fine float64) error {
	_, err := a.recordStmt.Exec(userID, isbn, AuditReturn, day, fine)
	return err
}

// Recent returns up to limit events, newest first.
func (a *AuditLog) Recent(limit int) ([]AuditEvent, error) {
	rows, err := a.db.Query(`SELECT id,user_id,isbn,action,day,fine,created_at FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.ISBN, &e.Action, &e.Day, &e.Fine, &e.At); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
