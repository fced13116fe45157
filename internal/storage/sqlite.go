package storage

import (
	"database/sql"
	"time"

	"buildwatch/internal/logger"
	"buildwatch/internal/storage/models"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

const timestampFormat = "2006-01-02 15:04:05.000000"

// Init initializes the SQLite database
func Init(dbPath string) error {
	var err error

	db, err = sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON")
	if err != nil {
		return err
	}

	// SQLite allows a single writer only; the pool settings optimize for
	// concurrent reads
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		return err
	}

	if err = createTables(); err != nil {
		return err
	}

	logger.Info("Database initialized successfully")
	return nil
}

// createTables creates the necessary database tables
func createTables() error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		api_key TEXT NOT NULL,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status INTEGER NOT NULL,
		operation TEXT NOT NULL,
		job_name TEXT,
		params TEXT,
		result TEXT,
		error TEXT
	)
	`)

	return err
}

// InsertAuditLog inserts a new audit log entry
func InsertAuditLog(log models.AuditLog) error {
	_, err := db.Exec(
		`INSERT INTO audit_logs (timestamp, api_key, method, path, status, operation, job_name, params, result, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.Timestamp.Format(timestampFormat),
		log.APIKey,
		log.Method,
		log.Path,
		log.Status,
		log.Operation,
		log.JobName,
		log.Params,
		log.Result,
		log.Error,
	)

	if err != nil {
		logger.Error("Failed to insert audit log", "error", err)
		return err
	}

	return nil
}

// GetAuditLogs retrieves audit logs with pagination, newest first
func GetAuditLogs(limit, offset int) ([]models.AuditLog, error) {
	rows, err := db.Query(
		`SELECT id, timestamp, api_key, method, path, status, operation, job_name, params, result, error FROM audit_logs ORDER BY id DESC LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var log models.AuditLog
		var timestampStr string

		if err := rows.Scan(
			&log.ID,
			&timestampStr,
			&log.APIKey,
			&log.Method,
			&log.Path,
			&log.Status,
			&log.Operation,
			&log.JobName,
			&log.Params,
			&log.Result,
			&log.Error,
		); err != nil {
			return nil, err
		}

		// Older rows may lack the microsecond part
		timestamp, err := time.Parse(timestampFormat, timestampStr)
		if err != nil {
			timestamp, err = time.Parse("2006-01-02 15:04:05", timestampStr)
			if err != nil {
				timestamp = time.Now()
			}
		}
		log.Timestamp = timestamp

		logs = append(logs, log)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}

// Ping verifies the database connection is alive
func Ping() error {
	if db == nil {
		return sql.ErrConnDone
	}
	return db.Ping()
}

// Close closes the database connection
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}
