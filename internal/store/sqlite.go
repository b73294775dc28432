package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStore persists task snapshots in a local sqlite database. Expired
// rows are purged lazily on read and by the periodic sweep.
type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if not exist
	query := `CREATE TABLE IF NOT EXISTS task_snapshots (
		request_id TEXT PRIMARY KEY,
		snapshot TEXT NOT NULL,
		expires_at DATETIME NOT NULL
	);`
	if _, err := db.Exec(query); err != nil {
		return nil, err
	}

	return &SQLiteStore{DB: db}, nil
}

func (s *SQLiteStore) Put(id string, snapshot *Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	query := `INSERT INTO task_snapshots (request_id, snapshot, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(request_id) DO UPDATE SET snapshot = excluded.snapshot, expires_at = excluded.expires_at`
	_, err = s.DB.Exec(query, id, string(data), time.Now().Add(ttl).UTC())
	return err
}

func (s *SQLiteStore) Get(id string) (*Snapshot, error) {
	query := `SELECT snapshot, expires_at FROM task_snapshots WHERE request_id = ?`

	var data string
	var expiresAt time.Time
	err := s.DB.QueryRow(query, id).Scan(&data, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if time.Now().After(expiresAt) {
		_ = s.Delete(id)
		return nil, nil
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *SQLiteStore) Delete(id string) error {
	_, err := s.DB.Exec(`DELETE FROM task_snapshots WHERE request_id = ?`, id)
	return err
}

// PurgeExpired removes all expired snapshots and reports how many were
// deleted.
func (s *SQLiteStore) PurgeExpired() (int64, error) {
	res, err := s.DB.Exec(`DELETE FROM task_snapshots WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}
