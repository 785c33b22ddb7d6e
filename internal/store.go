package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const createReportsTable = `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	model TEXT NOT NULL,
	transcript TEXT NOT NULL,
	summary TEXT NOT NULL,
	study_guide TEXT NOT NULL,
	topics TEXT NOT NULL,
	quiz TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
`

// storeTimeLayout has a fixed width so created_at sorts as text
const storeTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ReportStore keeps generated reports in SQLite
type ReportStore struct {
	db *sql.DB
}

// ReportSummary is a history listing entry
type ReportSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// OpenReportStore opens (and migrates) the database at path
func OpenReportStore(path string) (*ReportStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createReportsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history db: %w", err)
	}
	return &ReportStore{db: db}, nil
}

// Save inserts or replaces report
func (s *ReportStore) Save(ctx context.Context, r *Report) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports (id, title, model, transcript, summary, study_guide, topics, quiz, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.Model, r.Transcript, r.Summary, r.StudyGuide, r.Topics, r.Quiz,
		r.CreatedAt.UTC().Format(storeTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("saving report %s: %w", r.ID, err)
	}
	return nil
}

// Get returns the report with id, or ErrReportNotFound
func (s *ReportStore) Get(ctx context.Context, id string) (*Report, error) {
	var r Report
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, model, transcript, summary, study_guide, topics, quiz, created_at
		 FROM reports WHERE id = ?`, id,
	).Scan(&r.ID, &r.Title, &r.Model, &r.Transcript, &r.Summary, &r.StudyGuide, &r.Topics, &r.Quiz, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading report %s: %w", id, err)
	}

	if r.CreatedAt, err = time.Parse(storeTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at of report %s: %w", id, err)
	}
	return &r, nil
}

// List returns the newest reports first
func (s *ReportStore) List(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, model, created_at FROM reports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var rs ReportSummary
		var createdAt string
		if err := rows.Scan(&rs.ID, &rs.Title, &rs.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		created, err := time.Parse(storeTimeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at of report %s: %w", rs.ID, err)
		}
		rs.CreatedAt = created
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Delete removes the report with id
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting report %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReportNotFound
	}
	return nil
}

// Close closes the database
func (s *ReportStore) Close() error {
	return s.db.Close()
}
