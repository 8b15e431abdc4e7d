package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/foxseedlab/mensetsukun/internal/history"
	"github.com/foxseedlab/mensetsukun/internal/interview"
)

const schema = `
CREATE TABLE IF NOT EXISTS interviews (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    user_name TEXT NOT NULL,
    final_score REAL NOT NULL,
    total_questions INTEGER NOT NULL,
    report TEXT NOT NULL,
    completed_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS interview_questions (
    interview_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    category TEXT NOT NULL,
    text TEXT NOT NULL,
    user_answer TEXT NOT NULL,
    score INTEGER NOT NULL,
    feedback TEXT NOT NULL,
    PRIMARY KEY (interview_id, position),
    FOREIGN KEY (interview_id) REFERENCES interviews(id) ON DELETE CASCADE
);
`

var ErrRecordNotFound = errors.New("history record not found")

type SQLiteArchive struct {
	db *sql.DB
}

func NewSQLiteArchive(dbPath string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &SQLiteArchive{db: db}, nil
}

func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

func (a *SQLiteArchive) SaveReport(ctx context.Context, r *interview.Report, completedAt time.Time) (string, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO interviews (id, session_id, user_name, final_score, total_questions, report, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, r.SessionID, r.UserName, r.FinalScore, r.TotalQuestions, r.Report, completedAt.UTC())
	if err != nil {
		return "", err
	}
	for i, q := range r.Questions {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO interview_questions (interview_id, position, category, text, user_answer, score, feedback)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, q.Category, q.Text, q.UserAnswer, q.Score, q.Feedback)
		if err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func (a *SQLiteArchive) ListRecent(ctx context.Context, limit int) ([]history.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, session_id, user_name, final_score, total_questions, completed_at
		 FROM interviews ORDER BY completed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []history.Record
	for rows.Next() {
		var rec history.Record
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.UserName, &rec.FinalScore, &rec.TotalQuestions, &rec.CompletedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (a *SQLiteArchive) GetReport(ctx context.Context, recordID string) (*interview.Report, error) {
	var r interview.Report
	err := a.db.QueryRowContext(ctx,
		`SELECT session_id, user_name, final_score, total_questions, report
		 FROM interviews WHERE id = ?`, recordID).
		Scan(&r.SessionID, &r.UserName, &r.FinalScore, &r.TotalQuestions, &r.Report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT category, text, user_answer, score, feedback
		 FROM interview_questions WHERE interview_id = ? ORDER BY position`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var q interview.ReportQuestion
		if err := rows.Scan(&q.Category, &q.Text, &q.UserAnswer, &q.Score, &q.Feedback); err != nil {
			return nil, err
		}
		r.Questions = append(r.Questions, q)
	}
	return &r, rows.Err()
}
