// Package ledger keeps a SQLite record of every submission package built.
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/a3tai/irb-packager/internal/pdf"
)

//go:embed migrations.sql
var migrationsSQL string

// DefaultRecentLimit is used when Recent is called with a non-positive limit
const DefaultRecentLimit = 20

// ErrInvalidEntry is returned for entries missing required fields
var ErrInvalidEntry = errors.New("invalid ledger entry")

// Entry is one built package
type Entry struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Applicant       string    `json:"applicant"`
	Email           string    `json:"email"`
	Grade           *float64  `json:"grade,omitempty"` // nil when no score was available
	Label           string    `json:"label"`
	OutputPath      string    `json:"output_path"`
	PageCount       int       `json:"page_count"`
	AttachmentCount int       `json:"attachment_count"`
}

// Ledger stores package entries in SQLite
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the ledger database at path and applies
// migrations. ":memory:" gives a throwaway ledger.
func Open(path string) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger path cannot be empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	if err := InitDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}

	return &Ledger{db: db, now: time.Now}, nil
}

// InitDB runs the embedded migrations on db
func InitDB(db *sql.DB) error {
	for _, stmt := range strings.Split(migrationsSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record inserts e, filling in ID and CreatedAt when they are zero.
// Applicant and email may be blank; the form does not require them.
func (l *Ledger) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.OutputPath == "" || e.Label == "" {
		return Entry{}, fmt.Errorf("%w: output path and label are required", ErrInvalidEntry)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = l.now().UTC()
	}

	var grade sql.NullFloat64
	if e.Grade != nil {
		grade = sql.NullFloat64{Float64: *e.Grade, Valid: true}
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO packages (id, created_at, applicant, email, grade, label, output_path, page_count, attachment_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt, e.Applicant, e.Email, grade, e.Label, e.OutputPath, e.PageCount, e.AttachmentCount,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert package: %w", err)
	}
	return e, nil
}

// RecordPackage stores a built package result
func (l *Ledger) RecordPackage(ctx context.Context, result *pdf.PackageBuildResult, applicant, email string) error {
	if result == nil {
		return fmt.Errorf("%w: nil package result", ErrInvalidEntry)
	}

	e := Entry{
		ID:              result.SubmissionID,
		Applicant:       applicant,
		Email:           email,
		Label:           result.Readability.Label,
		OutputPath:      result.OutputPath,
		PageCount:       result.Pages,
		AttachmentCount: len(result.Included),
	}
	if result.Readability.Available {
		grade := result.Readability.Grade
		e.Grade = &grade
	}

	_, err := l.Record(ctx, e)
	return err
}

// Recent returns up to limit entries, newest first
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, created_at, applicant, email, grade, label, output_path, page_count, attachment_count
		 FROM packages ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query packages: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			grade sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Applicant, &e.Email, &grade,
			&e.Label, &e.OutputPath, &e.PageCount, &e.AttachmentCount); err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		if grade.Valid {
			g := grade.Float64
			e.Grade = &g
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database
func (l *Ledger) Close() error {
	return l.db.Close()
}
