package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

// reportStore implements driven.ReportStore. The report is kept as its JSON
// record; listing columns are denormalised so List never decodes bodies.
type reportStore struct {
	store *Store
}

var _ driven.ReportStore = (*reportStore)(nil)

// Save stores or replaces a report.
func (s *reportStore) Save(ctx context.Context, report *domain.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	summary := report.Summary()
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO reports (id, process, documents, missing, issues, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			process = excluded.process,
			documents = excluded.documents,
			missing = excluded.missing,
			issues = excluded.issues,
			body = excluded.body,
			created_at = excluded.created_at
	`, report.ID, summary.Process, summary.Documents, summary.Missing, summary.Issues,
		string(body), report.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

// Get retrieves a report by ID.
func (s *reportStore) Get(ctx context.Context, id string) (*domain.Report, error) {
	var body string
	row := s.store.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id)
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning report: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("unmarshalling report %s: %w", id, err)
	}
	return &report, nil
}

// List returns report summaries, newest first.
func (s *reportStore) List(ctx context.Context) ([]domain.ReportSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, process, documents, missing, issues, created_at
		FROM reports ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	summaries := []domain.ReportSummary{}
	for rows.Next() {
		var r domain.ReportSummary
		if err := rows.Scan(&r.ID, &r.Process, &r.Documents, &r.Missing, &r.Issues, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning report summary: %w", err)
		}
		summaries = append(summaries, r)
	}
	return summaries, rows.Err()
}
