package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/opsdesk/opsdesk/pkg/auth"
	"github.com/opsdesk/opsdesk/pkg/guard"
	"github.com/opsdesk/opsdesk/pkg/observability"
	"github.com/opsdesk/opsdesk/pkg/validation"
)

const selectColumns = `
	SELECT r.id, r.title, r.description, r.created_by, r.created_at, a.username
	FROM records r
	JOIN accounts a ON a.id = r.created_by
`

// Service implements record listing, search, and staff-gated CRUD
type Service struct {
	db      *sql.DB
	policy  Policy
	metrics *observability.Metrics
}

// NewService creates a record service with the given mutation policy.
// metrics may be nil.
func NewService(db *sql.DB, policy Policy, metrics *observability.Metrics) *Service {
	return &Service{db: db, policy: policy, metrics: metrics}
}

// observe records a store operation when metrics are enabled
func (s *Service) observe(operation string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveStoreOperation("records", operation, start, err)
	}
}

// List returns records matching the free-text query, newest first.
// An empty query returns every record. The listing carries the match count
// and the total unfiltered count.
func (s *Service) List(ctx context.Context, acting *auth.Account, query string) (*Listing, error) {
	if err := guard.RequireStaff(acting); err != nil {
		return nil, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	listSQL := selectColumns
	args := []interface{}{}
	query = strings.TrimSpace(query)
	if query != "" {
		listSQL += `
	WHERE LOWER(r.title) LIKE '%' || LOWER($1) || '%' ESCAPE '\'
	   OR LOWER(r.description) LIKE '%' || LOWER($1) || '%' ESCAPE '\'
	   OR LOWER(a.username) LIKE '%' || LOWER($1) || '%' ESCAPE '\'
`
		args = append(args, escapeLike(query))
	}
	listSQL += `	ORDER BY r.created_at DESC, r.id DESC`

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, listSQL, args...)
	s.observe("list", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty listing serializes as [] rather than null
	results := []Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return &Listing{
		Records:    results,
		MatchCount: len(results),
		TotalCount: total,
		Query:      query,
	}, nil
}

// Get retrieves a single record by ID
func (s *Service) Get(ctx context.Context, acting *auth.Account, id int64) (*Record, error) {
	if err := guard.RequireStaff(acting); err != nil {
		return nil, err
	}

	start := time.Now()
	row := s.db.QueryRowContext(ctx, selectColumns+`	WHERE r.id = $1`, id)
	record, err := scanRecord(row)
	s.observe("get", start, err)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Create inserts a new record owned by the acting account.
// Title is required; description is optional.
func (s *Service) Create(ctx context.Context, acting *auth.Account, title, description string) (*Record, error) {
	if err := guard.RequireStaff(acting); err != nil {
		return nil, err
	}
	if err := validation.RequireNonBlank("title", title); err != nil {
		return nil, err
	}
	if err := validation.RequireMaxLength("title", title, 200); err != nil {
		return nil, err
	}

	record := &Record{
		Title:             strings.TrimSpace(title),
		Description:       description,
		CreatedBy:         acting.ID,
		CreatedByUsername: acting.Username,
		CreatedAt:         time.Now().UTC(),
	}

	start := time.Now()
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO records (title, description, created_by, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		record.Title, record.Description, record.CreatedBy, record.CreatedAt,
	).Scan(&record.ID)
	s.observe("create", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	return record, nil
}

// Update changes a record's title and description. Creator and creation
// time are immutable.
func (s *Service) Update(ctx context.Context, acting *auth.Account, id int64, title, description string) (*Record, error) {
	if err := guard.RequireStaff(acting); err != nil {
		return nil, err
	}
	if err := validation.RequireNonBlank("title", title); err != nil {
		return nil, err
	}
	if err := validation.RequireMaxLength("title", title, 200); err != nil {
		return nil, err
	}

	if err := s.checkCreatorPolicy(ctx, acting, id); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.db.ExecContext(ctx,
		`UPDATE records SET title = $1, description = $2 WHERE id = $3`,
		strings.TrimSpace(title), description, id)
	s.observe("update", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.Get(ctx, acting, id)
}

// Delete removes a record by ID. With the default policy any staff account
// may delete any record.
func (s *Service) Delete(ctx context.Context, acting *auth.Account, id int64) error {
	if err := guard.RequireStaff(acting); err != nil {
		return err
	}

	if err := s.checkCreatorPolicy(ctx, acting, id); err != nil {
		return err
	}

	start := time.Now()
	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	s.observe("delete", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Count returns the total number of records
func (s *Service) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// checkCreatorPolicy enforces the optional creator-only mutation policy
func (s *Service) checkCreatorPolicy(ctx context.Context, acting *auth.Account, id int64) error {
	if !s.policy.RestrictToCreator {
		return nil
	}

	var createdBy int64
	err := s.db.QueryRowContext(ctx,
		`SELECT created_by FROM records WHERE id = $1`, id).Scan(&createdBy)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read record creator: %w", err)
	}
	if createdBy != acting.ID {
		return ErrNotCreator
	}
	return nil
}

// escapeLike escapes LIKE wildcards so the query matches literal substrings
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*Record, error) {
	var record Record
	var description sql.NullString

	err := row.Scan(
		&record.ID,
		&record.Title,
		&description,
		&record.CreatedBy,
		&record.CreatedAt,
		&record.CreatedByUsername,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	record.Description = description.String
	return &record, nil
}
