package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/orgdir/internal/db"
	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/google/uuid"
)

// activityColumns is the canonical SELECT column list for activities.
const activityColumns = `id, name, parent_id, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// SQLiteActivityRepo implements ActivityRepo using a SQLite database.
type SQLiteActivityRepo struct {
	db db.DBTX
}

// NewSQLiteActivityRepo creates a new SQLiteActivityRepo. conn may be a
// *sql.DB or a *sql.Tx.
func NewSQLiteActivityRepo(conn db.DBTX) *SQLiteActivityRepo {
	return &SQLiteActivityRepo{db: conn}
}

func (r *SQLiteActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.Name = domain.NormalizeName(a.Name)
	query := `INSERT INTO activities (id, name, name_folded, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.Name,
		domain.FoldName(a.Name),
		a.ParentID, // *string: nil becomes SQL NULL
		formatTimestamp(a.CreatedAt),
		formatTimestamp(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = ?`
	a, err := scanActivity(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("activity %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

func (r *SQLiteActivityRepo) GetParentID(ctx context.Context, id string) (*string, error) {
	var parentID sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT parent_id FROM activities WHERE id = ?`, id).Scan(&parentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("activity %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("reading activity parent: %w", err)
	}
	return nullableString(parentID), nil
}

func (r *SQLiteActivityRepo) ListChildren(ctx context.Context, parentID string) ([]*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE parent_id = ? ORDER BY rowid`
	return r.queryActivities(ctx, "listing child activities", query, parentID)
}

func (r *SQLiteActivityRepo) ListRoots(ctx context.Context) ([]*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE parent_id IS NULL ORDER BY rowid`
	return r.queryActivities(ctx, "listing root activities", query)
}

func (r *SQLiteActivityRepo) ListAll(ctx context.Context) ([]*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities ORDER BY rowid`
	return r.queryActivities(ctx, "listing activities", query)
}

func (r *SQLiteActivityRepo) List(ctx context.Context, offset, limit int) ([]*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities ORDER BY rowid LIMIT ? OFFSET ?`
	return r.queryActivities(ctx, "listing activities", query, limit, offset)
}

func (r *SQLiteActivityRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting activities: %w", err)
	}
	return n, nil
}

func (r *SQLiteActivityRepo) SetParent(ctx context.Context, id string, parentID *string) error {
	query := `UPDATE activities SET parent_id = ?, updated_at = ? WHERE id = ?`
	return r.execOne(ctx, "updating activity parent", id, query, parentID, nowUTC(), id)
}

func (r *SQLiteActivityRepo) SetName(ctx context.Context, id, name string) error {
	name = domain.NormalizeName(name)
	query := `UPDATE activities SET name = ?, name_folded = ?, updated_at = ? WHERE id = ?`
	return r.execOne(ctx, "updating activity name", id, query, name, domain.FoldName(name), nowUTC(), id)
}

func (r *SQLiteActivityRepo) DetachChildren(ctx context.Context, parentID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE activities SET parent_id = NULL, updated_at = ? WHERE parent_id = ?`, nowUTC(), parentID)
	if err != nil {
		return 0, fmt.Errorf("detaching child activities: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("detaching child activities: %w", err)
	}
	return n, nil
}

func (r *SQLiteActivityRepo) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "deleting activity", id, `DELETE FROM activities WHERE id = ?`, id)
}

func (r *SQLiteActivityRepo) FindByNameExact(ctx context.Context, name string) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE name_folded = ? ORDER BY rowid LIMIT 1`
	a, err := scanActivity(r.db.QueryRowContext(ctx, query, domain.FoldName(name)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("activity named %q: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

func (r *SQLiteActivityRepo) FindByNameContains(ctx context.Context, substr string) ([]*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE instr(name_folded, ?) > 0 ORDER BY rowid`
	return r.queryActivities(ctx, "searching activities by name", query, domain.FoldName(substr))
}

// execOne runs a single-row write and reports ErrNotFound when no row matched.
func (r *SQLiteActivityRepo) execOne(ctx context.Context, op, id, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(res, "activity", id)
}

func (r *SQLiteActivityRepo) queryActivities(ctx context.Context, op, query string, args ...any) ([]*domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return out, nil
}

// scanActivity scans one activity row. sql.ErrNoRows is returned unwrapped
// so callers can translate it.
func scanActivity(row rowScanner) (*domain.Activity, error) {
	var a domain.Activity
	var parentID sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&a.ID, &a.Name, &parentID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning activity: %w", err)
	}
	a.ParentID = nullableString(parentID)

	var err error
	if a.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
