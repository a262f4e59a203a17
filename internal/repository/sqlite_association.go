package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/orgdir/internal/db"
	"github.com/alexanderramin/orgdir/internal/domain"
)

// SQLiteAssociationRepo implements AssociationRepo over organization_activities.
type SQLiteAssociationRepo struct {
	db db.DBTX
}

func NewSQLiteAssociationRepo(conn db.DBTX) *SQLiteAssociationRepo {
	return &SQLiteAssociationRepo{db: conn}
}

// FindOrganizationsByActivityIDs returns the distinct organizations linked to
// any of the given activities, in organization insertion order.
func (r *SQLiteAssociationRepo) FindOrganizationsByActivityIDs(ctx context.Context, activityIDs []string) ([]string, error) {
	activityIDs = domain.UniqueIDs(activityIDs)
	if len(activityIDs) == 0 {
		return nil, nil
	}
	marks, args := placeholders(activityIDs)
	query := `SELECT o.id FROM organizations o
		WHERE EXISTS (
			SELECT 1 FROM organization_activities oa
			WHERE oa.organization_id = o.id AND oa.activity_id IN (` + marks + `)
		)
		ORDER BY o.rowid`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding organizations by activities: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning organization id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating organization ids: %w", err)
	}
	return ids, nil
}

// ReplaceActivities swaps the organization's activity links for activityIDs.
// Run it inside a transaction so the swap is atomic.
func (r *SQLiteAssociationRepo) ReplaceActivities(ctx context.Context, organizationID string, activityIDs []string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM organization_activities WHERE organization_id = ?`, organizationID); err != nil {
		return fmt.Errorf("clearing organization activities: %w", err)
	}
	for _, activityID := range domain.UniqueIDs(activityIDs) {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO organization_activities (organization_id, activity_id) VALUES (?, ?)`,
			organizationID, activityID); err != nil {
			return fmt.Errorf("linking activity %s: %w", activityID, err)
		}
	}
	return nil
}

func (r *SQLiteAssociationRepo) ListActivities(ctx context.Context, organizationID string) ([]*domain.Activity, error) {
	query := `SELECT a.id, a.name, a.parent_id, a.created_at, a.updated_at
		FROM activities a
		JOIN organization_activities oa ON oa.activity_id = a.id
		WHERE oa.organization_id = ?
		ORDER BY a.rowid`
	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("listing organization activities: %w", err)
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
		return nil, fmt.Errorf("iterating organization activities: %w", err)
	}
	return out, nil
}
