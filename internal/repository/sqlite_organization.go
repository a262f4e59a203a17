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

const organizationColumns = `id, name, building_id, created_at, updated_at`

// SQLiteOrganizationRepo implements OrganizationRepo using a SQLite database.
type SQLiteOrganizationRepo struct {
	db db.DBTX
}

func NewSQLiteOrganizationRepo(conn db.DBTX) *SQLiteOrganizationRepo {
	return &SQLiteOrganizationRepo{db: conn}
}

func (r *SQLiteOrganizationRepo) Create(ctx context.Context, o *domain.Organization) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	o.Name = domain.NormalizeName(o.Name)
	query := `INSERT INTO organizations (id, name, name_folded, building_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.Name, domain.FoldName(o.Name), o.BuildingID,
		formatTimestamp(o.CreatedAt), formatTimestamp(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting organization: %w", err)
	}
	return nil
}

func (r *SQLiteOrganizationRepo) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = ?`
	o, err := scanOrganization(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("organization %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return o, nil
}

func (r *SQLiteOrganizationRepo) List(ctx context.Context, offset, limit int) ([]*domain.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations ORDER BY rowid LIMIT ? OFFSET ?`
	return r.queryOrganizations(ctx, "listing organizations", query, limit, offset)
}

func (r *SQLiteOrganizationRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Organization, error) {
	ids = domain.UniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	marks, args := placeholders(ids)
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id IN (` + marks + `) ORDER BY rowid`
	return r.queryOrganizations(ctx, "listing organizations by id", query, args...)
}

func (r *SQLiteOrganizationRepo) ListByBuilding(ctx context.Context, buildingID string) ([]*domain.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE building_id = ? ORDER BY rowid`
	return r.queryOrganizations(ctx, "listing organizations by building", query, buildingID)
}

func (r *SQLiteOrganizationRepo) ListByBuildings(ctx context.Context, buildingIDs []string) ([]*domain.Organization, error) {
	buildingIDs = domain.UniqueIDs(buildingIDs)
	if len(buildingIDs) == 0 {
		return nil, nil
	}
	marks, args := placeholders(buildingIDs)
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE building_id IN (` + marks + `) ORDER BY rowid`
	return r.queryOrganizations(ctx, "listing organizations by buildings", query, args...)
}

func (r *SQLiteOrganizationRepo) SearchByName(ctx context.Context, substr string) ([]*domain.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE instr(name_folded, ?) > 0 ORDER BY rowid`
	return r.queryOrganizations(ctx, "searching organizations by name", query, domain.FoldName(substr))
}

func (r *SQLiteOrganizationRepo) Update(ctx context.Context, o *domain.Organization) error {
	o.Name = domain.NormalizeName(o.Name)
	query := `UPDATE organizations SET name = ?, name_folded = ?, building_id = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		o.Name, domain.FoldName(o.Name), o.BuildingID, formatTimestamp(o.UpdatedAt), o.ID)
	if err != nil {
		return fmt.Errorf("updating organization: %w", err)
	}
	return requireAffected(res, "organization", o.ID)
}

func (r *SQLiteOrganizationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting organization: %w", err)
	}
	return requireAffected(res, "organization", id)
}

// ReplacePhones swaps the organization's phone numbers for numbers, keeping
// their order. Run it inside a transaction so the swap is atomic.
func (r *SQLiteOrganizationRepo) ReplacePhones(ctx context.Context, organizationID string, numbers []string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM phone_numbers WHERE organization_id = ?`, organizationID); err != nil {
		return fmt.Errorf("clearing phone numbers: %w", err)
	}
	for i, number := range numbers {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO phone_numbers (id, organization_id, number, position) VALUES (?, ?, ?, ?)`,
			uuid.New().String(), organizationID, domain.NormalizeName(number), i); err != nil {
			return fmt.Errorf("inserting phone number: %w", err)
		}
	}
	return nil
}

func (r *SQLiteOrganizationRepo) ListPhones(ctx context.Context, organizationID string) ([]domain.PhoneNumber, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, organization_id, number FROM phone_numbers WHERE organization_id = ? ORDER BY position`,
		organizationID)
	if err != nil {
		return nil, fmt.Errorf("listing phone numbers: %w", err)
	}
	defer rows.Close()

	var phones []domain.PhoneNumber
	for rows.Next() {
		var p domain.PhoneNumber
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.Number); err != nil {
			return nil, fmt.Errorf("scanning phone number: %w", err)
		}
		phones = append(phones, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating phone numbers: %w", err)
	}
	return phones, nil
}

func (r *SQLiteOrganizationRepo) queryOrganizations(ctx context.Context, op, query string, args ...any) ([]*domain.Organization, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*domain.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating organizations: %w", err)
	}
	return out, nil
}

func scanOrganization(row rowScanner) (*domain.Organization, error) {
	var o domain.Organization
	var createdAt, updatedAt string
	if err := row.Scan(&o.ID, &o.Name, &o.BuildingID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning organization: %w", err)
	}
	var err error
	if o.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}
