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

const buildingColumns = `id, name, address, latitude, longitude, created_at, updated_at`

// SQLiteBuildingRepo implements BuildingRepo using a SQLite database.
type SQLiteBuildingRepo struct {
	db db.DBTX
}

func NewSQLiteBuildingRepo(conn db.DBTX) *SQLiteBuildingRepo {
	return &SQLiteBuildingRepo{db: conn}
}

func (r *SQLiteBuildingRepo) Create(ctx context.Context, b *domain.Building) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `INSERT INTO buildings (` + buildingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.Name, b.Address, b.Latitude, b.Longitude,
		formatTimestamp(b.CreatedAt), formatTimestamp(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting building: %w", err)
	}
	return nil
}

func (r *SQLiteBuildingRepo) GetByID(ctx context.Context, id string) (*domain.Building, error) {
	query := `SELECT ` + buildingColumns + ` FROM buildings WHERE id = ?`
	b, err := scanBuilding(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("building %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (r *SQLiteBuildingRepo) List(ctx context.Context, offset, limit int) ([]*domain.Building, error) {
	query := `SELECT ` + buildingColumns + ` FROM buildings ORDER BY rowid LIMIT ? OFFSET ?`
	return r.queryBuildings(ctx, "listing buildings", query, limit, offset)
}

func (r *SQLiteBuildingRepo) ListWithinBounds(ctx context.Context, bounds domain.Bounds) ([]*domain.Building, error) {
	query := `SELECT ` + buildingColumns + ` FROM buildings
		WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?
		ORDER BY rowid`
	return r.queryBuildings(ctx, "listing buildings in bounds", query,
		bounds.MinLat, bounds.MaxLat, bounds.MinLon, bounds.MaxLon)
}

func (r *SQLiteBuildingRepo) Update(ctx context.Context, b *domain.Building) error {
	query := `UPDATE buildings SET name = ?, address = ?, latitude = ?, longitude = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		b.Name, b.Address, b.Latitude, b.Longitude, formatTimestamp(b.UpdatedAt), b.ID)
	if err != nil {
		return fmt.Errorf("updating building: %w", err)
	}
	return requireAffected(res, "building", b.ID)
}

func (r *SQLiteBuildingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM buildings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting building: %w", err)
	}
	return requireAffected(res, "building", id)
}

func (r *SQLiteBuildingRepo) queryBuildings(ctx context.Context, op, query string, args ...any) ([]*domain.Building, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*domain.Building
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating buildings: %w", err)
	}
	return out, nil
}

func scanBuilding(row rowScanner) (*domain.Building, error) {
	var b domain.Building
	var createdAt, updatedAt string
	if err := row.Scan(&b.ID, &b.Name, &b.Address, &b.Latitude, &b.Longitude, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning building: %w", err)
	}
	var err error
	if b.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// requireAffected maps a zero-row write to ErrNotFound.
func requireAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return nil
}
