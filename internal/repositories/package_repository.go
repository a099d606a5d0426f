package repositories

import (
	"context"
	"fmt"

	"timber-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PackageRepository reads and receives inventory packages
type PackageRepository struct {
	DB *pgxpool.Pool
}

func NewPackageRepository(db *pgxpool.Pool) *PackageRepository {
	return &PackageRepository{DB: db}
}

var _ InventoryStore = (*PackageRepository)(nil)

func createPackage(ctx context.Context, db DBTX, p *models.Package) error {
	if p.Status == "" {
		p.Status = models.PackageStatusAvailable
	}
	return translate(db.QueryRow(ctx,
		`INSERT INTO packages(organisation_id, package_number, species, grade, thickness, width, length,
		                      pieces, volume, status, produced_by_entry_id)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		p.OrganisationID, p.PackageNumber, p.Species, p.Grade, p.Thickness, p.Width, p.Length,
		p.Pieces, p.Volume, p.Status, p.ProducedByEntryID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *PackageRepository) CreatePackage(ctx context.Context, p *models.Package) error {
	return createPackage(ctx, r.DB, p)
}

func packageNumberInUse(ctx context.Context, db DBTX, orgID int, number string) (bool, error) {
	var inUse bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM packages WHERE organisation_id = $1 AND package_number = $2)
		     OR EXISTS(SELECT 1 FROM production_outputs WHERE organisation_id = $1 AND package_number = $2)`,
		orgID, number).Scan(&inUse)
	return inUse, err
}

func (r *PackageRepository) PackageNumberInUse(ctx context.Context, orgID int, number string) (bool, error) {
	return packageNumberInUse(ctx, r.DB, orgID, number)
}

func (r *PackageRepository) GetPackage(ctx context.Context, orgID, packageID int) (*models.Package, error) {
	return scanPackage(r.DB.QueryRow(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE id = $1 AND organisation_id = $2`, packageID, orgID))
}

func (r *PackageRepository) ListPackages(ctx context.Context, orgID int, filter models.PackageFilter) ([]*models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE organisation_id = $1`
	args := []any{orgID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Prefix != "" {
		args = append(args, escapeLike(filter.Prefix)+"%")
		query += fmt.Sprintf(" AND package_number LIKE $%d", len(args))
	}
	query += ` ORDER BY package_number`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packages []*models.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}
