package repositories

import (
	"context"

	"timber-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ProcessRepository struct {
	DB *pgxpool.Pool
}

func NewProcessRepository(db *pgxpool.Pool) *ProcessRepository {
	return &ProcessRepository{DB: db}
}

var _ ProcessStore = (*ProcessRepository)(nil)

func getProcess(ctx context.Context, db DBTX, orgID, processID int) (*models.Process, error) {
	var p models.Process
	err := db.QueryRow(ctx,
		`SELECT id, organisation_id, code, name, is_active, created_at, updated_at
		 FROM processes WHERE id = $1 AND organisation_id = $2`, processID, orgID,
	).Scan(&p.ID, &p.OrganisationID, &p.Code, &p.Name, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProcessRepository) GetProcess(ctx context.Context, orgID, processID int) (*models.Process, error) {
	return getProcess(ctx, r.DB, orgID, processID)
}

func (r *ProcessRepository) ListProcesses(ctx context.Context, orgID int) ([]*models.Process, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, organisation_id, code, name, is_active, created_at, updated_at
		 FROM processes WHERE organisation_id = $1
		 ORDER BY code`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var processes []*models.Process
	for rows.Next() {
		var p models.Process
		if err := rows.Scan(&p.ID, &p.OrganisationID, &p.Code, &p.Name, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		processes = append(processes, &p)
	}
	return processes, rows.Err()
}

func (r *ProcessRepository) CreateProcess(ctx context.Context, p *models.Process) error {
	return translate(r.DB.QueryRow(ctx,
		`INSERT INTO processes(organisation_id, code, name, is_active)
		 VALUES($1, $2, $3, TRUE)
		 RETURNING id, is_active, created_at, updated_at`,
		p.OrganisationID, p.Code, p.Name,
	).Scan(&p.ID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt))
}

func (r *ProcessRepository) DeactivateProcess(ctx context.Context, orgID, processID int) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE processes SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND organisation_id = $2`,
		processID, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
