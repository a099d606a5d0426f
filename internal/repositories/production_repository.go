package repositories

import (
	"context"
	"fmt"
	"strings"

	"timber-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entrySelect = `
	SELECT e.id, e.organisation_id, e.process_id, p.code, p.name, e.production_date, e.status,
	       e.correction_of, e.planned_work, e.actual_work, COALESCE(e.work_unit, ''), COALESCE(e.notes, ''),
	       e.created_by_user_id, e.validated_by_user_id, e.validated_at, e.created_at, e.updated_at
	FROM production_entries e
	JOIN processes p ON p.id = e.process_id`

// ProductionRepository implements ProductionStore on PostgreSQL
type ProductionRepository struct {
	DB   DBTX
	pool *pgxpool.Pool // nil when bound to a transaction
}

func NewProductionRepository(pool *pgxpool.Pool) *ProductionRepository {
	return &ProductionRepository{DB: pool, pool: pool}
}

var _ ProductionStore = (*ProductionRepository)(nil)

func (r *ProductionRepository) WithTx(ctx context.Context, fn func(tx ProductionStore) error) error {
	if r.pool == nil {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&ProductionRepository{DB: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ProductionRepository) GetProcess(ctx context.Context, orgID, processID int) (*models.Process, error) {
	return getProcess(ctx, r.DB, orgID, processID)
}

func scanEntry(row pgx.Row) (*models.ProductionEntry, error) {
	var e models.ProductionEntry
	err := row.Scan(&e.ID, &e.OrganisationID, &e.ProcessID, &e.ProcessCode, &e.ProcessName,
		&e.ProductionDate, &e.Status, &e.CorrectionOf, &e.PlannedWork, &e.ActualWork, &e.WorkUnit,
		&e.Notes, &e.CreatedByUserID, &e.ValidatedByUserID, &e.ValidatedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *ProductionRepository) GetEntry(ctx context.Context, orgID, entryID int) (*models.ProductionEntry, error) {
	return scanEntry(r.DB.QueryRow(ctx, entrySelect+` WHERE e.id = $1 AND e.organisation_id = $2`, entryID, orgID))
}

func (r *ProductionRepository) LockEntry(ctx context.Context, orgID, entryID int) (*models.ProductionEntry, error) {
	return scanEntry(r.DB.QueryRow(ctx,
		entrySelect+` WHERE e.id = $1 AND e.organisation_id = $2 FOR UPDATE OF e`, entryID, orgID))
}

func (r *ProductionRepository) ListEntries(ctx context.Context, orgID int, filter models.ProductionFilter) ([]*models.ProductionEntry, error) {
	query := entrySelect + ` WHERE e.organisation_id = $1`
	args := []any{orgID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND e.status = $%d", len(args))
	}
	if filter.ProcessID > 0 {
		args = append(args, filter.ProcessID)
		query += fmt.Sprintf(" AND e.process_id = $%d", len(args))
	}
	query += ` ORDER BY e.production_date DESC, e.id DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ProductionEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *ProductionRepository) CreateEntry(ctx context.Context, e *models.ProductionEntry) error {
	if e.Status == "" {
		e.Status = models.ProductionStatusDraft
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO production_entries(organisation_id, process_id, production_date, status, correction_of,
		                                planned_work, actual_work, work_unit, notes, created_by_user_id)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		e.OrganisationID, e.ProcessID, e.ProductionDate, e.Status, e.CorrectionOf,
		e.PlannedWork, e.ActualWork, e.WorkUnit, e.Notes, e.CreatedByUserID,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *ProductionRepository) UpdateEntry(ctx context.Context, e *models.ProductionEntry) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE production_entries
		 SET production_date = $1, planned_work = $2, actual_work = $3, work_unit = $4, notes = $5, updated_at = NOW()
		 WHERE id = $6 AND status = 'draft'`,
		e.ProductionDate, e.PlannedWork, e.ActualWork, e.WorkUnit, e.Notes, e.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductionRepository) MarkValidated(ctx context.Context, entryID, userID int) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE production_entries
		 SET status = 'validated', validated_by_user_id = $1, validated_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND status = 'draft'`, userID, entryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEntry removes the entry; inputs and outputs cascade
func (r *ProductionRepository) DeleteEntry(ctx context.Context, entryID int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM production_entries WHERE id = $1`, entryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductionRepository) ListInputs(ctx context.Context, entryID int) ([]models.ProductionInput, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT i.id, i.entry_id, i.package_id, COALESCE(p.package_number, ''), i.pieces, i.volume, i.created_at
		 FROM production_inputs i
		 LEFT JOIN packages p ON p.id = i.package_id
		 WHERE i.entry_id = $1
		 ORDER BY i.id`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inputs []models.ProductionInput
	for rows.Next() {
		var in models.ProductionInput
		if err := rows.Scan(&in.ID, &in.EntryID, &in.PackageID, &in.PackageNumber, &in.Pieces, &in.Volume, &in.CreatedAt); err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, rows.Err()
}

func (r *ProductionRepository) CreateInput(ctx context.Context, in *models.ProductionInput) error {
	return translate(r.DB.QueryRow(ctx,
		`INSERT INTO production_inputs(entry_id, package_id, pieces, volume)
		 VALUES($1, $2, $3, $4)
		 RETURNING id, created_at`,
		in.EntryID, in.PackageID, in.Pieces, in.Volume,
	).Scan(&in.ID, &in.CreatedAt))
}

func (r *ProductionRepository) DeleteInput(ctx context.Context, entryID, inputID int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM production_inputs WHERE id = $1 AND entry_id = $2`, inputID, entryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductionRepository) ListOutputs(ctx context.Context, entryID int) ([]models.ProductionOutput, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, entry_id, package_number, thickness, width, length, pieces, volume,
		        COALESCE(species, ''), COALESCE(grade, ''), sort_order, package_id, created_at
		 FROM production_outputs
		 WHERE entry_id = $1
		 ORDER BY sort_order, id`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outputs []models.ProductionOutput
	for rows.Next() {
		var o models.ProductionOutput
		if err := rows.Scan(&o.ID, &o.EntryID, &o.PackageNumber, &o.Thickness, &o.Width, &o.Length, &o.Pieces,
			&o.Volume, &o.Species, &o.Grade, &o.SortOrder, &o.PackageID, &o.CreatedAt); err != nil {
			return nil, err
		}
		outputs = append(outputs, o)
	}
	return outputs, rows.Err()
}

func (r *ProductionRepository) CreateOutput(ctx context.Context, o *models.ProductionOutput) error {
	// organisation_id is copied from the entry so the partial unique index on
	// (organisation_id, package_number) covers draft outputs too
	return translate(r.DB.QueryRow(ctx,
		`INSERT INTO production_outputs(entry_id, organisation_id, package_number, thickness, width, length,
		                                pieces, volume, species, grade, sort_order)
		 SELECT e.id, e.organisation_id, $2, $3, $4, $5, $6, $7, $8, $9, $10
		 FROM production_entries e WHERE e.id = $1
		 RETURNING id, created_at`,
		o.EntryID, o.PackageNumber, o.Thickness, o.Width, o.Length, o.Pieces, o.Volume, o.Species, o.Grade, o.SortOrder,
	).Scan(&o.ID, &o.CreatedAt))
}

func (r *ProductionRepository) DeleteOutput(ctx context.Context, entryID, outputID int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM production_outputs WHERE id = $1 AND entry_id = $2`, outputID, entryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductionRepository) NextOutputSortOrder(ctx context.Context, entryID int) (int, error) {
	var next int
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM production_outputs WHERE entry_id = $1`, entryID).Scan(&next)
	return next, err
}

func (r *ProductionRepository) SetOutputPackageNumber(ctx context.Context, outputID int, number string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE production_outputs SET package_number = $1 WHERE id = $2`, number, outputID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductionRepository) LinkOutputPackage(ctx context.Context, outputID, packageID int) error {
	_, err := r.DB.Exec(ctx, `UPDATE production_outputs SET package_id = $1 WHERE id = $2`, packageID, outputID)
	return err
}

func (r *ProductionRepository) ListPackageNumbers(ctx context.Context, orgID int, prefix string) ([]string, error) {
	pattern := escapeLike(prefix) + "%"
	rows, err := r.DB.Query(ctx,
		`SELECT package_number FROM packages
		 WHERE organisation_id = $1 AND package_number LIKE $2
		 UNION
		 SELECT o.package_number FROM production_outputs o
		 JOIN production_entries e ON e.id = o.entry_id
		 WHERE e.organisation_id = $1 AND e.status = 'draft' AND o.package_number LIKE $2`,
		orgID, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (r *ProductionRepository) PackageNumberInUse(ctx context.Context, orgID int, number string) (bool, error) {
	return packageNumberInUse(ctx, r.DB, orgID, number)
}

func (r *ProductionRepository) GetCounter(ctx context.Context, orgID int, processCode string) (int, bool, error) {
	var value int
	err := r.DB.QueryRow(ctx,
		`SELECT last_value FROM package_number_counters WHERE organisation_id = $1 AND process_code = $2`,
		orgID, processCode).Scan(&value)
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}

func (r *ProductionRepository) EnsureCounter(ctx context.Context, orgID int, processCode string, seed int) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO package_number_counters(organisation_id, process_code, last_value)
		 VALUES($1, $2, $3)
		 ON CONFLICT (organisation_id, process_code) DO NOTHING`,
		orgID, processCode, seed)
	return err
}

func (r *ProductionRepository) AdvanceCounter(ctx context.Context, orgID int, processCode string) (int, error) {
	// Row lock taken by the UPDATE serialises concurrent allocators
	var value int
	err := r.DB.QueryRow(ctx,
		`UPDATE package_number_counters
		 SET last_value = (last_value % 9999) + 1, updated_at = NOW()
		 WHERE organisation_id = $1 AND process_code = $2
		 RETURNING last_value`,
		orgID, processCode).Scan(&value)
	return value, translate(err)
}

const packageColumns = `id, organisation_id, package_number, COALESCE(species, ''), COALESCE(grade, ''),
	thickness, width, length, pieces, volume, status, produced_by_entry_id, created_at, updated_at`

func scanPackage(row pgx.Row) (*models.Package, error) {
	var p models.Package
	err := row.Scan(&p.ID, &p.OrganisationID, &p.PackageNumber, &p.Species, &p.Grade, &p.Thickness, &p.Width,
		&p.Length, &p.Pieces, &p.Volume, &p.Status, &p.ProducedByEntryID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProductionRepository) LockPackage(ctx context.Context, orgID, packageID int) (*models.Package, error) {
	return scanPackage(r.DB.QueryRow(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE id = $1 AND organisation_id = $2 FOR UPDATE`,
		packageID, orgID))
}

func (r *ProductionRepository) UpdatePackageStock(ctx context.Context, p *models.Package) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE packages SET pieces = $1, volume = $2, status = $3, updated_at = NOW() WHERE id = $4`,
		p.Pieces, p.Volume, p.Status, p.ID)
	return err
}

func (r *ProductionRepository) CreatePackage(ctx context.Context, p *models.Package) error {
	return createPackage(ctx, r.DB, p)
}

func (r *ProductionRepository) ListPackagesProducedBy(ctx context.Context, entryID int) ([]models.Package, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE produced_by_entry_id = $1 ORDER BY id`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packages []models.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, *p)
	}
	return packages, rows.Err()
}

func (r *ProductionRepository) DeletePackagesProducedBy(ctx context.Context, entryID int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM packages WHERE produced_by_entry_id = $1`, entryID)
	return err
}

func (r *ProductionRepository) FindConsumers(ctx context.Context, packageIDs []int, excludeEntryID int) ([]models.PackageConsumer, error) {
	if len(packageIDs) == 0 {
		return nil, nil
	}
	rows, err := r.DB.Query(ctx,
		`SELECT i.package_id, p.package_number, i.entry_id
		 FROM production_inputs i
		 JOIN packages p ON p.id = i.package_id
		 WHERE i.package_id = ANY($1) AND i.entry_id <> $2
		 ORDER BY p.package_number, i.entry_id`,
		packageIDs, excludeEntryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var consumers []models.PackageConsumer
	for rows.Next() {
		var c models.PackageConsumer
		if err := rows.Scan(&c.PackageID, &c.PackageNumber, &c.EntryID); err != nil {
			return nil, err
		}
		consumers = append(consumers, c)
	}
	return consumers, rows.Err()
}

// escapeLike escapes LIKE wildcards in a literal prefix
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
