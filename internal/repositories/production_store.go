package repositories

import (
	"context"

	"timber-backend/internal/models"
)

// ProductionStore is the persistence contract of the production reconciliation
// module. Every method is scoped to a single statement; WithTx groups calls into
// one atomic unit.
type ProductionStore interface {
	// WithTx runs fn against a transaction-bound store. The transaction commits
	// when fn returns nil and rolls back otherwise. Nested calls reuse the
	// outer transaction.
	WithTx(ctx context.Context, fn func(tx ProductionStore) error) error

	GetProcess(ctx context.Context, orgID, processID int) (*models.Process, error)

	GetEntry(ctx context.Context, orgID, entryID int) (*models.ProductionEntry, error)
	// LockEntry reads the entry and holds a row lock until the transaction ends
	LockEntry(ctx context.Context, orgID, entryID int) (*models.ProductionEntry, error)
	ListEntries(ctx context.Context, orgID int, filter models.ProductionFilter) ([]*models.ProductionEntry, error)
	CreateEntry(ctx context.Context, e *models.ProductionEntry) error
	UpdateEntry(ctx context.Context, e *models.ProductionEntry) error
	MarkValidated(ctx context.Context, entryID, userID int) error
	DeleteEntry(ctx context.Context, entryID int) error

	ListInputs(ctx context.Context, entryID int) ([]models.ProductionInput, error)
	CreateInput(ctx context.Context, in *models.ProductionInput) error
	DeleteInput(ctx context.Context, entryID, inputID int) error

	// ListOutputs returns outputs ordered by sort order, then id
	ListOutputs(ctx context.Context, entryID int) ([]models.ProductionOutput, error)
	CreateOutput(ctx context.Context, out *models.ProductionOutput) error
	DeleteOutput(ctx context.Context, entryID, outputID int) error
	NextOutputSortOrder(ctx context.Context, entryID int) (int, error)
	SetOutputPackageNumber(ctx context.Context, outputID int, number string) error
	LinkOutputPackage(ctx context.Context, outputID, packageID int) error

	// ListPackageNumbers returns committed inventory numbers and draft output
	// numbers of the organisation starting with prefix
	ListPackageNumbers(ctx context.Context, orgID int, prefix string) ([]string, error)
	// PackageNumberInUse reports whether number exists in inventory or on any
	// output of the organisation
	PackageNumberInUse(ctx context.Context, orgID int, number string) (bool, error)
	GetCounter(ctx context.Context, orgID int, processCode string) (int, bool, error)
	// EnsureCounter creates the counter row with seed when it does not exist yet
	EnsureCounter(ctx context.Context, orgID int, processCode string, seed int) error
	// AdvanceCounter atomically moves the counter to the next sequence value
	// (wrapping 9999 to 1) and returns it
	AdvanceCounter(ctx context.Context, orgID int, processCode string) (int, error)

	LockPackage(ctx context.Context, orgID, packageID int) (*models.Package, error)
	UpdatePackageStock(ctx context.Context, p *models.Package) error
	CreatePackage(ctx context.Context, p *models.Package) error
	ListPackagesProducedBy(ctx context.Context, entryID int) ([]models.Package, error)
	DeletePackagesProducedBy(ctx context.Context, entryID int) error
	// FindConsumers lists entries other than excludeEntryID that use any of
	// the packages as an input
	FindConsumers(ctx context.Context, packageIDs []int, excludeEntryID int) ([]models.PackageConsumer, error)
}

// ProcessStore persists process reference data
type ProcessStore interface {
	ListProcesses(ctx context.Context, orgID int) ([]*models.Process, error)
	GetProcess(ctx context.Context, orgID, processID int) (*models.Process, error)
	CreateProcess(ctx context.Context, p *models.Process) error
	DeactivateProcess(ctx context.Context, orgID, processID int) error
}

// InventoryStore persists inventory packages outside of production
type InventoryStore interface {
	ListPackages(ctx context.Context, orgID int, filter models.PackageFilter) ([]*models.Package, error)
	GetPackage(ctx context.Context, orgID, packageID int) (*models.Package, error)
	CreatePackage(ctx context.Context, p *models.Package) error
	// PackageNumberInUse reports whether number exists in inventory or on any
	// output of the organisation
	PackageNumberInUse(ctx context.Context, orgID int, number string) (bool, error)
}
