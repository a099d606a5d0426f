// Package memstore provides an in-memory implementation of the repository
// contracts, used by service and handler tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"timber-backend/internal/models"
	"timber-backend/internal/repositories"
)

var (
	_ repositories.ProductionStore = (*Store)(nil)
	_ repositories.ProcessStore    = (*Store)(nil)
	_ repositories.InventoryStore  = (*Store)(nil)
	_ repositories.UserStore       = (*Store)(nil)
)

type counterKey struct {
	orgID int
	code  string
}

type state struct {
	nextID    int
	processes map[int]models.Process
	entries   map[int]models.ProductionEntry
	inputs    map[int]models.ProductionInput
	outputs   map[int]models.ProductionOutput
	packages  map[int]models.Package
	counters  map[counterKey]int
	users     map[int]models.User
}

func newState() *state {
	return &state{
		processes: make(map[int]models.Process),
		entries:   make(map[int]models.ProductionEntry),
		inputs:    make(map[int]models.ProductionInput),
		outputs:   make(map[int]models.ProductionOutput),
		packages:  make(map[int]models.Package),
		counters:  make(map[counterKey]int),
		users:     make(map[int]models.User),
	}
}

func (s *state) clone() *state {
	c := newState()
	c.nextID = s.nextID
	for k, v := range s.processes {
		c.processes[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.inputs {
		c.inputs[k] = v
	}
	for k, v := range s.outputs {
		c.outputs[k] = v
	}
	for k, v := range s.packages {
		c.packages[k] = v
	}
	for k, v := range s.counters {
		c.counters[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

func (s *state) id() int {
	s.nextID++
	return s.nextID
}

// Store keeps every table in maps guarded by a single mutex. Transactions
// snapshot the state and restore it when the callback fails.
type Store struct {
	mu   *sync.Mutex
	txMu *sync.Mutex
	st   *state
	inTx bool

	// Fail, when set, is consulted before every mutating call with the
	// method name; a non-nil result aborts that call.
	Fail func(op string) error
}

func New() *Store {
	return &Store{mu: &sync.Mutex{}, txMu: &sync.Mutex{}, st: newState()}
}

func (s *Store) fail(op string) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx repositories.ProductionStore) error) error {
	if s.inTx {
		return fn(s)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	tx := &Store{mu: s.mu, txMu: s.txMu, st: s.st, inTx: true, Fail: s.Fail}
	if err := fn(tx); err != nil {
		s.mu.Lock()
		*s.st = *snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Processes

func (s *Store) GetProcess(ctx context.Context, orgID, processID int) (*models.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.processes[processID]
	if !ok || p.OrganisationID != orgID {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProcesses(ctx context.Context, orgID int) ([]*models.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Process
	for _, p := range s.st.processes {
		if p.OrganisationID == orgID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) CreateProcess(ctx context.Context, p *models.Process) error {
	if err := s.fail("CreateProcess"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.st.processes {
		if existing.OrganisationID == p.OrganisationID && existing.Code == p.Code {
			return fmt.Errorf("%w: processes_organisation_id_code_key", repositories.ErrDuplicate)
		}
	}
	now := time.Now()
	p.ID = s.st.id()
	p.IsActive = true
	p.CreatedAt, p.UpdatedAt = now, now
	s.st.processes[p.ID] = *p
	return nil
}

func (s *Store) DeactivateProcess(ctx context.Context, orgID, processID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.processes[processID]
	if !ok || p.OrganisationID != orgID {
		return repositories.ErrNotFound
	}
	p.IsActive = false
	p.UpdatedAt = time.Now()
	s.st.processes[processID] = p
	return nil
}

// Entries

func (s *Store) withProcess(e models.ProductionEntry) *models.ProductionEntry {
	if p, ok := s.st.processes[e.ProcessID]; ok {
		e.ProcessCode = p.Code
		e.ProcessName = p.Name
	}
	return &e
}

func (s *Store) GetEntry(ctx context.Context, orgID, entryID int) (*models.ProductionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.st.entries[entryID]
	if !ok || e.OrganisationID != orgID {
		return nil, repositories.ErrNotFound
	}
	return s.withProcess(e), nil
}

func (s *Store) LockEntry(ctx context.Context, orgID, entryID int) (*models.ProductionEntry, error) {
	return s.GetEntry(ctx, orgID, entryID)
}

func (s *Store) ListEntries(ctx context.Context, orgID int, filter models.ProductionFilter) ([]*models.ProductionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ProductionEntry
	for _, e := range s.st.entries {
		if e.OrganisationID != orgID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.ProcessID > 0 && e.ProcessID != filter.ProcessID {
			continue
		}
		out = append(out, s.withProcess(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) CreateEntry(ctx context.Context, e *models.ProductionEntry) error {
	if err := s.fail("CreateEntry"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Status == "" {
		e.Status = models.ProductionStatusDraft
	}
	now := time.Now()
	e.ID = s.st.id()
	e.CreatedAt, e.UpdatedAt = now, now
	stored := *e
	stored.Inputs, stored.Outputs = nil, nil
	s.st.entries[e.ID] = stored
	return nil
}

func (s *Store) UpdateEntry(ctx context.Context, e *models.ProductionEntry) error {
	if err := s.fail("UpdateEntry"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.st.entries[e.ID]
	if !ok || stored.Status != models.ProductionStatusDraft {
		return repositories.ErrNotFound
	}
	stored.ProductionDate = e.ProductionDate
	stored.PlannedWork = e.PlannedWork
	stored.ActualWork = e.ActualWork
	stored.WorkUnit = e.WorkUnit
	stored.Notes = e.Notes
	stored.UpdatedAt = time.Now()
	s.st.entries[e.ID] = stored
	return nil
}

func (s *Store) MarkValidated(ctx context.Context, entryID, userID int) error {
	if err := s.fail("MarkValidated"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.st.entries[entryID]
	if !ok || e.Status != models.ProductionStatusDraft {
		return repositories.ErrNotFound
	}
	now := time.Now()
	e.Status = models.ProductionStatusValidated
	e.ValidatedByUserID = &userID
	e.ValidatedAt = &now
	e.UpdatedAt = now
	s.st.entries[entryID] = e
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, entryID int) error {
	if err := s.fail("DeleteEntry"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.entries[entryID]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.st.entries, entryID)
	for id, in := range s.st.inputs {
		if in.EntryID == entryID {
			delete(s.st.inputs, id)
		}
	}
	for id, o := range s.st.outputs {
		if o.EntryID == entryID {
			delete(s.st.outputs, id)
		}
	}
	for id, e := range s.st.entries {
		if e.CorrectionOf != nil && *e.CorrectionOf == entryID {
			e.CorrectionOf = nil
			s.st.entries[id] = e
		}
	}
	for id, p := range s.st.packages {
		if p.ProducedByEntryID != nil && *p.ProducedByEntryID == entryID {
			p.ProducedByEntryID = nil
			s.st.packages[id] = p
		}
	}
	return nil
}

// Inputs

func (s *Store) ListInputs(ctx context.Context, entryID int) ([]models.ProductionInput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ProductionInput
	for _, in := range s.st.inputs {
		if in.EntryID == entryID {
			if p, ok := s.st.packages[in.PackageID]; ok {
				in.PackageNumber = p.PackageNumber
			}
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateInput(ctx context.Context, in *models.ProductionInput) error {
	if err := s.fail("CreateInput"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.packages[in.PackageID]; !ok {
		return fmt.Errorf("insert production input: package %d does not exist", in.PackageID)
	}
	in.ID = s.st.id()
	in.CreatedAt = time.Now()
	s.st.inputs[in.ID] = *in
	return nil
}

func (s *Store) DeleteInput(ctx context.Context, entryID, inputID int) error {
	if err := s.fail("DeleteInput"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.st.inputs[inputID]
	if !ok || in.EntryID != entryID {
		return repositories.ErrNotFound
	}
	delete(s.st.inputs, inputID)
	return nil
}

// Outputs

func (s *Store) ListOutputs(ctx context.Context, entryID int) ([]models.ProductionOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ProductionOutput
	for _, o := range s.st.outputs {
		if o.EntryID == entryID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// outputNumberTaken must be called with mu held
func (s *Store) outputNumberTaken(orgID int, number string, exceptOutputID int) bool {
	for id, o := range s.st.outputs {
		if id == exceptOutputID || !o.HasPackageNumber() || *o.PackageNumber != number {
			continue
		}
		if e, ok := s.st.entries[o.EntryID]; ok && e.OrganisationID == orgID {
			return true
		}
	}
	return false
}

func (s *Store) CreateOutput(ctx context.Context, o *models.ProductionOutput) error {
	if err := s.fail("CreateOutput"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.st.entries[o.EntryID]
	if !ok {
		return repositories.ErrNotFound
	}
	if o.HasPackageNumber() && s.outputNumberTaken(e.OrganisationID, *o.PackageNumber, 0) {
		return fmt.Errorf("%w: production_outputs_org_number_key", repositories.ErrDuplicate)
	}
	o.ID = s.st.id()
	o.CreatedAt = time.Now()
	s.st.outputs[o.ID] = *o
	return nil
}

func (s *Store) DeleteOutput(ctx context.Context, entryID, outputID int) error {
	if err := s.fail("DeleteOutput"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.outputs[outputID]
	if !ok || o.EntryID != entryID {
		return repositories.ErrNotFound
	}
	delete(s.st.outputs, outputID)
	return nil
}

func (s *Store) NextOutputSortOrder(ctx context.Context, entryID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	highest := 0
	for _, o := range s.st.outputs {
		if o.EntryID == entryID && o.SortOrder > highest {
			highest = o.SortOrder
		}
	}
	return highest + 1, nil
}

func (s *Store) SetOutputPackageNumber(ctx context.Context, outputID int, number string) error {
	if err := s.fail("SetOutputPackageNumber"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.outputs[outputID]
	if !ok {
		return repositories.ErrNotFound
	}
	if s.outputNumberTaken(s.st.entries[o.EntryID].OrganisationID, number, outputID) {
		return fmt.Errorf("%w: production_outputs_org_number_key", repositories.ErrDuplicate)
	}
	n := number
	o.PackageNumber = &n
	s.st.outputs[outputID] = o
	return nil
}

func (s *Store) LinkOutputPackage(ctx context.Context, outputID, packageID int) error {
	if err := s.fail("LinkOutputPackage"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.outputs[outputID]
	if !ok {
		return repositories.ErrNotFound
	}
	id := packageID
	o.PackageID = &id
	s.st.outputs[outputID] = o
	return nil
}

// Numbering

func (s *Store) ListPackageNumbers(ctx context.Context, orgID int, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	for _, p := range s.st.packages {
		if p.OrganisationID == orgID && strings.HasPrefix(p.PackageNumber, prefix) {
			seen[p.PackageNumber] = true
		}
	}
	for _, o := range s.st.outputs {
		if !o.HasPackageNumber() || !strings.HasPrefix(*o.PackageNumber, prefix) {
			continue
		}
		e := s.st.entries[o.EntryID]
		if e.OrganisationID == orgID && e.Status == models.ProductionStatusDraft {
			seen[*o.PackageNumber] = true
		}
	}
	numbers := make([]string, 0, len(seen))
	for n := range seen {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)
	return numbers, nil
}

func (s *Store) PackageNumberInUse(ctx context.Context, orgID int, number string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.st.packages {
		if p.OrganisationID == orgID && p.PackageNumber == number {
			return true, nil
		}
	}
	return s.outputNumberTaken(orgID, number, 0), nil
}

func (s *Store) GetCounter(ctx context.Context, orgID int, processCode string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.st.counters[counterKey{orgID, processCode}]
	return v, ok, nil
}

func (s *Store) EnsureCounter(ctx context.Context, orgID int, processCode string, seed int) error {
	if err := s.fail("EnsureCounter"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := counterKey{orgID, processCode}
	if _, ok := s.st.counters[key]; !ok {
		s.st.counters[key] = seed
	}
	return nil
}

func (s *Store) AdvanceCounter(ctx context.Context, orgID int, processCode string) (int, error) {
	if err := s.fail("AdvanceCounter"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := counterKey{orgID, processCode}
	v, ok := s.st.counters[key]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	v = v%9999 + 1
	s.st.counters[key] = v
	return v, nil
}

// SetCounter forces a counter value
func (s *Store) SetCounter(orgID int, processCode string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.counters[counterKey{orgID, processCode}] = value
}

// Packages

func (s *Store) LockPackage(ctx context.Context, orgID, packageID int) (*models.Package, error) {
	return s.GetPackage(ctx, orgID, packageID)
}

func (s *Store) GetPackage(ctx context.Context, orgID, packageID int) (*models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.packages[packageID]
	if !ok || p.OrganisationID != orgID {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListPackages(ctx context.Context, orgID int, filter models.PackageFilter) ([]*models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Package
	for _, p := range s.st.packages {
		if p.OrganisationID != orgID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Prefix != "" && !strings.HasPrefix(p.PackageNumber, filter.Prefix) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PackageNumber < out[j].PackageNumber })
	return out, nil
}

func (s *Store) UpdatePackageStock(ctx context.Context, p *models.Package) error {
	if err := s.fail("UpdatePackageStock"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.st.packages[p.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Pieces = p.Pieces
	stored.Volume = p.Volume
	stored.Status = p.Status
	stored.UpdatedAt = time.Now()
	s.st.packages[p.ID] = stored
	return nil
}

func (s *Store) CreatePackage(ctx context.Context, p *models.Package) error {
	if err := s.fail("CreatePackage"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.st.packages {
		if existing.OrganisationID == p.OrganisationID && existing.PackageNumber == p.PackageNumber {
			return fmt.Errorf("%w: packages_organisation_id_package_number_key", repositories.ErrDuplicate)
		}
	}
	if p.Status == "" {
		p.Status = models.PackageStatusAvailable
	}
	now := time.Now()
	p.ID = s.st.id()
	p.CreatedAt, p.UpdatedAt = now, now
	s.st.packages[p.ID] = *p
	return nil
}

func (s *Store) ListPackagesProducedBy(ctx context.Context, entryID int) ([]models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Package
	for _, p := range s.st.packages {
		if p.ProducedByEntryID != nil && *p.ProducedByEntryID == entryID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeletePackagesProducedBy(ctx context.Context, entryID int) error {
	if err := s.fail("DeletePackagesProducedBy"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.st.packages {
		if p.ProducedByEntryID == nil || *p.ProducedByEntryID != entryID {
			continue
		}
		for _, in := range s.st.inputs {
			if in.PackageID == id {
				return fmt.Errorf("delete package %s: still referenced by production input %d", p.PackageNumber, in.ID)
			}
		}
	}
	for id, p := range s.st.packages {
		if p.ProducedByEntryID != nil && *p.ProducedByEntryID == entryID {
			delete(s.st.packages, id)
			for oid, o := range s.st.outputs {
				if o.PackageID != nil && *o.PackageID == id {
					o.PackageID = nil
					s.st.outputs[oid] = o
				}
			}
		}
	}
	return nil
}

func (s *Store) FindConsumers(ctx context.Context, packageIDs []int, excludeEntryID int) ([]models.PackageConsumer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[int]bool, len(packageIDs))
	for _, id := range packageIDs {
		wanted[id] = true
	}
	var out []models.PackageConsumer
	for _, in := range s.st.inputs {
		if !wanted[in.PackageID] || in.EntryID == excludeEntryID {
			continue
		}
		out = append(out, models.PackageConsumer{
			PackageID:     in.PackageID,
			PackageNumber: s.st.packages[in.PackageID].PackageNumber,
			EntryID:       in.EntryID,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PackageNumber != out[j].PackageNumber {
			return out[i].PackageNumber < out[j].PackageNumber
		}
		return out[i].EntryID < out[j].EntryID
	})
	return out, nil
}

// Users

func (s *Store) GetUser(ctx context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.st.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.fail("CreateUser"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.st.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("%w: users_email_key", repositories.ErrDuplicate)
		}
	}
	if u.Role == "" {
		u.Role = models.RoleViewer
	}
	now := time.Now()
	u.ID = s.st.id()
	u.IsActive = true
	u.CreatedAt, u.UpdatedAt = now, now
	s.st.users[u.ID] = *u
	return nil
}
