package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timber-backend/internal/models"
	"timber-backend/internal/repositories"
	"timber-backend/internal/repositories/memstore"
)

const testOrg = 1

var (
	admin    = Actor{UserID: 1, Role: models.RoleAdmin, OrganisationID: testOrg, HomeOrganisationID: testOrg}
	producer = Actor{UserID: 2, Role: models.RoleProducer, OrganisationID: testOrg, HomeOrganisationID: testOrg}
	viewer   = Actor{UserID: 3, Role: models.RoleViewer, OrganisationID: testOrg, HomeOrganisationID: testOrg}
)

type recordedEvent struct {
	orgID     int
	eventType string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(orgID int, eventType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{orgID, eventType})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.eventType)
	}
	return out
}

type recordingArchiver struct {
	entryID int
	pdf     []byte
	err     error
}

func (a *recordingArchiver) ArchiveSlip(ctx context.Context, orgID, entryID int, pdf []byte) error {
	a.entryID = entryID
	a.pdf = pdf
	return a.err
}

type fixture struct {
	ctx     context.Context
	store   *memstore.Store
	svc     *ProductionService
	process *models.Process
	events  *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	process := &models.Process{OrganisationID: testOrg, Code: "SAW", Name: "Sawing"}
	require.NoError(t, store.CreateProcess(ctx, process))

	svc := NewProductionService(store)
	events := &recordingPublisher{}
	svc.SetEventPublisher(events)
	return &fixture{ctx: ctx, store: store, svc: svc, process: process, events: events}
}

func (f *fixture) stock(t *testing.T, number string, pieces int, volume string) *models.Package {
	t.Helper()
	p := &models.Package{
		OrganisationID: testOrg,
		PackageNumber:  number,
		Species:        "Spruce",
		Pieces:         pieces,
		Volume:         d(volume),
		Status:         models.PackageStatusAvailable,
	}
	require.NoError(t, f.store.CreatePackage(f.ctx, p))
	return p
}

func (f *fixture) draft(t *testing.T) *models.ProductionEntry {
	t.Helper()
	entry, err := f.svc.CreateDraft(f.ctx, producer, &models.CreateProductionEntryRequest{
		ProcessID:   f.process.ID,
		PlannedWork: d("8"),
		ActualWork:  d("7"),
		WorkUnit:    "hours",
	})
	require.NoError(t, err)
	return entry
}

// output adds a 25x100x4000mm output of 10 pieces (0.1 m3)
func (f *fixture) output(t *testing.T, entryID int, number string) *models.ProductionOutput {
	t.Helper()
	out, err := f.svc.DefineOutput(f.ctx, producer, entryID, &models.DefineOutputRequest{
		PackageNumber: number,
		Thickness:     d("25"),
		Width:         d("100"),
		Length:        d("4000"),
		Pieces:        10,
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) input(t *testing.T, entryID, packageID, pieces int, volume string) {
	t.Helper()
	_, err := f.svc.AttachInput(f.ctx, producer, entryID, &models.AttachInputRequest{
		PackageID: packageID,
		Pieces:    pieces,
		Volume:    d(volume),
	})
	require.NoError(t, err)
}

func (f *fixture) pkg(t *testing.T, id int) *models.Package {
	t.Helper()
	p, err := f.store.GetPackage(f.ctx, testOrg, id)
	require.NoError(t, err)
	return p
}

// validated builds and validates an entry consuming all of a fresh log package
func (f *fixture) validated(t *testing.T, logNumber string) (*models.ValidationResult, *models.Package) {
	t.Helper()
	log := f.stock(t, logNumber, 10, "1")
	entry := f.draft(t)
	f.input(t, entry.ID, log.ID, 10, "1")
	f.output(t, entry.ID, "")
	result, err := f.svc.Validate(f.ctx, producer, entry.ID)
	require.NoError(t, err)
	return result, log
}

func numbers(outputs []models.ProductionOutput) []string {
	var out []string
	for _, o := range outputs {
		if o.PackageNumber == nil {
			out = append(out, "")
			continue
		}
		out = append(out, *o.PackageNumber)
	}
	return out
}

func TestAssignContinuesAfterExistingNumbers(t *testing.T) {
	f := newFixture(t)
	f.stock(t, "N-SAW-0012", 5, "0.5")
	entry := f.draft(t)
	f.output(t, entry.ID, "")
	f.output(t, entry.ID, "N-SAW-0010")
	f.output(t, entry.ID, "")

	assigned, err := f.svc.AssignPackageNumbers(f.ctx, producer, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"N-SAW-0013", "N-SAW-0014"}, assigned)

	got, err := f.svc.Get(f.ctx, viewer, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"N-SAW-0013", "N-SAW-0010", "N-SAW-0014"}, numbers(got.Outputs))
	assert.Contains(t, f.events.types(), EventNumbersAssigned)
}

func TestAssignIsIdempotentOnceNumbered(t *testing.T) {
	f := newFixture(t)
	entry := f.draft(t)
	f.output(t, entry.ID, "")

	first, err := f.svc.AssignPackageNumbers(f.ctx, producer, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"N-SAW-0001"}, first)

	for i := 0; i < 2; i++ {
		again, err := f.svc.AssignPackageNumbers(f.ctx, producer, entry.ID)
		require.NoError(t, err)
		assert.NotNil(t, again)
		assert.Empty(t, again)
	}
}

func TestAssignWrapsAfter9999(t *testing.T) {
	f := newFixture(t)
	f.store.SetCounter(testOrg, "SAW", 9999)
	entry := f.draft(t)
	f.output(t, entry.ID, "")

	assigned, err := f.svc.AssignPackageNumbers(f.ctx, producer, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"N-SAW-0001"}, assigned)
}

func TestAssignSkipsNumbersAlreadyTaken(t *testing.T) {
	f := newFixture(t)
	f.store.SetCounter(testOrg, "SAW", 4)
	f.stock(t, "N-SAW-0005", 1, "0.1")
	other := f.draft(t)
	f.output(t, other.ID, "N-SAW-0006")

	entry := f.draft(t)
	f.output(t, entry.ID, "")
	assigned, err := f.svc.AssignPackageNumbers(f.ctx, producer, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"N-SAW-0007"}, assigned)
}

func TestAssignFailureLeavesOutputsUnnumbered(t *testing.T) {
	f := newFixture(t)
	entry := f.draft(t)
	f.output(t, entry.ID, "")
	f.output(t, entry.ID, "")

	calls := 0
	f.store.Fail = func(op string) error {
		if op == "SetOutputPackageNumber" {
			calls++
			if calls == 2 {
				return errors.New("disk full")
			}
		}
		return nil
	}
	_, err := f.svc.AssignPackageNumbers(f.ctx, producer, entry.ID)
	assert.Equal(t, KindUpdateFailed, KindOf(err))

	got, err := f.svc.Get(f.ctx, viewer, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"", ""}, numbers(got.Outputs))
	_, ok, _ := f.store.GetCounter(f.ctx, testOrg, "SAW")
	assert.False(t, ok)
}

func TestAssignRequiresDraft(t *testing.T) {
	f := newFixture(t)
	result, _ := f.validated(t, "LOG-1")

	_, err := f.svc.AssignPackageNumbers(f.ctx, producer, result.Entry.ID)
	assert.Equal(t, KindInvalidState, KindOf(err))
}

func TestCreateDraftChecksProcess(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateDraft(f.ctx, producer, &models.CreateProductionEntryRequest{ProcessID: 999})
	assert.Equal(t, KindNotFound, KindOf(err))

	require.NoError(t, f.store.DeactivateProcess(f.ctx, testOrg, f.process.ID))
	_, err = f.svc.CreateDraft(f.ctx, producer, &models.CreateProductionEntryRequest{ProcessID: f.process.ID})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCreateDraftDefaultsDateAndRejectsBadOne(t *testing.T) {
	f := newFixture(t)
	entry := f.draft(t)
	assert.Equal(t, models.ProductionStatusDraft, entry.Status)
	assert.False(t, entry.ProductionDate.IsZero())
	assert.Equal(t, "SAW", entry.ProcessCode)

	_, err := f.svc.CreateDraft(f.ctx, producer, &models.CreateProductionEntryRequest{
		ProcessID:      f.process.ID,
		ProductionDate: "17/10/2026",
	})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestUpdateDraft(t *testing.T) {
	f := newFixture(t)
	entry := f.draft(t)

	updated, err := f.svc.UpdateDraft(f.ctx, producer, entry.ID, &models.UpdateProductionEntryRequest{
		ProductionDate: "2026-10-01",
		PlannedWork:    d("6"),
		ActualWork:     d("6.5"),
		WorkUnit:       "hours",
		Notes:          " night shift ",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-01", updated.ProductionDate.Format("2006-01-02"))
	assert.Equal(t, "night shift", updated.Notes)

	_, err = f.svc.UpdateDraft(f.ctx, producer, entry.ID, &models.UpdateProductionEntryRequest{ActualWork: d("-1")})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestRoleChecks(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateDraft(f.ctx, viewer, &models.CreateProductionEntryRequest{ProcessID: f.process.ID})
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = f.svc.CreateDraft(f.ctx, Actor{}, &models.CreateProductionEntryRequest{ProcessID: f.process.ID})
	assert.Equal(t, KindUnauthenticated, KindOf(err))

	entry := f.draft(t)
	_, err = f.svc.Validate(f.ctx, viewer, entry.ID)
	assert.Equal(t, KindForbidden, KindOf(err))

	// Viewers can still read
	_, err = f.svc.Summary(f.ctx, viewer, entry.ID)
	assert.NoError(t, err)
}

func TestEntriesAreScopedToOrganisation(t *testing.T) {
	f := newFixture(t)
	entry := f.draft(t)
	outsider := Actor{UserID: 9, Role: models.RoleAdmin, OrganisationID: 2, HomeOrganisationID: 2}

	_, err := f.svc.Get(f.ctx, outsider, entry.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
	err = f.svc.Delete(f.ctx, outsider, entry.ID)
	assert.Equal(t, KindNotFound, KindOf(err))

	list, err := f.svc.List(f.ctx, outsider, models.ProductionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	f.draft(t)
	f.validated(t, "LOG-1")

	drafts, err := f.svc.List(f.ctx, viewer, models.ProductionFilter{Status: models.ProductionStatusDraft})
	require.NoError(t, err)
	assert.Len(t, drafts, 1)

	all, err := f.svc.List(f.ctx, viewer, models.ProductionFilter{ProcessID: f.process.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.List(f.ctx, viewer, models.ProductionFilter{Status: "archived"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAttachInputValidation(t *testing.T) {
	f := newFixture(t)
	log := f.stock(t, "LOG-1", 10, "1")
	entry := f.draft(t)

	_, err := f.svc.AttachInput(f.ctx, producer, entry.ID, &models.AttachInputRequest{PackageID: log.ID})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.svc.AttachInput(f.ctx, producer, entry.ID, &models.AttachInputRequest{PackageID: 999, Pieces: 1})
	assert.Equal(t, KindNotFound, KindOf(err))

	in, err := f.svc.AttachInput(f.ctx, producer, entry.ID, &models.AttachInputRequest{PackageID: log.ID, Pieces: 20})
	require.NoError(t, err)
	assert.Equal(t, "LOG-1", in.PackageNumber)
	// Stock is not touched before validation
	assert.Equal(t, 10, f.pkg(t, log.ID).Pieces)

	require.NoError(t, f.svc.RemoveInput(f.ctx, producer, entry.ID, in.ID))
	got, err := f.svc.Get(f.ctx, viewer, entry.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Inputs)
}

func TestDefineOutput(t *testing.T) {
	f := newFixture(t)
	entry := f.draft(t)

	out := f.output(t, entry.ID, "")
	assert.True(t, d("0.1").Equal(out.Volume))
	assert.Equal(t, 1, out.SortOrder)
	assert.Nil(t, out.PackageNumber)

	preset := f.output(t, entry.ID, " n-plan-0007 ")
	require.NotNil(t, preset.PackageNumber)
	assert.Equal(t, "N-PLAN-0007", *preset.PackageNumber)
	assert.Equal(t, 2, preset.SortOrder)

	_, err := f.svc.DefineOutput(f.ctx, producer, entry.ID, &models.DefineOutputRequest{
		PackageNumber: "N-PLAN-0007", Thickness: d("1"), Width: d("1"), Length: d("1"), Pieces: 1,
	})
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = f.svc.DefineOutput(f.ctx, producer, entry.ID, &models.DefineOutputRequest{
		PackageNumber: "PKG-7", Thickness: d("1"), Width: d("1"), Length: d("1"), Pieces: 1,
	})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.svc.DefineOutput(f.ctx, producer, entry.ID, &models.DefineOutputRequest{
		Thickness: d("25"), Width: d("0"), Length: d("4000"), Pieces: 1,
	})
	assert.Equal(t, KindValidation, KindOf(err))

	require.NoError(t, f.svc.RemoveOutput(f.ctx, producer, entry.ID, out.ID))
	assert.Equal(t, KindNotFound, KindOf(f.svc.RemoveOutput(f.ctx, producer, entry.ID, out.ID)))
}

func TestValidateCommitsEverything(t *testing.T) {
	f := newFixture(t)
	archiver := &recordingArchiver{}
	f.svc.SetSlipArchive(NewReportService("Test Mill"), archiver)

	log := f.stock(t, "LOG-1", 10, "1")
	entry := f.draft(t)
	f.input(t, entry.ID, log.ID, 4, "0.4")
	f.output(t, entry.ID, "")
	f.output(t, entry.ID, "")

	result, err := f.svc.Validate(f.ctx, producer, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductionStatusValidated, result.Entry.Status)
	require.NotNil(t, result.Entry.ValidatedByUserID)
	assert.Equal(t, producer.UserID, *result.Entry.ValidatedByUserID)
	assert.Equal(t, []string{"N-SAW-0001", "N-SAW-0002"}, result.AssignedNumbers)
	assert.True(t, d("50").Equal(result.Summary.OutcomePercent))
	assert.False(t, result.Summary.Unusual)

	remaining := f.pkg(t, log.ID)
	assert.Equal(t, 6, remaining.Pieces)
	assert.True(t, d("0.6").Equal(remaining.Volume))
	assert.Equal(t, models.PackageStatusAvailable, remaining.Status)

	produced, err := f.store.ListPackagesProducedBy(f.ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, produced, 2)
	assert.Equal(t, "N-SAW-0001", produced[0].PackageNumber)
	assert.Equal(t, models.PackageStatusAvailable, produced[0].Status)
	for _, o := range result.Entry.Outputs {
		assert.NotNil(t, o.PackageID)
	}

	assert.Equal(t, entry.ID, archiver.entryID)
	assert.True(t, bytes.HasPrefix(archiver.pdf, []byte("%PDF")))
	assert.Contains(t, f.events.types(), EventEntryValidated)
}

func TestValidateMarksEmptiedPackageConsumed(t *testing.T) {
	f := newFixture(t)
	_, log := f.validated(t, "LOG-1")

	p := f.pkg(t, log.ID)
	assert.Equal(t, 0, p.Pieces)
	assert.Equal(t, models.PackageStatusConsumed, p.Status)
}

func TestInputQuantityDerivedFromPackage(t *testing.T) {
	f := newFixture(t)
	log := f.stock(t, "LOG-1", 10, "1")
	entry := f.draft(t)
	f.input(t, entry.ID, log.ID, 5, "0")
	f.output(t, entry.ID, "")

	sum, err := f.svc.Summary(f.ctx, viewer, entry.ID)
	require.NoError(t, err)
	assert.True(t, d("0.5").Equal(sum.InputVolume), "input volume %s", sum.InputVolume)
	assert.True(t, d("20").Equal(sum.OutcomePercent))

	_, err = f.svc.Validate(f.ctx, producer, entry.ID)
	require.NoError(t, err)
	p := f.pkg(t, log.ID)
	assert.Equal(t, 5, p.Pieces)
	assert.True(t, d("0.5").Equal(p.Volume), "remaining volume %s", p.Volume)
	assert.Equal(t, models.PackageStatusAvailable, p.Status)

	other := f.stock(t, "LOG-2", 10, "1")
	byVolume, err := f.svc.AttachInput(f.ctx, producer, f.draft(t).ID, &models.AttachInputRequest{
		PackageID: other.ID,
		Volume:    d("0.3"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, byVolume.Pieces)
}

func TestValidateArchiveFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.svc.SetSlipArchive(NewReportService(""), &recordingArchiver{err: errors.New("bucket gone")})

	result, _ := f.validated(t, "LOG-1")
	assert.Equal(t, models.ProductionStatusValidated, result.Entry.Status)
}

func TestValidateNeedsInputsAndOutputs(t *testing.T) {
	f := newFixture(t)
	entry := f.draft(t)
	f.output(t, entry.ID, "")

	_, err := f.svc.Validate(f.ctx, producer, entry.ID)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestValidateRejectsInsufficientStock(t *testing.T) {
	f := newFixture(t)
	log := f.stock(t, "LOG-1", 10, "1")
	entry := f.draft(t)
	f.input(t, entry.ID, log.ID, 11, "0.5")
	f.output(t, entry.ID, "")

	_, err := f.svc.Validate(f.ctx, producer, entry.ID)
	require.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "nothing was applied")

	got, err := f.svc.Get(f.ctx, viewer, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductionStatusDraft, got.Status)
	assert.Equal(t, []string{""}, numbers(got.Outputs))
}

func TestValidateRejectsConsumedPackage(t *testing.T) {
	f := newFixture(t)
	_, log := f.validated(t, "LOG-1")

	entry := f.draft(t)
	f.input(t, entry.ID, log.ID, 0, "0.1")
	f.output(t, entry.ID, "")
	_, err := f.svc.Validate(f.ctx, producer, entry.ID)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestValidateRollsBackOnLateFailure(t *testing.T) {
	f := newFixture(t)
	log := f.stock(t, "LOG-1", 10, "1")
	entry := f.draft(t)
	f.input(t, entry.ID, log.ID, 10, "1")
	f.output(t, entry.ID, "")

	f.store.Fail = func(op string) error {
		if op == "MarkValidated" {
			return errors.New("connection reset")
		}
		return nil
	}
	_, err := f.svc.Validate(f.ctx, producer, entry.ID)
	require.Equal(t, KindUpdateFailed, KindOf(err))
	assert.Contains(t, err.Error(), "nothing was applied")

	p := f.pkg(t, log.ID)
	assert.Equal(t, 10, p.Pieces)
	assert.Equal(t, models.PackageStatusAvailable, p.Status)

	got, err := f.svc.Get(f.ctx, viewer, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductionStatusDraft, got.Status)
	assert.Equal(t, []string{""}, numbers(got.Outputs))

	produced, err := f.store.ListPackagesProducedBy(f.ctx, entry.ID)
	require.NoError(t, err)
	assert.Empty(t, produced)
	assert.NotContains(t, f.events.types(), EventEntryValidated)
}

func TestValidatedEntryIsFrozen(t *testing.T) {
	f := newFixture(t)
	result, log := f.validated(t, "LOG-1")
	id := result.Entry.ID

	_, err := f.svc.Validate(f.ctx, producer, id)
	assert.Equal(t, KindInvalidState, KindOf(err))
	assert.NotContains(t, err.Error(), "nothing was applied")

	_, err = f.svc.AttachInput(f.ctx, producer, id, &models.AttachInputRequest{PackageID: log.ID, Pieces: 1})
	assert.Equal(t, KindInvalidState, KindOf(err))
	_, err = f.svc.DefineOutput(f.ctx, producer, id, &models.DefineOutputRequest{
		Thickness: d("1"), Width: d("1"), Length: d("1"), Pieces: 1,
	})
	assert.Equal(t, KindInvalidState, KindOf(err))
	_, err = f.svc.UpdateDraft(f.ctx, producer, id, &models.UpdateProductionEntryRequest{})
	assert.Equal(t, KindInvalidState, KindOf(err))
	assert.Equal(t, KindInvalidState, KindOf(f.svc.RemoveOutput(f.ctx, producer, id, result.Entry.Outputs[0].ID)))
}

func TestDeleteDraft(t *testing.T) {
	f := newFixture(t)
	log := f.stock(t, "LOG-1", 10, "1")
	entry := f.draft(t)
	f.input(t, entry.ID, log.ID, 2, "0.2")
	f.output(t, entry.ID, "")

	require.NoError(t, f.svc.Delete(f.ctx, producer, entry.ID))
	_, err := f.svc.Get(f.ctx, viewer, entry.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, 10, f.pkg(t, log.ID).Pieces)
	assert.Contains(t, f.events.types(), EventEntryDeleted)
}

func TestDeleteValidatedRestoresInventory(t *testing.T) {
	f := newFixture(t)
	result, log := f.validated(t, "LOG-1")
	id := result.Entry.ID

	assert.Equal(t, KindForbidden, KindOf(f.svc.Delete(f.ctx, producer, id)))

	require.NoError(t, f.svc.Delete(f.ctx, admin, id))

	p := f.pkg(t, log.ID)
	assert.Equal(t, 10, p.Pieces)
	assert.True(t, d("1").Equal(p.Volume))
	assert.Equal(t, models.PackageStatusAvailable, p.Status)

	list, err := f.store.ListPackages(f.ctx, testOrg, models.PackageFilter{Prefix: "N-SAW-"})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.Get(f.ctx, viewer, id)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDeleteBlockedWhileOutputsAreConsumed(t *testing.T) {
	f := newFixture(t)
	result, log := f.validated(t, "LOG-1")
	produced, err := f.store.ListPackagesProducedBy(f.ctx, result.Entry.ID)
	require.NoError(t, err)
	require.Len(t, produced, 1)

	next := f.draft(t)
	f.input(t, next.ID, produced[0].ID, 5, "0.05")

	err = f.svc.Delete(f.ctx, admin, result.Entry.ID)
	require.Equal(t, KindForbidden, KindOf(err))
	assert.Contains(t, err.Error(), "N-SAW-0001 (entry")

	se, ok := AsError(err)
	require.True(t, ok)
	consumers, ok := se.Details.([]models.PackageConsumer)
	require.True(t, ok)
	require.Len(t, consumers, 1)
	assert.Equal(t, next.ID, consumers[0].EntryID)

	got, err := f.svc.Get(f.ctx, viewer, result.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductionStatusValidated, got.Status)
	assert.Equal(t, 0, f.pkg(t, log.ID).Pieces)
	assert.Equal(t, 10, f.pkg(t, produced[0].ID).Pieces)
}

func TestCreateCorrection(t *testing.T) {
	f := newFixture(t)
	draft := f.draft(t)
	_, err := f.svc.CreateCorrection(f.ctx, producer, draft.ID)
	assert.Equal(t, KindInvalidState, KindOf(err))

	result, _ := f.validated(t, "LOG-1")
	correction, err := f.svc.CreateCorrection(f.ctx, producer, result.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductionStatusDraft, correction.Status)
	require.NotNil(t, correction.CorrectionOf)
	assert.Equal(t, result.Entry.ID, *correction.CorrectionOf)
	assert.Equal(t, f.process.ID, correction.ProcessID)

	got, err := f.svc.Get(f.ctx, viewer, correction.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Inputs)
	assert.Empty(t, got.Outputs)
}

func TestSummaryOfDraft(t *testing.T) {
	f := newFixture(t)
	log := f.stock(t, "LOG-1", 10, "1")
	entry := f.draft(t)
	f.input(t, entry.ID, log.ID, 10, "0.25")
	f.output(t, entry.ID, "")

	sum, err := f.svc.Summary(f.ctx, viewer, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.InputCount)
	assert.Equal(t, 10, sum.OutputPieces)
	assert.True(t, d("40").Equal(sum.OutcomePercent))
	assert.True(t, sum.Unusual)
	assert.True(t, d("8").Equal(sum.PlannedWork))
}

func TestSlipRendersPDF(t *testing.T) {
	f := newFixture(t)
	result, _ := f.validated(t, "LOG-1")

	pdf, err := f.svc.Slip(f.ctx, viewer, result.Entry.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	_, err = f.svc.Slip(f.ctx, viewer, 999)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestStoreErrorPromotesSentinels(t *testing.T) {
	assert.Equal(t, KindNotFound, storeError(KindQueryFailed, "x", repositories.ErrNotFound).Kind)
	assert.Equal(t, KindConflict, storeError(KindUpdateFailed, "x", repositories.ErrDuplicate).Kind)
	assert.Equal(t, KindDeleteFailed, storeError(KindDeleteFailed, "x", errors.New("boom")).Kind)
}
