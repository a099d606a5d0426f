package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"timber-backend/internal/cache"
	"timber-backend/internal/metrics"
	"timber-backend/internal/models"
	"timber-backend/internal/repositories"
	"timber-backend/internal/timeutil"
)

// ProductionService runs the production entry lifecycle: drafting, package
// numbering, validation into inventory, deletion with reversal and corrections.
type ProductionService struct {
	Store    repositories.ProductionStore
	Events   EventPublisher
	Slips    *ReportService
	Archiver SlipArchiver
}

func NewProductionService(store repositories.ProductionStore) *ProductionService {
	return &ProductionService{Store: store}
}

// SetEventPublisher enables production board notifications
func (s *ProductionService) SetEventPublisher(p EventPublisher) {
	s.Events = p
}

// SetSlipArchive enables uploading the production slip after validation
func (s *ProductionService) SetSlipArchive(reports *ReportService, archiver SlipArchiver) {
	s.Slips = reports
	s.Archiver = archiver
}

func (s *ProductionService) publish(orgID int, eventType string, payload any) {
	if s.Events != nil {
		s.Events.Publish(orgID, eventType, payload)
	}
}

// loadDraft re-reads the entry under a row lock and checks it is still a draft
func loadDraft(ctx context.Context, tx repositories.ProductionStore, orgID, entryID int) (*models.ProductionEntry, error) {
	entry, err := tx.LockEntry(ctx, orgID, entryID)
	if err != nil {
		return nil, storeError(KindQueryFailed, fmt.Sprintf("production entry %d not found", entryID), err)
	}
	if !entry.IsDraft() {
		return nil, newError(KindInvalidState, "production entry %d is %s; only drafts can be changed", entryID, entry.Status)
	}
	return entry, nil
}

// CreateDraft opens a new draft entry for a process of the actor's organisation
func (s *ProductionService) CreateDraft(ctx context.Context, actor Actor, req *models.CreateProductionEntryRequest) (*models.ProductionEntry, error) {
	if err := actor.requireEditor(); err != nil {
		return nil, err
	}

	process, err := s.Store.GetProcess(ctx, actor.OrganisationID, req.ProcessID)
	if err != nil {
		return nil, storeError(KindQueryFailed, fmt.Sprintf("process %d not found", req.ProcessID), err)
	}
	if !process.IsActive {
		return nil, newError(KindValidation, "process %s is inactive", process.Code)
	}

	entry := &models.ProductionEntry{
		OrganisationID:  actor.OrganisationID,
		ProcessID:       process.ID,
		Status:          models.ProductionStatusDraft,
		CreatedByUserID: actor.UserID,
	}
	if err := applyEntryFields(entry, req.ProductionDate, req.PlannedWork, req.ActualWork, req.WorkUnit, req.Notes); err != nil {
		return nil, err
	}

	if err := s.Store.CreateEntry(ctx, entry); err != nil {
		return nil, storeError(KindUpdateFailed, "failed to create production entry", err)
	}
	entry.ProcessCode = process.Code
	entry.ProcessName = process.Name

	zap.L().Info("production draft created",
		zap.Int("entry_id", entry.ID),
		zap.Int("org_id", actor.OrganisationID),
		zap.String("process", process.Code),
		zap.Int("user_id", actor.UserID))
	return entry, nil
}

func applyEntryFields(entry *models.ProductionEntry, date string, planned, actual decimal.Decimal, unit, notes string) error {
	if planned.IsNegative() || actual.IsNegative() {
		return newError(KindValidation, "work figures cannot be negative")
	}
	if date = strings.TrimSpace(date); date != "" {
		d, err := timeutil.ParseDate(date)
		if err != nil {
			return newError(KindValidation, "production date %q must be YYYY-MM-DD", date)
		}
		entry.ProductionDate = d
	} else if entry.ProductionDate.IsZero() {
		entry.ProductionDate = timeutil.Today()
	}
	entry.PlannedWork = planned
	entry.ActualWork = actual
	entry.WorkUnit = strings.TrimSpace(unit)
	entry.Notes = strings.TrimSpace(notes)
	return nil
}

// UpdateDraft edits the header fields of a draft entry
func (s *ProductionService) UpdateDraft(ctx context.Context, actor Actor, entryID int, req *models.UpdateProductionEntryRequest) (*models.ProductionEntry, error) {
	if err := actor.requireEditor(); err != nil {
		return nil, err
	}

	var updated *models.ProductionEntry
	err := s.Store.WithTx(ctx, func(tx repositories.ProductionStore) error {
		entry, err := loadDraft(ctx, tx, actor.OrganisationID, entryID)
		if err != nil {
			return err
		}
		if err := applyEntryFields(entry, req.ProductionDate, req.PlannedWork, req.ActualWork, req.WorkUnit, req.Notes); err != nil {
			return err
		}
		if err := tx.UpdateEntry(ctx, entry); err != nil {
			return storeError(KindUpdateFailed, "failed to update production entry", err)
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AttachInput records an inventory package consumed by a draft. A quantity
// left at zero is derived from the package. Stock is only checked and
// decremented at validation.
func (s *ProductionService) AttachInput(ctx context.Context, actor Actor, entryID int, req *models.AttachInputRequest) (*models.ProductionInput, error) {
	if err := actor.requireEditor(); err != nil {
		return nil, err
	}
	if req.Pieces < 0 || req.Volume.IsNegative() {
		return nil, newError(KindValidation, "consumed pieces and volume cannot be negative")
	}
	if req.Pieces == 0 && !req.Volume.IsPositive() {
		return nil, newError(KindValidation, "an input must consume pieces or volume")
	}

	in := &models.ProductionInput{
		EntryID:   entryID,
		PackageID: req.PackageID,
		Pieces:    req.Pieces,
		Volume:    req.Volume.Round(volumePlaces),
	}
	err := s.Store.WithTx(ctx, func(tx repositories.ProductionStore) error {
		if _, err := loadDraft(ctx, tx, actor.OrganisationID, entryID); err != nil {
			return err
		}
		pkg, err := tx.LockPackage(ctx, actor.OrganisationID, req.PackageID)
		if err != nil {
			return storeError(KindQueryFailed, fmt.Sprintf("package %d not found", req.PackageID), err)
		}
		in.PackageNumber = pkg.PackageNumber
		in.Pieces, in.Volume = ProportionalInput(in.Pieces, in.Volume, pkg)
		if err := tx.CreateInput(ctx, in); err != nil {
			return storeError(KindUpdateFailed, "failed to add input", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (s *ProductionService) RemoveInput(ctx context.Context, actor Actor, entryID, inputID int) error {
	if err := actor.requireEditor(); err != nil {
		return err
	}
	return s.Store.WithTx(ctx, func(tx repositories.ProductionStore) error {
		if _, err := loadDraft(ctx, tx, actor.OrganisationID, entryID); err != nil {
			return err
		}
		if err := tx.DeleteInput(ctx, entryID, inputID); err != nil {
			return storeError(KindDeleteFailed, fmt.Sprintf("failed to remove input %d", inputID), err)
		}
		return nil
	})
}

// DefineOutput adds a produced package to a draft. The volume is computed
// from the dimensions when not given.
func (s *ProductionService) DefineOutput(ctx context.Context, actor Actor, entryID int, req *models.DefineOutputRequest) (*models.ProductionOutput, error) {
	if err := actor.requireEditor(); err != nil {
		return nil, err
	}
	if !req.Thickness.IsPositive() || !req.Width.IsPositive() || !req.Length.IsPositive() {
		return nil, newError(KindValidation, "thickness, width and length must be positive")
	}
	if req.Pieces <= 0 {
		return nil, newError(KindValidation, "pieces must be positive")
	}
	if req.Volume.IsNegative() {
		return nil, newError(KindValidation, "volume cannot be negative")
	}

	out := &models.ProductionOutput{
		EntryID:   entryID,
		Thickness: req.Thickness,
		Width:     req.Width,
		Length:    req.Length,
		Pieces:    req.Pieces,
		Volume:    req.Volume.Round(volumePlaces),
		Species:   strings.TrimSpace(req.Species),
		Grade:     strings.TrimSpace(req.Grade),
	}
	if out.Volume.IsZero() {
		out.Volume = ComputeVolume(req.Thickness, req.Width, req.Length, req.Pieces)
	}
	if number := strings.ToUpper(strings.TrimSpace(req.PackageNumber)); number != "" {
		// Any process code is accepted so outputs can reference catalog numbers
		if !IsPackageNumber(number) {
			return nil, newError(KindValidation, "package number %q must look like N-CODE-0001", number)
		}
		out.PackageNumber = &number
	}

	err := s.Store.WithTx(ctx, func(tx repositories.ProductionStore) error {
		if _, err := loadDraft(ctx, tx, actor.OrganisationID, entryID); err != nil {
			return err
		}
		if out.PackageNumber != nil {
			inUse, err := tx.PackageNumberInUse(ctx, actor.OrganisationID, *out.PackageNumber)
			if err != nil {
				return storeError(KindQueryFailed, "failed to check package number", err)
			}
			if inUse {
				return newError(KindConflict, "package number %s is already in use", *out.PackageNumber)
			}
		}
		if req.SortOrder != nil {
			out.SortOrder = *req.SortOrder
		} else {
			next, err := tx.NextOutputSortOrder(ctx, entryID)
			if err != nil {
				return storeError(KindQueryFailed, "failed to read output order", err)
			}
			out.SortOrder = next
		}
		if err := tx.CreateOutput(ctx, out); err != nil {
			return storeError(KindUpdateFailed, "failed to add output", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ProductionService) RemoveOutput(ctx context.Context, actor Actor, entryID, outputID int) error {
	if err := actor.requireEditor(); err != nil {
		return err
	}
	return s.Store.WithTx(ctx, func(tx repositories.ProductionStore) error {
		if _, err := loadDraft(ctx, tx, actor.OrganisationID, entryID); err != nil {
			return err
		}
		if err := tx.DeleteOutput(ctx, entryID, outputID); err != nil {
			return storeError(KindDeleteFailed, fmt.Sprintf("failed to remove output %d", outputID), err)
		}
		return nil
	})
}

// AssignPackageNumbers numbers the outputs of a draft that have no package
// number yet and returns the numbers handed out, in output order. Outputs
// that already carry a number keep it.
func (s *ProductionService) AssignPackageNumbers(ctx context.Context, actor Actor, entryID int) ([]string, error) {
	if err := actor.requireEditor(); err != nil {
		return nil, err
	}

	var (
		assigned []string
		code     string
	)
	err := s.Store.WithTx(ctx, func(tx repositories.ProductionStore) error {
		entry, err := loadDraft(ctx, tx, actor.OrganisationID, entryID)
		if err != nil {
			return err
		}
		code = entry.ProcessCode
		outputs, err := tx.ListOutputs(ctx, entryID)
		if err != nil {
			return storeError(KindQueryFailed, "failed to load outputs", err)
		}
		assigned, err = allocatePackageNumbers(ctx, tx, actor.OrganisationID, code, outputs)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(assigned) > 0 {
		metrics.PackageNumbersAssigned.WithLabelValues(code).Add(float64(len(assigned)))
		s.publish(actor.OrganisationID, EventNumbersAssigned, map[string]any{
			"entry_id": entryID,
			"numbers":  assigned,
		})
		zap.L().Info("package numbers assigned",
			zap.Int("entry_id", entryID),
			zap.Strings("numbers", assigned))
	}
	return assigned, nil
}

// Summary computes the confirmation figures of an entry in any status
func (s *ProductionService) Summary(ctx context.Context, actor Actor, entryID int) (*models.ProductionSummary, error) {
	entry, err := s.Get(ctx, actor, entryID)
	if err != nil {
		return nil, err
	}
	return BuildSummary(entry, entry.Inputs, entry.Outputs), nil
}

// Validate commits a draft: numbers missing outputs, consumes input stock,
// materialises outputs as inventory packages and marks the entry validated.
// All of it happens in one transaction; on failure nothing is applied.
func (s *ProductionService) Validate(ctx context.Context, actor Actor, entryID int) (*models.ValidationResult, error) {
	if err := actor.requireEditor(); err != nil {
		return nil, err
	}

	result := &models.ValidationResult{}
	err := s.Store.WithTx(ctx, func(tx repositories.ProductionStore) error {
		entry, err := loadDraft(ctx, tx, actor.OrganisationID, entryID)
		if err != nil {
			return err
		}
		inputs, err := tx.ListInputs(ctx, entryID)
		if err != nil {
			return storeError(KindQueryFailed, "failed to load inputs", err)
		}
		outputs, err := tx.ListOutputs(ctx, entryID)
		if err != nil {
			return storeError(KindQueryFailed, "failed to load outputs", err)
		}
		if len(inputs) == 0 || len(outputs) == 0 {
			return newError(KindValidation, "an entry needs at least one input and one output to be validated")
		}

		if result.AssignedNumbers, err = allocatePackageNumbers(ctx, tx, actor.OrganisationID, entry.ProcessCode, outputs); err != nil {
			return err
		}
		for i := range inputs {
			if err := consumeInput(ctx, tx, actor.OrganisationID, &inputs[i]); err != nil {
				return err
			}
		}
		for i := range outputs {
			if err := materialiseOutput(ctx, tx, entry, &outputs[i]); err != nil {
				return err
			}
		}
		if err := tx.MarkValidated(ctx, entryID, actor.UserID); err != nil {
			return storeError(KindUpdateFailed, "failed to mark entry validated", err)
		}

		if entry, err = tx.GetEntry(ctx, actor.OrganisationID, entryID); err != nil {
			return storeError(KindQueryFailed, "failed to reload entry", err)
		}
		entry.Inputs, entry.Outputs = inputs, outputs
		result.Entry = entry
		result.Summary = BuildSummary(entry, inputs, outputs)
		return nil
	})
	if err != nil {
		if se, ok := AsError(err); ok && se.Kind != KindInvalidState && se.Kind != KindNotFound {
			se.Message += "; nothing was applied"
		}
		zap.L().Warn("production validation rolled back", zap.Int("entry_id", entryID), zap.Error(err))
		return nil, err
	}

	cache.InvalidateInventoryCaches(ctx, actor.OrganisationID)
	metrics.ProductionEntriesValidated.Inc()
	if len(result.AssignedNumbers) > 0 {
		metrics.PackageNumbersAssigned.WithLabelValues(result.Entry.ProcessCode).Add(float64(len(result.AssignedNumbers)))
	}
	zap.L().Info("production entry validated",
		zap.Int("entry_id", entryID),
		zap.Int("org_id", actor.OrganisationID),
		zap.Int("user_id", actor.UserID),
		zap.String("outcome_percent", result.Summary.OutcomePercent.String()))

	s.archiveSlip(ctx, result.Entry, result.Summary)
	s.publish(actor.OrganisationID, EventEntryValidated, result)
	return result, nil
}

// consumeInput takes the input's pieces and volume out of its package
func consumeInput(ctx context.Context, tx repositories.ProductionStore, orgID int, in *models.ProductionInput) error {
	pkg, err := tx.LockPackage(ctx, orgID, in.PackageID)
	if err != nil {
		return storeError(KindQueryFailed, fmt.Sprintf("input package %d not found", in.PackageID), err)
	}
	if pkg.Status != models.PackageStatusAvailable {
		return newError(KindValidation, "package %s is %s", pkg.PackageNumber, pkg.Status)
	}
	if in.Pieces > pkg.Pieces {
		return newError(KindValidation, "package %s has %d pieces, %d requested", pkg.PackageNumber, pkg.Pieces, in.Pieces)
	}
	if in.Volume.GreaterThan(pkg.Volume) {
		return newError(KindValidation, "package %s has %s m3, %s requested", pkg.PackageNumber, pkg.Volume, in.Volume)
	}

	pkg.Pieces -= in.Pieces
	pkg.Volume = pkg.Volume.Sub(in.Volume)
	if pkg.Pieces == 0 || !pkg.Volume.IsPositive() {
		pkg.Status = models.PackageStatusConsumed
	}
	if err := tx.UpdatePackageStock(ctx, pkg); err != nil {
		return storeError(KindUpdateFailed, fmt.Sprintf("failed to update stock of %s", pkg.PackageNumber), err)
	}
	in.PackageNumber = pkg.PackageNumber
	return nil
}

// materialiseOutput inserts the output as an available inventory package
func materialiseOutput(ctx context.Context, tx repositories.ProductionStore, entry *models.ProductionEntry, out *models.ProductionOutput) error {
	entryID := entry.ID
	pkg := &models.Package{
		OrganisationID:    entry.OrganisationID,
		PackageNumber:     *out.PackageNumber,
		Species:           out.Species,
		Grade:             out.Grade,
		Thickness:         out.Thickness,
		Width:             out.Width,
		Length:            out.Length,
		Pieces:            out.Pieces,
		Volume:            out.Volume,
		Status:            models.PackageStatusAvailable,
		ProducedByEntryID: &entryID,
	}
	if err := tx.CreatePackage(ctx, pkg); err != nil {
		return storeError(KindUpdateFailed, fmt.Sprintf("failed to add package %s to inventory", pkg.PackageNumber), err)
	}
	if err := tx.LinkOutputPackage(ctx, out.ID, pkg.ID); err != nil {
		return storeError(KindUpdateFailed, fmt.Sprintf("failed to link output %d to package %s", out.ID, pkg.PackageNumber), err)
	}
	out.PackageID = &pkg.ID
	return nil
}

// Delete removes an entry. A validated entry is reversed first: its input
// packages get their stock back and its output packages leave inventory.
// Reversal is refused while any output package is consumed by another entry.
func (s *ProductionService) Delete(ctx context.Context, actor Actor, entryID int) error {
	if err := actor.requireEditor(); err != nil {
		return err
	}

	var status string
	err := s.Store.WithTx(ctx, func(tx repositories.ProductionStore) error {
		entry, err := tx.LockEntry(ctx, actor.OrganisationID, entryID)
		if err != nil {
			return storeError(KindQueryFailed, fmt.Sprintf("production entry %d not found", entryID), err)
		}
		status = entry.Status
		if !entry.IsDraft() {
			if err := actor.requireAdmin(); err != nil {
				return err
			}
			if err := reverseValidation(ctx, tx, entry); err != nil {
				return err
			}
		}
		if err := tx.DeleteEntry(ctx, entryID); err != nil {
			return storeError(KindDeleteFailed, "failed to delete production entry", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if status == models.ProductionStatusValidated {
		cache.InvalidateInventoryCaches(ctx, actor.OrganisationID)
	}
	metrics.ProductionEntriesDeleted.WithLabelValues(status).Inc()
	zap.L().Info("production entry deleted",
		zap.Int("entry_id", entryID),
		zap.String("status", status),
		zap.Int("user_id", actor.UserID))
	s.publish(actor.OrganisationID, EventEntryDeleted, map[string]any{
		"entry_id": entryID,
		"status":   status,
	})
	return nil
}

// reverseValidation undoes the inventory effects of a validated entry
func reverseValidation(ctx context.Context, tx repositories.ProductionStore, entry *models.ProductionEntry) error {
	produced, err := tx.ListPackagesProducedBy(ctx, entry.ID)
	if err != nil {
		return storeError(KindQueryFailed, "failed to load produced packages", err)
	}
	if len(produced) > 0 {
		ids := make([]int, len(produced))
		for i, p := range produced {
			ids[i] = p.ID
		}
		consumers, err := tx.FindConsumers(ctx, ids, entry.ID)
		if err != nil {
			return storeError(KindQueryFailed, "failed to check package usage", err)
		}
		if len(consumers) > 0 {
			used := make([]string, len(consumers))
			for i, c := range consumers {
				used[i] = fmt.Sprintf("%s (entry %d)", c.PackageNumber, c.EntryID)
			}
			return &Error{
				Kind:    KindForbidden,
				Message: fmt.Sprintf("cannot delete entry %d: its packages are used by other entries: %s", entry.ID, strings.Join(used, ", ")),
				Details: consumers,
			}
		}
	}

	inputs, err := tx.ListInputs(ctx, entry.ID)
	if err != nil {
		return storeError(KindQueryFailed, "failed to load inputs", err)
	}
	for _, in := range inputs {
		pkg, err := tx.LockPackage(ctx, entry.OrganisationID, in.PackageID)
		if err != nil {
			return storeError(KindQueryFailed, fmt.Sprintf("input package %d not found", in.PackageID), err)
		}
		pkg.Pieces += in.Pieces
		pkg.Volume = pkg.Volume.Add(in.Volume)
		pkg.Status = models.PackageStatusAvailable
		if err := tx.UpdatePackageStock(ctx, pkg); err != nil {
			return storeError(KindUpdateFailed, fmt.Sprintf("failed to restore stock of %s", pkg.PackageNumber), err)
		}
	}

	if err := tx.DeletePackagesProducedBy(ctx, entry.ID); err != nil {
		return storeError(KindDeleteFailed, "failed to remove produced packages", err)
	}
	return nil
}

// CreateCorrection opens a draft that corrects a validated entry
func (s *ProductionService) CreateCorrection(ctx context.Context, actor Actor, originalID int) (*models.ProductionEntry, error) {
	if err := actor.requireEditor(); err != nil {
		return nil, err
	}

	original, err := s.Store.GetEntry(ctx, actor.OrganisationID, originalID)
	if err != nil {
		return nil, storeError(KindQueryFailed, fmt.Sprintf("production entry %d not found", originalID), err)
	}
	if original.IsDraft() {
		return nil, newError(KindInvalidState, "production entry %d is still a draft; only validated entries can be corrected", originalID)
	}

	correction := &models.ProductionEntry{
		OrganisationID:  actor.OrganisationID,
		ProcessID:       original.ProcessID,
		ProcessCode:     original.ProcessCode,
		ProcessName:     original.ProcessName,
		ProductionDate:  timeutil.Today(),
		Status:          models.ProductionStatusDraft,
		CorrectionOf:    &original.ID,
		PlannedWork:     decimal.Zero,
		ActualWork:      decimal.Zero,
		WorkUnit:        original.WorkUnit,
		Notes:           fmt.Sprintf("Correction of entry %d", original.ID),
		CreatedByUserID: actor.UserID,
	}
	if err := s.Store.CreateEntry(ctx, correction); err != nil {
		return nil, storeError(KindUpdateFailed, "failed to create correction entry", err)
	}

	zap.L().Info("production correction created",
		zap.Int("entry_id", correction.ID),
		zap.Int("correction_of", original.ID))
	return correction, nil
}

// Get returns an entry with its inputs and outputs
func (s *ProductionService) Get(ctx context.Context, actor Actor, entryID int) (*models.ProductionEntry, error) {
	if err := actor.requireSession(); err != nil {
		return nil, err
	}
	entry, err := s.Store.GetEntry(ctx, actor.OrganisationID, entryID)
	if err != nil {
		return nil, storeError(KindQueryFailed, fmt.Sprintf("production entry %d not found", entryID), err)
	}
	if entry.Inputs, err = s.Store.ListInputs(ctx, entryID); err != nil {
		return nil, storeError(KindQueryFailed, "failed to load inputs", err)
	}
	if entry.Outputs, err = s.Store.ListOutputs(ctx, entryID); err != nil {
		return nil, storeError(KindQueryFailed, "failed to load outputs", err)
	}
	return entry, nil
}

func (s *ProductionService) List(ctx context.Context, actor Actor, filter models.ProductionFilter) ([]*models.ProductionEntry, error) {
	if err := actor.requireSession(); err != nil {
		return nil, err
	}
	switch filter.Status {
	case "", models.ProductionStatusDraft, models.ProductionStatusValidated:
	default:
		return nil, newError(KindValidation, "unknown status %q", filter.Status)
	}
	entries, err := s.Store.ListEntries(ctx, actor.OrganisationID, filter)
	if err != nil {
		return nil, storeError(KindQueryFailed, "failed to list production entries", err)
	}
	if entries == nil {
		entries = []*models.ProductionEntry{}
	}
	return entries, nil
}

// archiveSlip uploads the rendered slip; failures are logged only
func (s *ProductionService) archiveSlip(ctx context.Context, entry *models.ProductionEntry, summary *models.ProductionSummary) {
	if s.Slips == nil || s.Archiver == nil {
		return
	}
	pdf, err := s.Slips.RenderProductionSlip(entry, summary)
	if err != nil {
		zap.L().Warn("render production slip", zap.Int("entry_id", entry.ID), zap.Error(err))
		return
	}
	if err := s.Archiver.ArchiveSlip(ctx, entry.OrganisationID, entry.ID, pdf); err != nil {
		zap.L().Warn("archive production slip", zap.Int("entry_id", entry.ID), zap.Error(err))
	}
}

// Slip renders the production slip of an entry in any status
func (s *ProductionService) Slip(ctx context.Context, actor Actor, entryID int) ([]byte, error) {
	entry, err := s.Get(ctx, actor, entryID)
	if err != nil {
		return nil, err
	}
	reports := s.Slips
	if reports == nil {
		reports = NewReportService("")
	}
	pdf, err := reports.RenderProductionSlip(entry, BuildSummary(entry, entry.Inputs, entry.Outputs))
	if err != nil {
		return nil, &Error{Kind: KindQueryFailed, Message: "failed to render production slip", Err: err}
	}
	return pdf, nil
}
