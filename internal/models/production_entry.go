package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Production entry statuses
const (
	ProductionStatusDraft     = "draft"
	ProductionStatusValidated = "validated"
)

type ProductionEntry struct {
	ID                int                `json:"id"`
	OrganisationID    int                `json:"organisation_id"`
	ProcessID         int                `json:"process_id"`
	ProcessCode       string             `json:"process_code"` // From joined processes table
	ProcessName       string             `json:"process_name"`
	ProductionDate    time.Time          `json:"production_date"`
	Status            string             `json:"status"`        // 'draft' or 'validated'
	CorrectionOf      *int               `json:"correction_of"` // Validated entry this draft corrects
	PlannedWork       decimal.Decimal    `json:"planned_work"`
	ActualWork        decimal.Decimal    `json:"actual_work"`
	WorkUnit          string             `json:"work_unit"` // hours, shifts, m3...
	Notes             string             `json:"notes"`
	CreatedByUserID   int                `json:"created_by_user_id"`
	ValidatedByUserID *int               `json:"validated_by_user_id,omitempty"`
	ValidatedAt       *time.Time         `json:"validated_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Inputs            []ProductionInput  `json:"inputs,omitempty"`
	Outputs           []ProductionOutput `json:"outputs,omitempty"`
}

func (e *ProductionEntry) IsDraft() bool {
	return e.Status == ProductionStatusDraft
}

// ProductionInput is an inventory package consumed by a production entry
type ProductionInput struct {
	ID            int             `json:"id"`
	EntryID       int             `json:"entry_id"`
	PackageID     int             `json:"package_id"`
	PackageNumber string          `json:"package_number"` // From joined packages table
	Pieces        int             `json:"pieces"`
	Volume        decimal.Decimal `json:"volume"` // m3
	CreatedAt     time.Time       `json:"created_at"`
}

// ProductionOutput is a package produced by a production entry.
// PackageNumber stays nil until the allocator assigns one; PackageID is set once
// the output has been materialised into inventory.
type ProductionOutput struct {
	ID            int             `json:"id"`
	EntryID       int             `json:"entry_id"`
	PackageNumber *string         `json:"package_number"`
	Thickness     decimal.Decimal `json:"thickness"` // mm
	Width         decimal.Decimal `json:"width"`     // mm
	Length        decimal.Decimal `json:"length"`    // mm
	Pieces        int             `json:"pieces"`
	Volume        decimal.Decimal `json:"volume"` // m3
	Species       string          `json:"species"`
	Grade         string          `json:"grade"`
	SortOrder     int             `json:"sort_order"`
	PackageID     *int            `json:"package_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// HasPackageNumber reports whether the output already carries a number
func (o *ProductionOutput) HasPackageNumber() bool {
	return o.PackageNumber != nil && *o.PackageNumber != ""
}

type CreateProductionEntryRequest struct {
	ProcessID      int             `json:"process_id"`
	ProductionDate string          `json:"production_date"` // YYYY-MM-DD, defaults to today
	PlannedWork    decimal.Decimal `json:"planned_work"`
	ActualWork     decimal.Decimal `json:"actual_work"`
	WorkUnit       string          `json:"work_unit"`
	Notes          string          `json:"notes"`
}

type UpdateProductionEntryRequest struct {
	ProductionDate string          `json:"production_date"`
	PlannedWork    decimal.Decimal `json:"planned_work"`
	ActualWork     decimal.Decimal `json:"actual_work"`
	WorkUnit       string          `json:"work_unit"`
	Notes          string          `json:"notes"`
}

type AttachInputRequest struct {
	PackageID int             `json:"package_id"`
	Pieces    int             `json:"pieces"`
	Volume    decimal.Decimal `json:"volume"`
}

type DefineOutputRequest struct {
	// PackageNumber optionally presets the number. It must not be used yet by
	// inventory or another output of the organisation.
	PackageNumber string          `json:"package_number,omitempty"`
	Thickness     decimal.Decimal `json:"thickness"`
	Width         decimal.Decimal `json:"width"`
	Length        decimal.Decimal `json:"length"`
	Pieces        int             `json:"pieces"`
	Volume        decimal.Decimal `json:"volume"` // Computed from dimensions when zero
	Species       string          `json:"species"`
	Grade         string          `json:"grade"`
	SortOrder     *int            `json:"sort_order,omitempty"`
}

// ProductionFilter narrows entry listings
type ProductionFilter struct {
	Status    string
	ProcessID int
}

// ProductionSummary holds the figures shown in the validation confirmation dialog
type ProductionSummary struct {
	EntryID        int             `json:"entry_id"`
	InputCount     int             `json:"input_count"`
	OutputCount    int             `json:"output_count"`
	InputPieces    int             `json:"input_pieces"`
	OutputPieces   int             `json:"output_pieces"`
	InputVolume    decimal.Decimal `json:"input_volume"`
	OutputVolume   decimal.Decimal `json:"output_volume"`
	PlannedWork    decimal.Decimal `json:"planned_work"`
	ActualWork     decimal.Decimal `json:"actual_work"`
	WorkUnit       string          `json:"work_unit"`
	OutcomePercent decimal.Decimal `json:"outcome_percent"`
	Unusual        bool            `json:"unusual"` // outcome below 50% or above 100%
}

// ValidationResult is returned after a successful commit
type ValidationResult struct {
	Entry           *ProductionEntry   `json:"entry"`
	Summary         *ProductionSummary `json:"summary"`
	AssignedNumbers []string           `json:"assigned_numbers"`
}
