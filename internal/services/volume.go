package services

import (
	"github.com/shopspring/decimal"

	"timber-backend/internal/models"
)

var (
	cubicMillimetresPerCubicMetre = decimal.NewFromInt(1_000_000_000)
	hundred                       = decimal.NewFromInt(100)
	outcomeLowerBound             = decimal.NewFromInt(50)
	outcomeUpperBound             = decimal.NewFromInt(100)
)

// volumePlaces is the precision volumes are stored with (m3)
const volumePlaces = 4

// ComputeVolume returns the volume in m3 of pieces boards measured in millimetres
func ComputeVolume(thickness, width, length decimal.Decimal, pieces int) decimal.Decimal {
	return thickness.Mul(width).Mul(length).Mul(decimal.NewFromInt(int64(pieces))).
		Div(cubicMillimetresPerCubicMetre).Round(volumePlaces)
}

// ProportionalInput fills the quantity an input left at zero from the
// package's pieces-to-volume ratio. Packages without stock leave it at zero.
func ProportionalInput(pieces int, volume decimal.Decimal, pkg *models.Package) (int, decimal.Decimal) {
	switch {
	case volume.IsZero() && pieces > 0 && pkg.Pieces > 0:
		volume = pkg.Volume.Mul(decimal.NewFromInt(int64(pieces))).
			Div(decimal.NewFromInt(int64(pkg.Pieces))).Round(volumePlaces)
	case pieces == 0 && volume.IsPositive() && pkg.Volume.IsPositive():
		pieces = int(volume.Mul(decimal.NewFromInt(int64(pkg.Pieces))).Div(pkg.Volume).Round(0).IntPart())
	}
	return pieces, volume
}

// Outcome returns output/input*100 rounded to two places and whether the ratio
// is outside the expected 50-100% band. A zero input volume is always unusual.
func Outcome(inputVolume, outputVolume decimal.Decimal) (decimal.Decimal, bool) {
	if !inputVolume.IsPositive() {
		return decimal.Zero, true
	}
	percent := outputVolume.Div(inputVolume).Mul(hundred).Round(2)
	return percent, percent.LessThan(outcomeLowerBound) || percent.GreaterThan(outcomeUpperBound)
}

// BuildSummary aggregates the confirmation figures of an entry
func BuildSummary(entry *models.ProductionEntry, inputs []models.ProductionInput, outputs []models.ProductionOutput) *models.ProductionSummary {
	sum := &models.ProductionSummary{
		EntryID:      entry.ID,
		InputCount:   len(inputs),
		OutputCount:  len(outputs),
		InputVolume:  decimal.Zero,
		OutputVolume: decimal.Zero,
		PlannedWork:  entry.PlannedWork,
		ActualWork:   entry.ActualWork,
		WorkUnit:     entry.WorkUnit,
	}
	for _, in := range inputs {
		sum.InputPieces += in.Pieces
		sum.InputVolume = sum.InputVolume.Add(in.Volume)
	}
	for _, out := range outputs {
		sum.OutputPieces += out.Pieces
		sum.OutputVolume = sum.OutputVolume.Add(out.Volume)
	}
	sum.OutcomePercent, sum.Unusual = Outcome(sum.InputVolume, sum.OutputVolume)
	return sum
}
