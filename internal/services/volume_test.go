package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"timber-backend/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeVolume(t *testing.T) {
	// 25mm x 100mm x 4m, 10 boards
	assert.True(t, d("0.1").Equal(ComputeVolume(d("25"), d("100"), d("4000"), 10)))
	assert.True(t, d("0.0003").Equal(ComputeVolume(d("22"), d("47"), d("310"), 1)))
}

func TestProportionalInput(t *testing.T) {
	pkg := &models.Package{Pieces: 12, Volume: d("0.9")}
	tests := []struct {
		pieces     int
		volume     string
		wantPieces int
		wantVolume string
	}{
		{4, "0", 4, "0.3"},
		{0, "0.45", 6, "0.45"},
		{5, "0.2", 5, "0.2"},
		{7, "0", 7, "0.525"},
	}
	for _, tt := range tests {
		pieces, volume := ProportionalInput(tt.pieces, d(tt.volume), pkg)
		assert.Equal(t, tt.wantPieces, pieces, "%d/%s", tt.pieces, tt.volume)
		assert.True(t, d(tt.wantVolume).Equal(volume), "%d/%s gave %s", tt.pieces, tt.volume, volume)
	}

	empty := &models.Package{}
	pieces, volume := ProportionalInput(0, d("0.1"), empty)
	assert.Equal(t, 0, pieces)
	assert.True(t, d("0.1").Equal(volume))
}

func TestOutcomeBands(t *testing.T) {
	tests := []struct {
		input, output string
		percent       string
		unusual       bool
	}{
		{"100", "40", "40", true},
		{"100", "50", "50", false},
		{"100", "100", "100", false},
		{"100", "110", "110", true},
		{"3", "2", "66.67", false},
		{"0", "5", "0", true},
	}
	for _, tt := range tests {
		percent, unusual := Outcome(d(tt.input), d(tt.output))
		assert.True(t, d(tt.percent).Equal(percent), "%s/%s gave %s", tt.output, tt.input, percent)
		assert.Equal(t, tt.unusual, unusual, "%s/%s", tt.output, tt.input)
	}
}

func TestBuildSummaryTotals(t *testing.T) {
	entry := &models.ProductionEntry{ID: 7, PlannedWork: d("8"), ActualWork: d("7.5"), WorkUnit: "hours"}
	inputs := []models.ProductionInput{{Pieces: 10, Volume: d("1.2")}, {Pieces: 5, Volume: d("0.8")}}
	outputs := []models.ProductionOutput{{Pieces: 30, Volume: d("1.5")}}

	sum := BuildSummary(entry, inputs, outputs)
	assert.Equal(t, 7, sum.EntryID)
	assert.Equal(t, 2, sum.InputCount)
	assert.Equal(t, 1, sum.OutputCount)
	assert.Equal(t, 15, sum.InputPieces)
	assert.Equal(t, 30, sum.OutputPieces)
	assert.True(t, d("2").Equal(sum.InputVolume))
	assert.True(t, d("75").Equal(sum.OutcomePercent))
	assert.False(t, sum.Unusual)
	assert.Equal(t, "hours", sum.WorkUnit)
}
