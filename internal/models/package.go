package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package statuses
const (
	PackageStatusAvailable = "available"
	PackageStatusConsumed  = "consumed"
)

// Package is a numbered unit of timber inventory
type Package struct {
	ID                int             `json:"id"`
	OrganisationID    int             `json:"organisation_id"`
	PackageNumber     string          `json:"package_number"`
	Species           string          `json:"species"`
	Grade             string          `json:"grade"`
	Thickness         decimal.Decimal `json:"thickness"` // mm
	Width             decimal.Decimal `json:"width"`     // mm
	Length            decimal.Decimal `json:"length"`    // mm
	Pieces            int             `json:"pieces"`
	Volume            decimal.Decimal `json:"volume"` // m3
	Status            string          `json:"status"` // 'available' or 'consumed'
	ProducedByEntryID *int            `json:"produced_by_entry_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// PackageConsumer links a package to an entry that uses it as an input
type PackageConsumer struct {
	PackageID     int    `json:"package_id"`
	PackageNumber string `json:"package_number"`
	EntryID       int    `json:"entry_id"`
}

type CreatePackageRequest struct {
	PackageNumber string          `json:"package_number"`
	Species       string          `json:"species"`
	Grade         string          `json:"grade"`
	Thickness     decimal.Decimal `json:"thickness"`
	Width         decimal.Decimal `json:"width"`
	Length        decimal.Decimal `json:"length"`
	Pieces        int             `json:"pieces"`
	Volume        decimal.Decimal `json:"volume"`
}

// PackageFilter narrows inventory listings
type PackageFilter struct {
	Status string
	Prefix string
}
