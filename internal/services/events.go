package services

import "context"

// Production board event types
const (
	EventNumbersAssigned = "numbers.assigned"
	EventEntryValidated  = "entry.validated"
	EventEntryDeleted    = "entry.deleted"
)

// EventPublisher receives production lifecycle notifications for an organisation
type EventPublisher interface {
	Publish(orgID int, eventType string, payload any)
}

// SlipArchiver stores rendered production slips
type SlipArchiver interface {
	ArchiveSlip(ctx context.Context, orgID, entryID int, pdf []byte) error
}
