package services

import "timber-backend/internal/models"

// Actor is the authorization context every operation runs under. It is built
// once per request by the auth middleware and passed explicitly.
type Actor struct {
	UserID             int
	Role               string
	OrganisationID     int // Effective organisation (after view-as)
	HomeOrganisationID int // Organisation the user belongs to
}

// Impersonating reports whether an admin is viewing another organisation
func (a Actor) Impersonating() bool {
	return a.OrganisationID != a.HomeOrganisationID
}

func (a Actor) requireSession() error {
	if a.UserID == 0 || a.OrganisationID == 0 {
		return newError(KindUnauthenticated, "no active session")
	}
	return nil
}

// requireEditor allows admins and producers
func (a Actor) requireEditor() error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if a.Role != models.RoleAdmin && a.Role != models.RoleProducer {
		return newError(KindForbidden, "role %q cannot modify production data", a.Role)
	}
	return nil
}

func (a Actor) requireAdmin() error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if a.Role != models.RoleAdmin {
		return newError(KindForbidden, "admin role required")
	}
	return nil
}
