package database

import "construction-backoffice/internal/models"

// Store is the persistence collaborator consumed by the inventory and ledger
// services. Identifiers are opaque strings assigned by the store on create;
// nothing above this boundary ever builds or parses one.
type Store interface {
	// ListFlats returns every flat for the project, payment history and
	// extra-work lists included where the backend supports them, in stable
	// insertion order.
	ListFlats(projectID string) ([]models.Flat, error)
	GetFlat(id string) (*models.Flat, error)
	CreateFlat(f *models.Flat) error

	// UpdateFlat persists the flat's scalar fields and creates any ledger
	// entries appended since the last write. Existing entries are never
	// modified or removed through this path.
	UpdateFlat(f *models.Flat) error

	DeleteFlat(id string) error

	// DeleteFlats removes the given flats in one transaction, writing a
	// DeleteLog row per flat. All-or-nothing from the caller's perspective.
	DeleteFlats(ids []string, scope, reason string) (int, error)

	AppendChangeLog(c *models.ChangeLog) error
	RecentChangeLogs(limit int) ([]models.ChangeLog, error)
	RecentDeleteLogs(limit int) ([]models.DeleteLog, error)
}
