package handlers

import (
	"context"

	"oms-customers/internal/models"
	"oms-customers/internal/service"
)

// CitySearcher backs the city autocomplete.
type CitySearcher interface {
	SearchActiveCities(ctx context.Context, term string, limit int) ([]models.CityOption, error)
}

// CustomerUpdater runs the customer update pipeline.
type CustomerUpdater interface {
	Update(ctx context.Context, req service.UpdateRequest) (*service.UpdateResult, error)
}

// CustomerReader loads a single customer for display.
type CustomerReader interface {
	GetCustomerWithCity(ctx context.Context, id uint) (*models.Customer, error)
}

// UserFinder resolves login credentials.
type UserFinder interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuditReader lists audit log entries.
type AuditReader interface {
	ListAudit(ctx context.Context, customerID uint, limit int) ([]models.AuditLog, error)
}
