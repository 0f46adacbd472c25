// Package service holds the customer update pipeline: validation, change
// detection and the transactional write with its audit entry.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"oms-customers/internal/database"
	"oms-customers/internal/metrics"
	"oms-customers/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCustomerID = errors.New("invalid customer id")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrUpdateFailed      = errors.New("customer update failed")
)

// CustomerStore is the data access the update pipeline depends on.
type CustomerStore interface {
	GetCustomer(ctx context.Context, id uint) (*models.Customer, error)
	EmailInUse(ctx context.Context, email string, excludeID uint) (bool, error)
	PhoneInUse(ctx context.Context, phone string, excludeID uint) (bool, error)
	Phone2InUse(ctx context.Context, phone string, excludeID uint) (bool, error)
	AnyPhoneInUse(ctx context.Context, phone string, excludeID uint) (bool, error)
	ActiveCityExists(ctx context.Context, id uint) (bool, error)
	InTx(ctx context.Context, fn func(tx database.Tx) error) error
}

// UpdateRequest carries everything one update needs: the acting user and the
// already-normalized form input.
type UpdateRequest struct {
	ActorID uint
	Input   models.CustomerInput
}

type Outcome int

const (
	// Updated means the row was written (and an audit entry attempted).
	Updated Outcome = iota
	// Unchanged means the submission matched the stored record; nothing was written.
	Unchanged
	// Rejected means validation failed; Errors holds the per-field messages.
	Rejected
)

type UpdateResult struct {
	Outcome  Outcome
	Customer *models.Customer
	Errors   map[string]string
	Changes  []string
}

type CustomerService struct {
	store    CustomerStore
	validate *validator.Validate
	log      *logrus.Logger
}

func NewCustomerService(store CustomerStore, log *logrus.Logger) *CustomerService {
	return &CustomerService{
		store:    store,
		validate: newValidator(),
		log:      log,
	}
}

// Update validates req against the stored customer and writes it when
// something changed. There is no version check: two editors saving the same
// customer concurrently will race and the last write wins.
func (s *CustomerService) Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	in := req.Input
	if in.ID <= 0 {
		return nil, ErrInvalidCustomerID
	}
	id := uint(in.ID)

	existing, err := s.store.GetCustomer(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading customer %d: %w", id, err)
	}

	errs, err := s.checkShape(&in)
	if err != nil {
		return nil, fmt.Errorf("validating customer %d: %w", id, err)
	}
	if err := s.checkStore(ctx, existing, &in, errs); err != nil {
		return nil, fmt.Errorf("validating customer %d: %w", id, err)
	}

	proposed := applyInput(existing, &in)

	if len(errs) > 0 {
		metrics.CustomerUpdates.WithLabelValues(metrics.OutcomeRejected).Inc()
		return &UpdateResult{Outcome: Rejected, Customer: proposed, Errors: errs}, nil
	}

	changes := diffCustomer(existing, proposed)
	if len(changes) == 0 {
		metrics.CustomerUpdates.WithLabelValues(metrics.OutcomeUnchanged).Inc()
		return &UpdateResult{Outcome: Unchanged, Customer: proposed}, nil
	}

	var rows int64
	err = s.store.InTx(ctx, func(tx database.Tx) error {
		var err error
		rows, err = tx.UpdateCustomer(ctx, proposed)
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}

		entry := &models.AuditLog{
			UserID:   req.ActorID,
			Entity:   models.AuditEntityCustomer,
			EntityID: id,
			Action:   models.ActionCustomerUpdate,
			Details:  "Customer updated - " + strings.Join(changes, ", "),
		}
		if !tx.RecordAudit(ctx, entry) {
			s.log.WithField("customer_id", id).Warn("customer updated without audit entry")
		}
		return nil
	})
	if err != nil {
		metrics.CustomerUpdates.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("%w: customer %d: %w", ErrUpdateFailed, id, err)
	}

	if rows == 0 {
		metrics.CustomerUpdates.WithLabelValues(metrics.OutcomeUnchanged).Inc()
		return &UpdateResult{Outcome: Unchanged, Customer: proposed}, nil
	}

	metrics.CustomerUpdates.WithLabelValues(metrics.OutcomeUpdated).Inc()
	s.log.WithFields(logrus.Fields{
		"customer_id": id,
		"user_id":     req.ActorID,
		"changes":     len(changes),
	}).Info("customer updated")

	return &UpdateResult{Outcome: Updated, Customer: proposed, Changes: changes}, nil
}

// applyInput returns a copy of existing with the submitted fields applied.
func applyInput(existing *models.Customer, in *models.CustomerInput) *models.Customer {
	c := *existing
	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.Phone2 = in.Phone2
	c.Status = in.Status
	c.AddressLine1 = in.AddressLine1
	c.AddressLine2 = in.AddressLine2
	if in.CityID > 0 {
		c.CityID = uint(in.CityID)
	}
	return &c
}
