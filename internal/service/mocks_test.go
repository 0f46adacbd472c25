package service_test

import (
	"context"
	"errors"
	"io"

	"oms-customers/internal/database"
	"oms-customers/internal/models"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func strPtr(s string) *string { return &s }

// mockStore answers uniqueness checks from an in-memory customer table and
// records every write it is asked to make.
type mockStore struct {
	customers    map[uint]*models.Customer
	activeCities map[uint]bool

	getErr     error
	checkErr   error
	updateErr  error
	updateRows *int64
	auditFails bool

	txCalls int
	updates []models.Customer
	audits  []models.AuditLog
}

func newMockStore(customers ...*models.Customer) *mockStore {
	m := &mockStore{
		customers:    map[uint]*models.Customer{},
		activeCities: map[uint]bool{1: true, 2: true, 3: false},
	}
	for _, c := range customers {
		m.customers[c.ID] = c
	}
	return m
}

func (m *mockStore) GetCustomer(_ context.Context, id uint) (*models.Customer, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.customers[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockStore) existsOther(excludeID uint, match func(c *models.Customer) bool) (bool, error) {
	if m.checkErr != nil {
		return false, m.checkErr
	}
	for id, c := range m.customers {
		if id != excludeID && match(c) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) EmailInUse(_ context.Context, email string, excludeID uint) (bool, error) {
	return m.existsOther(excludeID, func(c *models.Customer) bool { return c.Email != nil && *c.Email == email })
}

func (m *mockStore) PhoneInUse(_ context.Context, phone string, excludeID uint) (bool, error) {
	return m.existsOther(excludeID, func(c *models.Customer) bool { return c.Phone == phone })
}

func (m *mockStore) Phone2InUse(_ context.Context, phone string, excludeID uint) (bool, error) {
	return m.existsOther(excludeID, func(c *models.Customer) bool { return c.Phone2 != nil && *c.Phone2 == phone })
}

func (m *mockStore) AnyPhoneInUse(_ context.Context, phone string, excludeID uint) (bool, error) {
	return m.existsOther(excludeID, func(c *models.Customer) bool {
		return c.Phone == phone || (c.Phone2 != nil && *c.Phone2 == phone)
	})
}

func (m *mockStore) ActiveCityExists(_ context.Context, id uint) (bool, error) {
	if m.checkErr != nil {
		return false, m.checkErr
	}
	return m.activeCities[id], nil
}

func (m *mockStore) InTx(_ context.Context, fn func(tx database.Tx) error) error {
	m.txCalls++

	tx := &mockTx{store: m}
	if err := fn(tx); err != nil {
		return err
	}

	// commit
	m.updates = append(m.updates, tx.updates...)
	m.audits = append(m.audits, tx.audits...)
	return nil
}

type mockTx struct {
	store   *mockStore
	updates []models.Customer
	audits  []models.AuditLog
}

func (t *mockTx) UpdateCustomer(_ context.Context, c *models.Customer) (int64, error) {
	if t.store.updateErr != nil {
		return 0, t.store.updateErr
	}
	t.updates = append(t.updates, *c)
	if t.store.updateRows != nil {
		return *t.store.updateRows, nil
	}
	return 1, nil
}

func (t *mockTx) RecordAudit(_ context.Context, entry *models.AuditLog) bool {
	if t.store.auditFails {
		return false
	}
	t.audits = append(t.audits, *entry)
	return true
}

var errBoom = errors.New("boom")
