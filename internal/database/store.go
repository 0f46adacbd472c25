package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"oms-customers/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable marks failures to reach the database at all.
	ErrUnavailable = errors.New("database unavailable")
)

// Tx is the write side of a customer update, scoped to one transaction.
type Tx interface {
	UpdateCustomer(ctx context.Context, c *models.Customer) (int64, error)
	RecordAudit(ctx context.Context, entry *models.AuditLog) bool
}

// Store is the gorm-backed data access for the customers module.
type Store struct {
	db    *gorm.DB
	audit *AuditLogger
}

func NewStore(db *gorm.DB, audit *AuditLogger) *Store {
	return &Store{db: db, audit: audit}
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// --- cities ---

// SearchActiveCities returns active cities whose name contains term, ordered by name.
func (s *Store) SearchActiveCities(ctx context.Context, term string, limit int) ([]models.CityOption, error) {
	cities := []models.CityOption{}
	err := s.db.WithContext(ctx).
		Model(&models.City{}).
		Select("id", "name").
		Where("is_active = ? AND name LIKE ? ESCAPE '!'", true, "%"+escapeLike(term)+"%").
		Order("name asc").
		Limit(limit).
		Scan(&cities).Error
	if err != nil {
		return nil, wrapErr("searching cities", err)
	}
	return cities, nil
}

func (s *Store) ActiveCityExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.City{}).
		Where("id = ? AND is_active = ?", id, true).
		Count(&count).Error
	if err != nil {
		return false, wrapErr("checking city", err)
	}
	return count > 0, nil
}

// --- customers ---

func (s *Store) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, wrapErr("loading customer", err)
	}
	return &c, nil
}

// GetCustomerWithCity loads a customer together with its city row.
func (s *Store) GetCustomerWithCity(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := s.db.WithContext(ctx).Preload("City").First(&c, id).Error; err != nil {
		return nil, wrapErr("loading customer", err)
	}
	return &c, nil
}

func (s *Store) EmailInUse(ctx context.Context, email string, excludeID uint) (bool, error) {
	return s.exists(ctx, "email = ? AND id <> ?", email, excludeID)
}

func (s *Store) PhoneInUse(ctx context.Context, phone string, excludeID uint) (bool, error) {
	return s.exists(ctx, "phone = ? AND id <> ?", phone, excludeID)
}

func (s *Store) Phone2InUse(ctx context.Context, phone string, excludeID uint) (bool, error) {
	return s.exists(ctx, "phone2 = ? AND id <> ?", phone, excludeID)
}

// AnyPhoneInUse checks both phone columns in a single query.
func (s *Store) AnyPhoneInUse(ctx context.Context, phone string, excludeID uint) (bool, error) {
	return s.exists(ctx, "(phone = ? OR phone2 = ?) AND id <> ?", phone, phone, excludeID)
}

func (s *Store) exists(ctx context.Context, where string, args ...any) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Customer{}).
		Where(where, args...).
		Count(&count).Error
	if err != nil {
		return false, wrapErr("checking customer uniqueness", err)
	}
	return count > 0, nil
}

// InTx runs fn inside a transaction; a returned error rolls it back.
func (s *Store) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx, audit: s.audit})
	})
}

type gormTx struct {
	db    *gorm.DB
	audit *AuditLogger
}

func (t *gormTx) UpdateCustomer(ctx context.Context, c *models.Customer) (int64, error) {
	res := t.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"name":          c.Name,
			"email":         c.Email,
			"phone":         c.Phone,
			"phone2":        c.Phone2,
			"status":        c.Status,
			"address_line1": c.AddressLine1,
			"address_line2": c.AddressLine2,
			"city_id":       c.CityID,
			"updated_at":    gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if res.Error != nil {
		return 0, wrapErr("updating customer", res.Error)
	}
	return res.RowsAffected, nil
}

func (t *gormTx) RecordAudit(ctx context.Context, entry *models.AuditLog) bool {
	return t.audit.LogTx(ctx, t.db, entry)
}

// --- users ---

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, wrapErr("loading user", err)
	}
	return &u, nil
}

// --- audit ---

// ListAudit returns the newest entries first, optionally for one customer.
func (s *Store) ListAudit(ctx context.Context, customerID uint, limit int) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).
		Where("entity = ?", models.AuditEntityCustomer).
		Order("created_at desc").
		Order("id desc").
		Limit(limit)
	if customerID > 0 {
		q = q.Where("entity_id = ?", customerID)
	}

	logs := []models.AuditLog{}
	if err := q.Find(&logs).Error; err != nil {
		return nil, wrapErr("listing audit log", err)
	}
	return logs, nil
}

// escapeLike makes LIKE wildcards in s match literally (escape char '!').
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func wrapErr(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case isConnErr(err):
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isConnErr(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
