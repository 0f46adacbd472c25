package models

import "time"

type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "Active"
	CustomerInactive CustomerStatus = "Inactive"
)

// ParseCustomerStatus falls back to Active for anything it does not recognise.
func ParseCustomerStatus(s string) CustomerStatus {
	switch CustomerStatus(s) {
	case CustomerActive, CustomerInactive:
		return CustomerStatus(s)
	default:
		return CustomerActive
	}
}

type Customer struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Email        *string        `gorm:"size:255;uniqueIndex" json:"email"`
	Phone        string         `gorm:"size:20;not null;uniqueIndex" json:"phone"`
	Phone2       *string        `gorm:"size:20;index" json:"phone2"`
	Status       CustomerStatus `gorm:"type:varchar(10);not null" json:"status"`
	AddressLine1 string         `gorm:"size:255;not null" json:"address_line1"`
	AddressLine2 string         `gorm:"size:255" json:"address_line2"`
	CityID       uint           `gorm:"not null;index" json:"city_id"`
	City         *City          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"city,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// CustomerInput is an update submission after trimming and coercion.
// Email and Phone2 are nil when the client left them blank.
type CustomerInput struct {
	ID           int64
	Name         string `validate:"required"`
	Email        *string
	Phone        string  `validate:"required,lkphone"`
	Phone2       *string `validate:"omitempty,lkphone"`
	Status       CustomerStatus
	AddressLine1 string `validate:"required"`
	AddressLine2 string
	CityID       int64 `validate:"gt=0"`
}

// CustomerData is the subset of a customer echoed back after an update.
type CustomerData struct {
	ID     uint           `json:"id"`
	Name   string         `json:"name"`
	Email  string         `json:"email"`
	Phone  string         `json:"phone"`
	Phone2 *string        `json:"phone2"`
	Status CustomerStatus `json:"status"`
}

// Data returns the fields echoed back to the edit form.
func (c *Customer) Data() CustomerData {
	d := CustomerData{
		ID:     c.ID,
		Name:   c.Name,
		Phone:  c.Phone,
		Phone2: c.Phone2,
		Status: c.Status,
	}
	if c.Email != nil {
		d.Email = *c.Email
	}
	return d
}
