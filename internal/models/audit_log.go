package models

import "time"

const (
	AuditEntityCustomer  = "customer"
	ActionCustomerUpdate = "customer_update"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `json:"-"`

	Entity   string `gorm:"size:50;not null" json:"entity"` // "customer"
	EntityID uint   `gorm:"not null;index" json:"entity_id"`
	Action   string `gorm:"size:50;not null" json:"action"` // "customer_update"
	Details  string `gorm:"type:text" json:"details"`
}
