package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog represents a system audit entry
type AuditLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	Action    string         `gorm:"size:50;not null" json:"action"` // CREATE, UPDATE, DELETE, PAYMENT, STATUS, CHECKOUT
	Entity    string         `gorm:"size:50;not null" json:"entity"` // Guest, Assignment, BarCharge, Payment...
	EntityID  uuid.UUID      `gorm:"type:uuid;index" json:"entity_id"`
	Details   datatypes.JSON `gorm:"type:jsonb" json:"details"`
	IPAddress string         `gorm:"size:45" json:"ip_address"`
	UserAgent string         `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// Audit action constants
const (
	AuditActionCreate   = "CREATE"
	AuditActionUpdate   = "UPDATE"
	AuditActionDelete   = "DELETE"
	AuditActionPayment  = "PAYMENT"
	AuditActionStatus   = "STATUS"
	AuditActionCheckout = "CHECKOUT"
)
