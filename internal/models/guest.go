package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Guest represents a person staying at (or buying from) the hostel
type Guest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;index" json:"name" validate:"required,max=200"`
	Email       *string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string   `json:"phone,omitempty"`
	Nationality *string   `json:"nationality,omitempty"`
	IDType      *string   `gorm:"column:id_type" json:"id_type,omitempty"`
	IDNumber    *string   `gorm:"column:id_number" json:"id_number,omitempty"`
	Notes       *string   `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Guest
func (Guest) TableName() string {
	return "guests"
}

func (g *Guest) BeforeCreate(tx *gorm.DB) error {
	ensureID(&g.ID)
	return nil
}

// Display names used when a charge's guest cannot be resolved
const (
	UnknownGuestName    = "Unknown Guest"
	BarCustomerName     = "Bar Customer"
	ServiceCustomerName = "Service Customer"
	NoGuestName         = "N/A"
)
