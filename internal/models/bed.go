package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dormitory groups beds in one room
type Dormitory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name" validate:"required,max=120"`
	Description *string   `json:"description,omitempty"`
	Capacity    *int      `json:"capacity,omitempty" validate:"omitempty,gte=0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Associations
	Beds []Bed `gorm:"foreignKey:DormitoryID" json:"beds,omitempty"`
}

// TableName specifies the table name for Dormitory
func (Dormitory) TableName() string {
	return "dormitories"
}

func (d *Dormitory) BeforeCreate(tx *gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

// Bed is a single sellable sleeping place
type Bed struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DormitoryID uuid.UUID       `gorm:"type:uuid;not null;index" json:"dormitory_id" validate:"required"`
	BedNumber   string          `gorm:"not null;index" json:"bed_number" validate:"required,max=20"`
	BedType     string          `gorm:"default:Bunk;not null" json:"bed_type" validate:"omitempty,oneof=Single Double Bunk Dormitory"`
	Status      string          `gorm:"default:available;not null;index" json:"status"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Notes       *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Associations
	Dormitory *Dormitory `gorm:"foreignKey:DormitoryID" json:"dormitory,omitempty"`
}

// TableName specifies the table name for Bed
func (Bed) TableName() string {
	return "beds"
}

// Bed status constants
const (
	BedStatusAvailable     = "available"
	BedStatusOccupied      = "occupied"
	BedStatusNeedsCleaning = "needs_cleaning"
	BedStatusMaintenance   = "maintenance"
)

// Bed type constants
const (
	BedTypeSingle    = "Single"
	BedTypeDouble    = "Double"
	BedTypeBunk      = "Bunk"
	BedTypeDormitory = "Dormitory"
)

// IsValidBedStatus reports whether s is a known bed status
func IsValidBedStatus(s string) bool {
	switch s {
	case BedStatusAvailable, BedStatusOccupied, BedStatusNeedsCleaning, BedStatusMaintenance:
		return true
	}
	return false
}

func (b *Bed) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	if b.Status == "" {
		b.Status = BedStatusAvailable
	}
	if b.BedType == "" {
		b.BedType = BedTypeBunk
	}
	return nil
}

// DormitoryName returns the owning dormitory's name when loaded
func (b *Bed) DormitoryName() string {
	if b.Dormitory == nil {
		return ""
	}
	return b.Dormitory.Name
}

// BedStats is the occupancy snapshot shown on the dashboard
type BedStats struct {
	Total         int64 `json:"total"`
	Available     int64 `json:"available"`
	Occupied      int64 `json:"occupied"`
	NeedsCleaning int64 `json:"needsCleaning"`
	Maintenance   int64 `json:"maintenance"`
}

// NewBedStats builds stats from per-status counts
func NewBedStats(counts map[string]int64) BedStats {
	stats := BedStats{
		Available:     counts[BedStatusAvailable],
		Occupied:      counts[BedStatusOccupied],
		NeedsCleaning: counts[BedStatusNeedsCleaning],
		Maintenance:   counts[BedStatusMaintenance],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats
}
