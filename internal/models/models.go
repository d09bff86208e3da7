package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"                    json:"id"`
	Name         string    `gorm:"size:100;not null"                       json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`
	PasswordHash string    `gorm:"not null"                                json:"-"`
	Role         Role      `gorm:"size:16;not null"                        json:"role"`
	IsActive     bool      `gorm:"not null"                                json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type EquipmentType string

const (
	TypeLaptop  EquipmentType = "laptop"
	TypeDesktop EquipmentType = "desktop"
	TypeMonitor EquipmentType = "monitor"
	TypePrinter EquipmentType = "printer"
	TypeServer  EquipmentType = "server"
	TypeOther   EquipmentType = "other"
)

var EquipmentTypes = []EquipmentType{TypeLaptop, TypeDesktop, TypeMonitor, TypePrinter, TypeServer, TypeOther}

func (t EquipmentType) Valid() bool {
	for _, v := range EquipmentTypes {
		if t == v {
			return true
		}
	}
	return false
}

type EquipmentStatus string

const (
	StatusAvailable   EquipmentStatus = "available"
	StatusInUse       EquipmentStatus = "in_use"
	StatusMaintenance EquipmentStatus = "maintenance"
	StatusRetired     EquipmentStatus = "retired"
)

var EquipmentStatuses = []EquipmentStatus{StatusAvailable, StatusInUse, StatusMaintenance, StatusRetired}

func (s EquipmentStatus) Valid() bool {
	for _, v := range EquipmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Equipment struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"                                json:"id"`
	Name           string          `gorm:"size:100;not null"                                   json:"name"`
	Type           EquipmentType   `gorm:"size:16;not null"                                    json:"type"`
	Brand          string          `gorm:"size:50;not null"                                    json:"brand"`
	Model          string          `gorm:"size:50;not null"                                    json:"model"`
	SerialNumber   string          `gorm:"size:100;not null;uniqueIndex:idx_equipment_serial_number" json:"serialNumber"`
	Status         EquipmentStatus `gorm:"size:16;not null"                                    json:"status"`
	AssignedTo     *uuid.UUID      `gorm:"type:uuid;index:idx_equipment_assigned_to"           json:"assignedTo"`
	Assignee       *User           `gorm:"foreignKey:AssignedTo;constraint:OnDelete:SET NULL"  json:"-"`
	Specifications map[string]any  `gorm:"type:text;serializer:json"                           json:"specifications"`
	CreatedAt      time.Time       `gorm:"index:idx_equipment_created_at"                      json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (Equipment) TableName() string { return "equipment" }

func (e *Equipment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// EquipmentFilter narrows an equipment listing. Nil or empty fields are ignored.
type EquipmentFilter struct {
	Type   *EquipmentType
	Status *EquipmentStatus
	// Brand is matched as a case-insensitive substring.
	Brand string
}
