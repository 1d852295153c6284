package models

import (
	"time"

	"gorm.io/datatypes"
)

// Slot is one named JSON document of the slot store.
type Slot struct {
	Key       string         `gorm:"primaryKey;size:100"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}
