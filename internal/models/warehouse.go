package models

import "time"

// StorageType classifies the kind of storage a warehouse or quote needs
type StorageType string

const (
	StorageDry               StorageType = "dry_storage"
	StorageCold              StorageType = "cold_storage"
	StorageHazmat            StorageType = "hazmat"
	StorageClimateControlled StorageType = "climate_controlled"
)

// IsValid checks if the storage type is known
func (s StorageType) IsValid() bool {
	switch s {
	case StorageDry, StorageCold, StorageHazmat, StorageClimateControlled:
		return true
	default:
		return false
	}
}

// Warehouse represents a storage site; AvailableSpace is the capacity ledger value
type Warehouse struct {
	ID             string      `json:"id" db:"id"`
	Name           string      `json:"name" db:"name"`
	Location       string      `json:"location" db:"location"`
	StorageType    StorageType `json:"storage_type" db:"storage_type"`
	TotalSpace     float64     `json:"total_space" db:"total_space"`
	AvailableSpace float64     `json:"available_space" db:"available_space"`
	PricePerSqFt   float64     `json:"price_per_sq_ft" db:"price_per_sq_ft"`
	IsActive       bool        `json:"is_active" db:"is_active"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// WarehouseCreateRequest creates a warehouse; available space starts at total space
type WarehouseCreateRequest struct {
	Name         string      `json:"name" binding:"required"`
	Location     string      `json:"location" binding:"required"`
	StorageType  StorageType `json:"storage_type" binding:"required"`
	TotalSpace   float64     `json:"total_space" binding:"required,gt=0"`
	PricePerSqFt float64     `json:"price_per_sq_ft" binding:"required,gt=0"`
}

// WarehouseUpdateRequest patches descriptive warehouse fields
type WarehouseUpdateRequest struct {
	Name         *string  `json:"name,omitempty"`
	Location     *string  `json:"location,omitempty"`
	PricePerSqFt *float64 `json:"price_per_sq_ft,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

// AvailabilityResponse answers an advisory capacity check
type AvailabilityResponse struct {
	WarehouseID    string  `json:"warehouse_id"`
	RequiredSpace  float64 `json:"required_space"`
	AvailableSpace float64 `json:"available_space"`
	Available      bool    `json:"available"`
}
