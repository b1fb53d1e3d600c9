package repository

import (
	"context"
	"time"

	"flightspotter-service/internal/domain/entity"
	"flightspotter-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormLocationRepository implements the LocationRepository interface
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GORM location repository
func NewGormLocationRepository(db *gorm.DB) repository.LocationRepository {
	return &GormLocationRepository{
		db: db,
	}
}

// Locationlist GORM model for database mapping
type Locationlist struct {
	ID         uint   `gorm:"primaryKey"`
	LocationID string `gorm:"column:locationid;unique"`
	Name       string `gorm:"column:location_name"`
	TzName     string `gorm:"column:tzname"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the default table name
func (Locationlist) TableName() string {
	return "m_location_list"
}

// GetByLocationID finds a directory entry by location identifier
func (r *GormLocationRepository) GetByLocationID(ctx context.Context, locationID string) (*entity.Location, error) {
	var location Locationlist
	result := r.db.WithContext(ctx).Where("locationid = ?", locationID).First(&location)

	if result.Error != nil {
		return nil, result.Error
	}

	// Convert GORM model to domain entity
	return &entity.Location{
		ID:         location.ID,
		LocationID: location.LocationID,
		Name:       location.Name,
		TzName:     location.TzName,
		CreatedAt:  location.CreatedAt,
		UpdatedAt:  location.UpdatedAt,
	}, nil
}
