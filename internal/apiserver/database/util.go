package database

import (
	"context"

	"gorm.io/gorm"
)

// DefaultFrequencies are created on first start so inspections can be submitted right away
var DefaultFrequencies = []string{"Daily", "Weekly", "Monthly"}

// InitDefaultFrequencies creates the default inspection frequencies when none exist
func InitDefaultFrequencies(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&InspectionFrequency{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	frequencies := make([]InspectionFrequency, 0, len(DefaultFrequencies))
	for _, name := range DefaultFrequencies {
		frequencies = append(frequencies, InspectionFrequency{FrequencyName: name})
	}
	return db.WithContext(ctx).Create(&frequencies).Error
}
