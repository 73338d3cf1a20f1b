package repository

import (
	"context"

	"github.com/amoylab/shopinspector/internal/apiserver/database"

	"gorm.io/gorm"
)

type InspectionPhotoRepository struct {
	db *gorm.DB
}

func (r *InspectionPhotoRepository) Create(ctx context.Context, p *database.InspectionPhoto) error {
	return database.Conn(ctx, r.db).Create(p).Error
}

// ListByInspection returns the photos of an inspection in display order
func (r *InspectionPhotoRepository) ListByInspection(ctx context.Context, inspectionID int) ([]database.InspectionPhoto, error) {
	var out []database.InspectionPhoto
	err := database.Conn(ctx, r.db).
		Where("asset_inspection_id = ?", inspectionID).
		Order("display_order").Order("id").
		Find(&out).Error
	return out, err
}

func (r *InspectionPhotoRepository) CountByInspection(ctx context.Context, inspectionID int) (int, error) {
	return countOf(database.Conn(ctx, r.db), &database.InspectionPhoto{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("asset_inspection_id = ?", inspectionID)
	})
}

// referencedBatch keeps IN lists below the bound-parameter limits of every driver
const referencedBatch = 500

// Referenced returns which of the given photo paths are still recorded on an inspection
func (r *InspectionPhotoRepository) Referenced(ctx context.Context, paths []string) (map[string]bool, error) {
	out := make(map[string]bool, len(paths))
	conn := database.Conn(ctx, r.db)
	for start := 0; start < len(paths); start += referencedBatch {
		batch := paths[start:min(start+referencedBatch, len(paths))]
		var found []string
		if err := conn.Model(&database.InspectionPhoto{}).
			Where("photo_path IN ?", batch).
			Distinct().Pluck("photo_path", &found).Error; err != nil {
			return nil, err
		}
		for _, p := range found {
			out[p] = true
		}
	}
	return out, nil
}
