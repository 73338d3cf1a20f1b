package repository

import (
	"fmt"

	"github.com/amoylab/shopinspector/internal/apiserver/database"

	"gorm.io/gorm"
)

// step is one named statement of a cascade; steps run in order inside a single transaction
type step struct {
	name string
	run  func(tx *gorm.DB) error
}

func runSteps(tx *gorm.DB, steps ...step) error {
	for _, s := range steps {
		if err := s.run(tx); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// deleteWhere removes every row of model matching query/args
func deleteWhere(name string, model any, query string, args ...any) step {
	return step{name: name, run: func(tx *gorm.DB) error {
		return tx.Where(query, args...).Delete(model).Error
	}}
}

// deleteIn removes rows of model whose column is in ids, skipping the statement when ids is empty
func deleteIn[ID int | int64](name string, model any, column string, ids []ID) step {
	return step{name: name, run: func(tx *gorm.DB) error {
		if len(ids) == 0 {
			return nil
		}
		return tx.Where(column+" IN ?", ids).Delete(model).Error
	}}
}

// deletePhotosIn removes the photos of the given inspections. Deployments that never
// migrated the photo table are tolerated; the check runs before the statement because
// a failed statement poisons the transaction on some databases.
func deletePhotosIn(ids []int) step {
	return step{name: "delete inspection photos", run: func(tx *gorm.DB) error {
		if len(ids) == 0 || !tx.Migrator().HasTable(&database.InspectionPhoto{}) {
			return nil
		}
		return tx.Where("asset_inspection_id IN ?", ids).Delete(&database.InspectionPhoto{}).Error
	}}
}

// deleteRoot removes the root row last; zero affected rows means a concurrent delete won
func deleteRoot(name string, model any, id int) step {
	return step{name: name, run: func(tx *gorm.DB) error {
		res := tx.Delete(model, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVanished
		}
		return nil
	}}
}

// requireRow fails with gorm.ErrRecordNotFound when the row does not exist
func requireRow(tx *gorm.DB, model any, id int) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// inspectionIDs collects the ids of the inspections matching query/args
func inspectionIDs(tx *gorm.DB, query string, args ...any) ([]int, error) {
	var ids []int
	err := tx.Model(&database.AssetInspection{}).Where(query, args...).Pluck("id", &ids).Error
	return ids, err
}

// inspectionTree removes answers then photos then the inspections themselves
func inspectionTree(ids []int) []step {
	return []step{
		deleteIn("delete inspection checklist rows", &database.AssetInspectionCheckList{}, "asset_inspection_id", ids),
		deletePhotosIn(ids),
		deleteIn("delete inspections", &database.AssetInspection{}, "id", ids),
	}
}
