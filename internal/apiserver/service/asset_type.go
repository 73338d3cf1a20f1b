package service

import (
	"context"
	"fmt"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/apiserver/repository"
	"github.com/amoylab/shopinspector/internal/common/dto"
	"github.com/amoylab/shopinspector/internal/common/errorx"

	"go.uber.org/zap"
)

type AssetTypeService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func newAssetTypeService(repos *repository.Repositories, logger *zap.Logger) *AssetTypeService {
	return &AssetTypeService{repos: repos, logger: logger}
}

func (s *AssetTypeService) List(ctx context.Context, q dto.ListQuery) (*database.Page[database.AssetType], error) {
	return s.repos.AssetTypes.List(ctx, q.PageIndex, q.PageSize, q.Search)
}

func (s *AssetTypeService) Get(ctx context.Context, id int) (*database.AssetType, error) {
	t, err := s.repos.AssetTypes.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, errorx.NotFoundError("AssetType", int64(id))
	}
	return t, err
}

func (s *AssetTypeService) save(ctx context.Context, id int, req dto.AssetTypeRequest) (*database.AssetType, error) {
	var out *database.AssetType
	err := s.repos.Transaction(ctx, func(ctx context.Context) error {
		name, err := text("assetTypeName", req.AssetTypeName, 2, 100)
		if err != nil {
			return err
		}
		t := &database.AssetType{}
		if id > 0 {
			if t, err = s.Get(ctx, id); err != nil {
				return err
			}
		}
		taken, err := s.repos.AssetTypes.ExistsByName(ctx, name, id)
		if err != nil {
			return err
		}
		if taken {
			return errorx.ConflictError("AssetType", "assetTypeName", name)
		}

		t.AssetTypeName = name
		if id > 0 {
			err = s.repos.AssetTypes.Update(ctx, t)
		} else {
			err = s.repos.AssetTypes.Create(ctx, t)
		}
		out = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AssetTypeService) Create(ctx context.Context, req dto.AssetTypeRequest) (*database.AssetType, error) {
	return s.save(ctx, 0, req)
}

func (s *AssetTypeService) Update(ctx context.Context, id int, req dto.AssetTypeRequest) (*database.AssetType, error) {
	if id <= 0 {
		return nil, errorx.NotFoundError("AssetType", int64(id))
	}
	return s.save(ctx, id, req)
}

// Delete removes the type. Assets of the type go with it; a type whose assets carry
// checklist bindings or inspections is refused by the foreign keys.
func (s *AssetTypeService) Delete(ctx context.Context, id int) error {
	err := s.repos.AssetTypes.Delete(ctx, id)
	switch {
	case err == nil:
		s.logger.Info("asset type deleted", zap.Int("id", id))
		return nil
	case repository.IsNotFound(err):
		return errorx.NotFoundError("AssetType", int64(id))
	case errorx.IsForeignKeyViolation(err):
		return errorx.ErrReferenceViolation.WithMessage("asset type is still used by assets with checklists or inspections")
	default:
		return fmt.Errorf("failed to delete asset type with ID %d: %w", id, err)
	}
}
