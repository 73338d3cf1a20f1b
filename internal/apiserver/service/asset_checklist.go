package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/apiserver/repository"
	"github.com/amoylab/shopinspector/internal/common/dto"
	"github.com/amoylab/shopinspector/internal/common/errorx"

	"go.uber.org/zap"
)

type AssetCheckListService struct {
	*guard[repository.AssetCheckListRelatedData]
	repos  *repository.Repositories
	logger *zap.Logger
}

// AssignmentStats are the dashboard figures of the checklist assignment page
type AssignmentStats struct {
	AssetsWithActiveChecklists int `json:"assetsWithActiveChecklists"`
	ActiveAssignments          int `json:"activeAssignments"`
}

func newAssetCheckListService(repos *repository.Repositories, logger *zap.Logger, observer Observer) *AssetCheckListService {
	s := &AssetCheckListService{repos: repos, logger: logger}
	s.guard = &guard[repository.AssetCheckListRelatedData]{
		entity: "asset_checklist", label: "AssetCheckList",
		repo: repos.AssetCheckLists, repos: repos, logger: logger, observer: observer,
		name: func(ctx context.Context, id int) (string, error) {
			b, err := repos.AssetCheckLists.GetByID(ctx, id)
			if err != nil {
				return "", err
			}
			return bindingName(b), nil
		},
	}
	return s
}

func bindingName(b *database.AssetCheckList) string {
	asset, item := fmt.Sprintf("asset %d", b.AssetID), fmt.Sprintf("checklist %d", b.InspectionCheckListID)
	if b.Asset != nil {
		asset = b.Asset.AssetName
	}
	if b.InspectionCheckList != nil {
		item = b.InspectionCheckList.Name
	}
	return asset + " / " + item
}

func (s *AssetCheckListService) List(ctx context.Context, q dto.ListQuery) (*database.Page[database.AssetCheckList], error) {
	return s.repos.AssetCheckLists.List(ctx, q.PageIndex, q.PageSize, q.Search)
}

func (s *AssetCheckListService) Get(ctx context.Context, id int) (*database.AssetCheckList, error) {
	b, err := s.repos.AssetCheckLists.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, errorx.NotFoundError("AssetCheckList", int64(id))
	}
	return b, err
}

func (s *AssetCheckListService) Stats(ctx context.Context) (AssignmentStats, error) {
	var (
		st  AssignmentStats
		err error
	)
	if st.AssetsWithActiveChecklists, err = s.repos.AssetCheckLists.CountAssetsWithActiveChecklists(ctx); err != nil {
		return st, err
	}
	st.ActiveAssignments, err = s.repos.AssetCheckLists.CountActiveAssignments(ctx)
	return st, err
}

// requireAsset fails validation when the asset does not exist
func (s *AssetCheckListService) requireAsset(ctx context.Context, assetID int) error {
	if err := positiveID("assetId", assetID); err != nil {
		return err
	}
	found, err := s.repos.Assets.Exists(ctx, assetID)
	if err != nil {
		return err
	}
	if !found {
		return errorx.ValidationError("assetId", assetID, "assetId refers to an asset that does not exist")
	}
	return nil
}

// requireCheckLists fails validation unless every id names an existing checklist item
func (s *AssetCheckListService) requireCheckLists(ctx context.Context, ids []int) error {
	for _, id := range ids {
		if err := positiveID("inspectionCheckListId", id); err != nil {
			return err
		}
	}
	n, err := s.repos.CheckLists.CountExisting(ctx, ids)
	if err != nil {
		return err
	}
	if n != len(ids) {
		return errorx.ValidationError("inspectionCheckListId", ids, "inspectionCheckListId refers to a checklist item that does not exist")
	}
	return nil
}

func (s *AssetCheckListService) Create(ctx context.Context, req dto.AssetCheckListRequest) (*database.AssetCheckList, error) {
	var out *database.AssetCheckList
	err := s.repos.Transaction(ctx, func(ctx context.Context) error {
		if err := s.requireAsset(ctx, req.AssetID); err != nil {
			return err
		}
		if err := s.requireCheckLists(ctx, []int{req.InspectionCheckListID}); err != nil {
			return err
		}
		taken, err := s.repos.AssetCheckLists.Exists(ctx, req.AssetID, req.InspectionCheckListID)
		if err != nil {
			return err
		}
		if taken {
			return errorx.ConflictError("AssetCheckList", "inspectionCheckListId", req.InspectionCheckListID)
		}

		b := &database.AssetCheckList{
			AssetID:               req.AssetID,
			InspectionCheckListID: req.InspectionCheckListID,
			DisplayOrder:          req.DisplayOrder,
			Active:                activeOr(req.Active, true),
		}
		if err := s.repos.AssetCheckLists.Create(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// Update changes the display order and active flag of a binding; the asset and checklist item are fixed
func (s *AssetCheckListService) Update(ctx context.Context, id int, req dto.AssetCheckListRequest) (*database.AssetCheckList, error) {
	var out *database.AssetCheckList
	err := s.repos.Transaction(ctx, func(ctx context.Context) error {
		b, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if req.AssetID != 0 && req.AssetID != b.AssetID {
			return errorx.ValidationError("assetId", req.AssetID, "assetId of a checklist binding cannot change")
		}
		if req.InspectionCheckListID != 0 && req.InspectionCheckListID != b.InspectionCheckListID {
			return errorx.ValidationError("inspectionCheckListId", req.InspectionCheckListID, "inspectionCheckListId of a checklist binding cannot change")
		}
		b.DisplayOrder = req.DisplayOrder
		b.Active = activeOr(req.Active, b.Active)
		if err := s.repos.AssetCheckLists.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// AssignChecklists binds several checklist items to an asset. Pairs that are already bound are
// skipped; new bindings get consecutive display orders starting at displayOrder.
func (s *AssetCheckListService) AssignChecklists(ctx context.Context, assetID int, checklistIDs []int, displayOrder int, active bool) (dto.AssignCheckListsResponse, error) {
	var res dto.AssignCheckListsResponse
	ids := slices.Clone(checklistIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return res, errorx.ErrMissingField.WithMessage("checkListIds is required").WithDetail("field", "checkListIds")
	}

	err := s.repos.Transaction(ctx, func(ctx context.Context) error {
		res = dto.AssignCheckListsResponse{}
		if err := s.requireAsset(ctx, assetID); err != nil {
			return err
		}
		if err := s.requireCheckLists(ctx, ids); err != nil {
			return err
		}

		// keep the caller's order for display
		seen := make(map[int]bool, len(ids))
		for _, id := range checklistIDs {
			if seen[id] {
				continue
			}
			seen[id] = true

			taken, err := s.repos.AssetCheckLists.Exists(ctx, assetID, id)
			if err != nil {
				return err
			}
			if taken {
				res.Skipped++
				continue
			}
			b := &database.AssetCheckList{
				AssetID:               assetID,
				InspectionCheckListID: id,
				DisplayOrder:          displayOrder + res.Created,
				Active:                active,
			}
			if err := s.repos.AssetCheckLists.Create(ctx, b); err != nil {
				return err
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return dto.AssignCheckListsResponse{}, err
	}
	s.logger.Info("checklists assigned", zap.Int("asset_id", assetID), zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
	return res, nil
}
